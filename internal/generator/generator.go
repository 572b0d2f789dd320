// Package generator serialises an OutputStyle into stylesheet source for one
// dialect. A single traversal serves every dialect; dialects differ only in
// their Syntax table.
package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/stylegen/internal/colour"
	"github.com/jmylchreest/stylegen/internal/naming"
	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/internal/style"
)

// Result is the generated source and the number of entries it contains.
type Result struct {
	Code  string
	Count int
}

type options struct {
	logger   hclog.Logger
	registry *Registry
	hexAlpha bool
	header   string
}

// Option configures a Generate call.
type Option func(*options)

// WithLogger receives warnings for skipped entries.
func WithLogger(logger hclog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry overrides the dialect registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithHexAlpha forces the alpha byte on HEX colours.
func WithHexAlpha(force bool) Option {
	return func(o *options) { o.hexAlpha = force }
}

// WithHeader emits text as a leading comment line when anything is generated.
func WithHeader(text string) Option {
	return func(o *options) { o.header = text }
}

// Generate renders s in the given dialect.
//
// Fills become variable declarations and text styles become class rules, both
// in discovery order. An entry whose name cannot be formatted is skipped and
// logged; a colour with a malformed channel aborts the whole call. Output is
// deterministic for identical inputs.
func Generate(s *style.OutputStyle, format protocol.OutputFormat, nameFmt protocol.NameFormat, mode protocol.ColorMode, opts ...Option) (Result, error) {
	o := options{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}

	dialect, err := o.registry.Get(format)
	if err != nil {
		return Result{}, err
	}
	if !nameFmt.Valid() {
		return Result{}, &protocol.UnsupportedOptionError{Option: "nameFormat", Value: string(nameFmt)}
	}
	if !mode.Valid() {
		return Result{}, &protocol.UnsupportedOptionError{Option: "colorMode", Value: string(mode)}
	}

	w := &writer{
		syntax:  dialect.Syntax,
		nameFmt: nameFmt,
		mode:    mode,
		logger:  o.logger.With("format", string(format)),
		colour:  []colour.Option{colour.WithHexAlpha(o.hexAlpha)},
	}
	return w.write(s, o.header)
}

type writer struct {
	syntax  Syntax
	nameFmt protocol.NameFormat
	mode    protocol.ColorMode
	logger  hclog.Logger
	colour  []colour.Option
}

func (w *writer) write(s *style.OutputStyle, header string) (Result, error) {
	var (
		sections []string
		count    int
		err      error
	)

	var decls []string
	s.EachFill(func(raw string, c style.Color) {
		if err != nil {
			return
		}
		name, ok := w.name(raw, style.KindFill)
		if !ok {
			return
		}
		value, ferr := colour.Format(c, w.mode, w.colour...)
		if ferr != nil {
			err = fmt.Errorf("fill %q: %w", raw, ferr)
			return
		}
		decls = append(decls, w.declaration(name, value))
		count++
	})
	if err != nil {
		return Result{}, err
	}
	if len(decls) > 0 {
		sections = append(sections, w.declarationBlock(decls))
	}

	s.EachTextStyle(func(raw string, attrs *style.TextStyleAttributes) {
		name, ok := w.name(raw, style.KindTextStyle)
		if !ok {
			return
		}
		sections = append(sections, w.rule(name, attrs))
		count++
	})

	if count == 0 {
		return Result{}, nil
	}

	if header != "" {
		sections = append([]string{w.syntax.CommentOpen + header + w.syntax.CommentClose}, sections...)
	}
	return Result{Code: strings.Join(sections, "\n\n") + "\n", Count: count}, nil
}

// name formats raw, logging and reporting false when the entry must be skipped.
func (w *writer) name(raw string, kind style.Kind) (string, bool) {
	name, err := naming.Format(raw, w.nameFmt)
	if err != nil {
		var nameErr *protocol.InvalidNameError
		if errors.As(err, &nameErr) {
			w.logger.Warn("skipping style with invalid name", "kind", kind.String(), "name", raw, "error", err)
		} else {
			w.logger.Error("skipping style", "kind", kind.String(), "name", raw, "error", err)
		}
		return "", false
	}
	return name, true
}

func (w *writer) declaration(name, value string) string {
	line := w.syntax.DeclarationPrefix + name + w.syntax.DeclarationSeparator + value + w.syntax.DeclarationTerminator
	if w.syntax.BlockOpen != "" {
		line = w.syntax.Indent + line
	}
	return line
}

func (w *writer) declarationBlock(decls []string) string {
	body := strings.Join(decls, "\n")
	if w.syntax.BlockOpen == "" {
		return body
	}
	return w.syntax.BlockOpen + "\n" + body + "\n" + w.syntax.BlockClose
}

func (w *writer) rule(name string, attrs *style.TextStyleAttributes) string {
	if attrs.Len() == 0 && w.syntax.EmptyRule != "" {
		return w.syntax.SelectorPrefix + name + w.syntax.EmptyRule
	}

	var b strings.Builder
	b.WriteString(w.syntax.SelectorPrefix + name + w.syntax.RuleOpen)
	attrs.Each(func(prop, value string) {
		b.WriteString("\n" + w.syntax.Indent + prop + w.syntax.PropertySeparator + value + w.syntax.PropertyTerminator)
	})
	if w.syntax.RuleClose != "" {
		b.WriteString("\n" + w.syntax.RuleClose)
	}
	return b.String()
}
