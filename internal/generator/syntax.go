package generator

import (
	"fmt"

	"github.com/jmylchreest/stylegen/internal/protocol"
)

// Syntax is everything that differs between dialects. The traversal in
// Generate is shared; a dialect only supplies these strings.
type Syntax struct {
	// DeclarationPrefix starts a variable name ("$", "@", "--").
	DeclarationPrefix string
	// DeclarationSeparator sits between a variable name and its value.
	DeclarationSeparator string
	// DeclarationTerminator ends a variable declaration.
	DeclarationTerminator string

	// BlockOpen and BlockClose wrap all declarations when set (":root {" ... "}").
	BlockOpen  string
	BlockClose string

	// SelectorPrefix turns a formatted name into a selector (".").
	SelectorPrefix string
	// RuleOpen follows the selector; RuleClose ends the rule. Either may be empty
	// for indentation-based dialects.
	RuleOpen  string
	RuleClose string
	// EmptyRule replaces RuleOpen and RuleClose for a rule with no properties.
	// Indentation-based dialects need it so the selector does not join the
	// next rule.
	EmptyRule string

	// PropertySeparator and PropertyTerminator shape one declaration inside a rule.
	PropertySeparator  string
	PropertyTerminator string

	// Indent prefixes lines nested in a block or rule.
	Indent string

	// CommentOpen and CommentClose wrap a single-line comment.
	CommentOpen  string
	CommentClose string
}

// Dialect pairs an output format with its syntax table.
type Dialect struct {
	Format      protocol.OutputFormat
	Description string
	Syntax      Syntax
}

// Extension returns the file extension for downloads of this dialect.
func (d Dialect) Extension() string { return d.Format.Extension() }

// Filename returns the download name, e.g. "styles.scss".
func (d Dialect) Filename() string { return "styles." + d.Extension() }

var (
	scssSyntax = Syntax{
		DeclarationPrefix:     "$",
		DeclarationSeparator:  ": ",
		DeclarationTerminator: ";",
		SelectorPrefix:        ".",
		RuleOpen:              " {",
		RuleClose:             "}",
		PropertySeparator:     ": ",
		PropertyTerminator:    ";",
		Indent:                "  ",
		CommentOpen:           "// ",
	}

	lessSyntax = Syntax{
		DeclarationPrefix:     "@",
		DeclarationSeparator:  ": ",
		DeclarationTerminator: ";",
		SelectorPrefix:        ".",
		RuleOpen:              " {",
		RuleClose:             "}",
		PropertySeparator:     ": ",
		PropertyTerminator:    ";",
		Indent:                "  ",
		CommentOpen:           "// ",
	}

	stylusSyntax = Syntax{
		DeclarationSeparator: " = ",
		SelectorPrefix:       ".",
		EmptyRule:            " {}",
		PropertySeparator:    " ",
		Indent:               "  ",
		CommentOpen:          "// ",
	}

	cssSyntax = Syntax{
		DeclarationPrefix:     "--",
		DeclarationSeparator:  ": ",
		DeclarationTerminator: ";",
		BlockOpen:             ":root {",
		BlockClose:            "}",
		SelectorPrefix:        ".",
		RuleOpen:              " {",
		RuleClose:             "}",
		PropertySeparator:     ": ",
		PropertyTerminator:    ";",
		Indent:                "  ",
		CommentOpen:           "/* ",
		CommentClose:          " */",
	}
)

// Registry holds the dialects the generator can target.
type Registry struct {
	order    []protocol.OutputFormat
	dialects map[protocol.OutputFormat]Dialect
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{dialects: make(map[protocol.OutputFormat]Dialect)}
}

// DefaultRegistry returns a registry with every built-in dialect.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Dialect{Format: protocol.FormatSCSS, Description: "Sass variables and class rules", Syntax: scssSyntax})
	r.Register(Dialect{Format: protocol.FormatLESS, Description: "Less variables and class rules", Syntax: lessSyntax})
	r.Register(Dialect{Format: protocol.FormatStylus, Description: "Stylus variables and indented rules", Syntax: stylusSyntax})
	r.Register(Dialect{Format: protocol.FormatCSS, Description: "CSS custom properties on :root and class rules", Syntax: cssSyntax})
	return r
}

// Register adds or replaces a dialect.
func (r *Registry) Register(d Dialect) {
	if _, exists := r.dialects[d.Format]; !exists {
		r.order = append(r.order, d.Format)
	}
	r.dialects[d.Format] = d
}

// Get retrieves the dialect for format.
func (r *Registry) Get(format protocol.OutputFormat) (Dialect, error) {
	d, ok := r.dialects[format]
	if !ok {
		return Dialect{}, &protocol.UnsupportedOptionError{Option: "format", Value: string(format)}
	}
	return d, nil
}

// All returns the dialects in registration order.
func (r *Registry) All() []Dialect {
	out := make([]Dialect, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, r.dialects[f])
	}
	return out
}

// String lists the registered formats.
func (r *Registry) String() string {
	return fmt.Sprintf("%v", r.order)
}
