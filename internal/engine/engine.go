// Package engine is the generation side of the command protocol. It answers
// one request at a time, resolving a fresh OutputStyle for every request that
// needs one, and keeps no state between requests.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/stylegen/internal/generator"
	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/internal/style"
	"github.com/jmylchreest/stylegen/internal/version"
	"github.com/jmylchreest/stylegen/pkg/plugin"
)

// ErrNoSource is returned when a request needs styles but no source is configured.
var ErrNoSource = errors.New("no style source configured")

// Source produces the OutputStyle for a request. Implementations must read the
// document afresh on every call.
type Source interface {
	Resolve(ctx context.Context) (*style.OutputStyle, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*style.OutputStyle, error)

// Resolve calls f.
func (f SourceFunc) Resolve(ctx context.Context) (*style.OutputStyle, error) { return f(ctx) }

// Config holds generation settings that are not part of a request.
type Config struct {
	// HexAlpha forces the alpha byte on HEX colours.
	HexAlpha bool

	// Header is emitted as a leading comment when set.
	Header string
}

// Builder provides a fluent interface for constructing an Engine.
type Builder struct {
	config   Config
	source   Source
	logger   hclog.Logger
	registry *generator.Registry
	useEnv   bool
}

// NewBuilder creates a new Engine builder with default settings.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the generation settings.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithSource sets where styles are resolved from.
func (b *Builder) WithSource(src Source) *Builder {
	b.source = src
	return b
}

// WithLogger sets the logger. Defaults to a null logger.
func (b *Builder) WithLogger(logger hclog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithHexAlpha forces the alpha byte on HEX colours.
func (b *Builder) WithHexAlpha(force bool) *Builder {
	b.config.HexAlpha = force
	return b
}

// WithHeader sets a leading comment for generated code.
func (b *Builder) WithHeader(text string) *Builder {
	b.config.Header = text
	return b
}

// WithRegistry overrides the dialect registry (useful for testing).
func (b *Builder) WithRegistry(r *generator.Registry) *Builder {
	b.registry = r
	return b
}

// WithEnvConfig loads settings from environment variables.
// Reads STYLEGEN_HEX_ALPHA and STYLEGEN_HEADER.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// Build constructs the Engine. Environment settings override explicit ones.
func (b *Builder) Build() *Engine {
	config := b.config

	if b.useEnv {
		if v := os.Getenv("STYLEGEN_HEX_ALPHA"); v != "" {
			if force, err := strconv.ParseBool(v); err == nil {
				config.HexAlpha = force
			}
		}
		if v := os.Getenv("STYLEGEN_HEADER"); v != "" {
			config.Header = v
		}
	}

	logger := b.logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	registry := b.registry
	if registry == nil {
		registry = generator.DefaultRegistry()
	}

	return &Engine{
		config:   config,
		source:   b.source,
		logger:   logger,
		registry: registry,
	}
}

// Engine answers protocol requests.
type Engine struct {
	config   Config
	source   Source
	logger   hclog.Logger
	registry *generator.Registry
}

// Handle performs one request fully. Options are validated before any work;
// CLEAN never resolves styles.
func (e *Engine) Handle(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if err := req.Validate(); err != nil {
		return protocol.Response{}, err
	}

	if req.Command == protocol.CommandClean {
		return protocol.CleanResponse(req), nil
	}

	if e.source == nil {
		return protocol.Response{}, ErrNoSource
	}
	s, err := e.source.Resolve(ctx)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("failed to resolve styles: %w", err)
	}

	res, err := generator.Generate(s, req.Format, req.NameFormat, req.ColorMode,
		generator.WithLogger(e.logger.With("id", req.ID)),
		generator.WithRegistry(e.registry),
		generator.WithHexAlpha(e.config.HexAlpha),
		generator.WithHeader(e.config.Header),
	)
	if err != nil {
		return protocol.Response{}, err
	}

	return protocol.CodeResponse(req, res.Code, res.Count), nil
}

// Serve is Handle with failures translated into the response, so every
// request gets exactly one answer the panel can render.
func (e *Engine) Serve(ctx context.Context, req protocol.Request) protocol.Response {
	resp, err := e.Handle(ctx, req)
	if err != nil {
		e.logger.Error("request failed", "id", req.ID, "command", string(req.Command), "error", err)
		return protocol.ErrorResponse(req, err)
	}
	e.logger.Debug("request served", "id", req.ID, "command", string(req.Command), "count", resp.StyleCount())
	return resp
}

// GetMetadata returns engine metadata.
func (e *Engine) GetMetadata() plugin.PluginInfo {
	formats := make([]string, 0, len(e.registry.All()))
	for _, d := range e.registry.All() {
		formats = append(formats, string(d.Format))
	}
	return plugin.PluginInfo{
		Name:            "stylegen",
		Version:         version.Version,
		ProtocolVersion: protocol.ProtocolVersion,
		Description:     "Stylesheet code generator for design-tool styles",
		Formats:         formats,
	}
}
