// Package executor carries protocol requests from the panel to a generation
// engine, regardless of where the engine runs: in this process, in a child
// process over go-plugin net/rpc, or in a child process over line-delimited
// JSON on stdio.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/stylegen/internal/engine"
	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/pkg/plugin"
)

// ErrClosed is returned for requests made after Close, or still pending when
// the engine went away.
var ErrClosed = errors.New("executor closed")

// Transport selects how the engine is reached.
type Transport string

const (
	// TransportInProcess calls the engine directly.
	TransportInProcess Transport = "in-process"

	// TransportGoPlugin spawns the engine and talks go-plugin net/rpc.
	TransportGoPlugin Transport = Transport(plugin.PluginTypeGoPlugin)

	// TransportStdio spawns the engine and talks line-delimited JSON envelopes.
	TransportStdio Transport = Transport(plugin.PluginTypeJSON)
)

// Transports returns every transport name.
func Transports() []Transport {
	return []Transport{TransportInProcess, TransportGoPlugin, TransportStdio}
}

// ParseTransport validates a transport name.
func ParseTransport(s string) (Transport, error) {
	for _, t := range Transports() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown transport %q (valid: %v)", s, Transports())
}

// Executor sends one request and returns its one response. Request failures
// arrive in Response.Error; the returned error is a transport failure.
type Executor interface {
	Execute(ctx context.Context, req protocol.Request) (protocol.Response, error)
	Close() error
}

// Config describes how to reach an engine.
type Config struct {
	Transport Transport

	// Engine is used by the in-process transport.
	Engine *engine.Engine

	// Path is the engine executable. Defaults to the running binary.
	Path string

	// Args are passed to the engine subcommand (source and generation flags).
	Args []string

	Logger hclog.Logger

	// Runner runs the metadata query; defaults to a real process runner.
	Runner ProcessRunner
}

// New builds an executor for cfg. Child-process transports start lazily or
// immediately depending on the transport; either way the engine's protocol
// version is checked before the first request.
func New(ctx context.Context, cfg Config) (Executor, error) {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if cfg.Runner == nil {
		cfg.Runner = NewRealProcessRunner()
	}

	switch cfg.Transport {
	case TransportInProcess, "":
		if cfg.Engine == nil {
			return nil, fmt.Errorf("in-process transport needs an engine")
		}
		return NewInProcess(cfg.Engine), nil
	}

	if cfg.Path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate engine executable: %w", err)
		}
		cfg.Path = exe
	}

	info, err := Detect(ctx, cfg.Runner, cfg.Path, cfg.Args)
	if err != nil {
		return nil, err
	}
	if _, err := protocol.IsCompatible(info.ProtocolVersion); err != nil {
		return nil, fmt.Errorf("engine %s: %w", cfg.Path, err)
	}
	cfg.Logger.Debug("engine detected", "path", cfg.Path, "version", info.Version, "protocol", info.ProtocolVersion)

	switch cfg.Transport {
	case TransportGoPlugin:
		return NewGoPlugin(cfg.Path, cfg.Args, cfg.Logger), nil
	case TransportStdio:
		return StartStdio(ctx, cfg.Path, cfg.Args, cfg.Logger)
	default:
		return nil, fmt.Errorf("unsupported transport: %s", cfg.Transport)
	}
}

// InProcess calls an engine in the same process.
type InProcess struct {
	engine *engine.Engine
}

// NewInProcess wraps e.
func NewInProcess(e *engine.Engine) *InProcess {
	return &InProcess{engine: e}
}

// Execute serves req directly.
func (p *InProcess) Execute(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	return p.engine.Serve(ctx, req), nil
}

// Close is a no-op.
func (p *InProcess) Close() error { return nil }
