package executor

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/pkg/plugin"
)

// engineClient is the client side of the engine RPC surface.
type engineClient interface {
	Serve(ctx context.Context, req protocol.Request) (protocol.Response, error)
	GetMetadata() (plugin.PluginInfo, error)
}

// GoPlugin reaches an engine child process over go-plugin net/rpc. The child
// is started on the first request and reused until Close.
type GoPlugin struct {
	path   string
	args   []string
	logger hclog.Logger

	mu     sync.Mutex
	client *goplugin.Client
	engine engineClient
	closed bool
}

// NewGoPlugin creates a go-plugin executor for the engine at path.
func NewGoPlugin(path string, args []string, logger hclog.Logger) *GoPlugin {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GoPlugin{path: path, args: args, logger: logger}
}

// Execute sends req to the engine, starting it if needed.
func (g *GoPlugin) Execute(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	eng, err := g.connect()
	if err != nil {
		return protocol.Response{}, err
	}
	return eng.Serve(ctx, req)
}

func (g *GoPlugin) connect() (engineClient, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrClosed
	}
	if g.engine != nil {
		return g.engine, nil
	}

	g.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  plugin.Handshake,
		Plugins:          plugin.PluginMap(nil),
		Cmd:              exec.Command(g.path, engineArgs("", g.args)...), // #nosec G204 - engine path is this binary or user-configured
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           g.logger.Named("engine"),
	})

	rpcClient, err := g.client.Client()
	if err != nil {
		g.client.Kill()
		g.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.EnginePluginName)
	if err != nil {
		g.client.Kill()
		g.client = nil
		return nil, fmt.Errorf("failed to dispense engine: %w", err)
	}

	eng, ok := raw.(engineClient)
	if !ok {
		g.client.Kill()
		g.client = nil
		return nil, fmt.Errorf("unexpected engine client type %T", raw)
	}
	g.engine = eng
	return eng, nil
}

// Close kills the engine process.
func (g *GoPlugin) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.closed = true
	if g.client != nil {
		g.client.Kill()
		g.client = nil
	}
	g.engine = nil
	return nil
}
