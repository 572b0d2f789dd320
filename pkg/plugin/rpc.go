package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/stylegen/internal/protocol"
)

// EngineRPC implements the go-plugin Plugin interface for the engine.
type EngineRPC struct {
	plugin.Plugin
	Impl Engine
}

// Server returns an RPC server for this plugin.
func (p *EngineRPC) Server(*plugin.MuxBroker) (any, error) {
	return &EngineRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *EngineRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &EngineRPCClient{client: c}, nil
}

// EngineRPCServer is the RPC server implementation for the engine.
type EngineRPCServer struct {
	Impl Engine
}

// Serve implements the RPC method for one protocol request. Messages travel
// as JSON envelopes; gob would drop a zero count.
func (s *EngineRPCServer) Serve(payload []byte, resp *[]byte) error {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		return err
	}

	data, err := protocol.EncodeResponse(s.Impl.Serve(context.Background(), req))
	if err != nil {
		return err
	}

	*resp = data
	return nil
}

// GetMetadata implements the RPC method for fetching engine metadata.
func (s *EngineRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// EngineRPCClient is the RPC client implementation for the engine.
type EngineRPCClient struct {
	client *rpc.Client
}

// Serve calls the remote Serve method. The returned error is a transport
// failure; request failures arrive in Response.Error.
func (c *EngineRPCClient) Serve(_ context.Context, req protocol.Request) (protocol.Response, error) {
	payload, err := protocol.EncodeRequest(req)
	if err != nil {
		return protocol.Response{}, err
	}

	var respBytes []byte
	if err := c.client.Call("Plugin.Serve", payload, &respBytes); err != nil {
		return protocol.Response{}, &RPCError{Message: err.Error()}
	}

	return protocol.DecodeResponse(respBytes)
}

// GetMetadata calls the remote GetMetadata method.
func (c *EngineRPCClient) GetMetadata() (PluginInfo, error) {
	var info PluginInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
