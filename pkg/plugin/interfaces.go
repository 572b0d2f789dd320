package plugin

import (
	"context"

	"github.com/jmylchreest/stylegen/internal/protocol"
)

// Engine is the interface a generation engine implements for go-plugin RPC.
type Engine interface {
	// Serve answers one request. Failures are carried in Response.Error so
	// their kind survives the process boundary.
	Serve(ctx context.Context, req protocol.Request) protocol.Response

	// GetMetadata returns engine metadata.
	GetMetadata() PluginInfo
}
