// Package plugin provides the RPC surface of the stylegen generation engine.
package plugin

import (
	"github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/stylegen/internal/protocol"
)

// EnginePluginName is the name the engine is dispensed under.
const EnginePluginName = "engine"

// Handshake is the handshake configuration for the go-plugin transport.
//
// go-plugin's ProtocolVersion is a single uint that must match exactly, so it
// carries the major version of protocol.ProtocolVersion. Minor and patch
// compatibility is checked separately against the engine's PluginInfo.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  uint(protocol.CurrentVersion().Major),
	MagicCookieKey:   "STYLEGEN_ENGINE",
	MagicCookieValue: "stylegen_style_engine",
}

// PluginType defines the transport used to reach an engine process.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the HashiCorp go-plugin net/rpc transport.
	PluginTypeGoPlugin PluginType = "go-plugin"

	// PluginTypeJSON indicates line-delimited JSON envelopes over stdin/stdout.
	PluginTypeJSON PluginType = "json-stdio"
)

// PluginMap returns the plugin set served or dispensed by an engine process.
// impl may be nil on the client side.
func PluginMap(impl Engine) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		EnginePluginName: &EngineRPC{Impl: impl},
	}
}
