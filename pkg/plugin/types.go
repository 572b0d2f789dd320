package plugin

// PluginInfo contains metadata about an engine.
type PluginInfo struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	ProtocolVersion string   `json:"protocol_version"`
	Description     string   `json:"description"`
	PluginProtocol  string   `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
	Formats         []string `json:"formats,omitempty"`
}
