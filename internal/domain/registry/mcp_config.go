package registry

import "encoding/json"

// RemoteURL extracts the forwarding target from a stored MCP config
// document. The url key wins over endpoint; an empty or unparseable
// config has no remote URL, which marks the server as local-only.
func RemoteURL(mcpConfig string) string {
	if mcpConfig == "" {
		return ""
	}

	var fields struct {
		URL      string `json:"url"`
		Endpoint string `json:"endpoint"`
	}
	if err := json.Unmarshal([]byte(mcpConfig), &fields); err != nil {
		return ""
	}

	if fields.URL != "" {
		return fields.URL
	}
	return fields.Endpoint
}
