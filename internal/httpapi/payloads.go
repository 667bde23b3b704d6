package httpapi

import (
	"encoding/json"
	"strings"

	"mcpgate/internal/usecase/registry"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// serverRow is the registry read shape. Column-style keys stay snake_case so
// existing registry consumers keep working.
type serverRow struct {
	ID            string          `json:"id"`
	CanonicalID   string          `json:"canonical_id"`
	Name          string          `json:"name"`
	OwnerTeam     string          `json:"owner_team"`
	SourceType    string          `json:"source_type"`
	Status        string          `json:"status"`
	DeclaredTools json.RawMessage `json:"declared_tools"`
	MCPConfig     json.RawMessage `json:"mcp_config"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

func newServerRow(item registry.ServerItem) serverRow {
	return serverRow{
		ID:            item.ID,
		CanonicalID:   item.CanonicalID,
		Name:          item.Name,
		OwnerTeam:     item.OwnerTeam,
		SourceType:    item.SourceType,
		Status:        item.Status,
		DeclaredTools: jsonStrings(item.DeclaredTools),
		MCPConfig:     jsonDocumentOrNull(item.MCPConfig),
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

type scanRow struct {
	ID              string          `json:"id"`
	ServerID        string          `json:"server_id"`
	ScannerVersion  string          `json:"scanner_version"`
	RiskScore       float64         `json:"risk_score"`
	Issues          json.RawMessage `json:"issues"`
	DiscoveredTools json.RawMessage `json:"discovered_tools"`
	RawOutput       json.RawMessage `json:"raw_output"`
	ScannedAt       string          `json:"scanned_at"`
	CreatedAt       string          `json:"created_at"`
}

func newScanRow(item registry.ScanItem) scanRow {
	return scanRow{
		ID:              item.ID,
		ServerID:        item.ServerID,
		ScannerVersion:  item.ScannerVersion,
		RiskScore:       item.RiskScore,
		Issues:          jsonDocument(item.IssuesJSON, "[]"),
		DiscoveredTools: jsonStrings(item.DiscoveredTools),
		RawOutput:       jsonDocument(item.RawOutput, "null"),
		ScannedAt:       item.ScannedAt,
		CreatedAt:       item.CreatedAt,
	}
}

type auditEventRow struct {
	EventID   uint64          `json:"event_id"`
	EventType string          `json:"event_type"`
	ServerID  *string         `json:"server_id"`
	Actor     string          `json:"actor"`
	Details   json.RawMessage `json:"details"`
	CreatedAt string          `json:"created_at"`
}

func newAuditEventRow(item registry.AuditEventItem) auditEventRow {
	return auditEventRow{
		EventID:   item.EventID,
		EventType: item.EventType,
		ServerID:  item.ServerID,
		Actor:     item.Actor,
		Details:   jsonDocument(item.DetailsJSON, "null"),
		CreatedAt: item.CreatedAt,
	}
}

type registerServerResponse struct {
	ID          string `json:"id"`
	CanonicalID string `json:"canonicalId"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

type uploadScanResponse struct {
	ID          string  `json:"id"`
	ServerID    string  `json:"serverId"`
	RiskScore   float64 `json:"riskScore"`
	Status      string  `json:"status"`
	ToolsFound  int     `json:"toolsFound"`
	IssuesFound int     `json:"issuesFound"`
	Message     string  `json:"message"`
}

type adminActionResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type policyCheckResponse struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason,omitempty"`
	Action     string `json:"action,omitempty"`
	ServerID   string `json:"serverId,omitempty"`
	ServerName string `json:"serverName,omitempty"`
}

type mcpServerEntry struct {
	ID          string   `json:"id"`
	CanonicalID string   `json:"canonicalId"`
	Name        string   `json:"name"`
	Tools       []string `json:"tools"`
	ProxyURL    *string  `json:"proxyUrl"`
	IsLocal     bool     `json:"isLocal"`
	Note        *string  `json:"note"`
}

func newMCPServerEntry(entry registry.CatalogEntry) mcpServerEntry {
	tools := entry.Tools
	if tools == nil {
		tools = []string{}
	}
	return mcpServerEntry{
		ID:          entry.ID,
		CanonicalID: entry.CanonicalID,
		Name:        entry.Name,
		Tools:       tools,
		ProxyURL:    entry.ProxyURL,
		IsLocal:     entry.IsLocal,
		Note:        entry.Note,
	}
}

type mcpServersResponse struct {
	Servers []mcpServerEntry `json:"servers"`
}

func jsonStrings(values []string) json.RawMessage {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return json.RawMessage("[]")
	}
	return raw
}

func jsonDocument(value string, fallback string) json.RawMessage {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return json.RawMessage(fallback)
	}
	return json.RawMessage(trimmed)
}

func jsonDocumentOrNull(value *string) json.RawMessage {
	if value == nil {
		return json.RawMessage("null")
	}
	return jsonDocument(*value, "null")
}
