package ports

import (
	"context"
	"errors"
)

var (
	ErrServerNotFound       = errors.New("registered server not found")
	ErrDuplicateCanonicalID = errors.New("canonical id already registered")
)

type ServerFilter struct {
	Status    string
	OwnerTeam string
}

type ServerRecord struct {
	ID            string
	CanonicalID   string
	Name          string
	OwnerTeam     string
	SourceType    string
	Status        string
	DeclaredTools []string
	MCPConfig     *string
	CreatedAt     string
	UpdatedAt     string
}

type ScanRecord struct {
	ID              string
	ServerID        string
	ScannerVersion  string
	RiskScore       float64
	IssuesJSON      string
	DiscoveredTools []string
	RawOutput       string
	ScannedAt       string
	CreatedAt       string
}

type ApprovalRecord struct {
	ID         string
	ServerID   string
	Action     string
	ApprovedBy string
	Reason     *string
	CreatedAt  string
}

type AuditEventRecord struct {
	EventID     uint64
	EventType   string
	ServerID    *string
	Actor       string
	DetailsJSON string
	CreatedAt   string
}

type AuditEventCreate struct {
	EventType   string
	ServerID    *string
	Actor       string
	DetailsJSON string
	CreatedAt   string
}

type AuditEventFilter struct {
	EventType string
	ServerID  string
	Limit     int
}

type RegistryReadRepository interface {
	ListServers(ctx context.Context, filter ServerFilter) ([]ServerRecord, error)
	GetServer(ctx context.Context, serverID string) (ServerRecord, error)
	GetServerByCanonicalID(ctx context.Context, canonicalID string) (ServerRecord, error)
	// FindServerByRef resolves a proxy reference, matching either the row id
	// or the canonical id.
	FindServerByRef(ctx context.Context, ref string) (ServerRecord, error)
	// FindServerByGateIdentifier resolves a policy gate identifier, matching
	// either the canonical id or the url key inside the stored MCP config.
	FindServerByGateIdentifier(ctx context.Context, identifier string) (ServerRecord, error)
	ListServersByStatus(ctx context.Context, status string) ([]ServerRecord, error)
	ListScans(ctx context.Context, serverID string) ([]ScanRecord, error)
	ListAuditEvents(ctx context.Context, filter AuditEventFilter) ([]AuditEventRecord, error)
}

type RegistryRepository interface {
	RegistryReadRepository
	CreateServer(ctx context.Context, server ServerRecord) error
	UpdateServerStatus(ctx context.Context, serverID string, status string, updatedAt string) error
	CreateScan(ctx context.Context, scan ScanRecord) error
	CreateApproval(ctx context.Context, approval ApprovalRecord) error
	AppendAuditEvent(ctx context.Context, input AuditEventCreate) error
}
