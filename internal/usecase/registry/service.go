package registry

import (
	"context"
	"encoding/json"

	domainregistry "mcpgate/internal/domain/registry"
	"mcpgate/internal/ports"
)

var (
	errCanonicalIDRequired = validationError("canonicalId is required")
	errNameRequired        = validationError("name is required")
	errOwnerTeamRequired   = validationError("ownerTeam is required")
	errServerIDRequired    = validationError("server id is required")
	errServerURLRequired   = validationError("server_url is required")
	errScanOutputRequired  = validationError("scanOutput is required")
	errMCPConfigNotObject  = validationError("mcpConfig must be a JSON object")
)

// ValidationError rejects malformed caller input with a message safe to return verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(message string) error {
	return &ValidationError{Message: message}
}

type Service struct {
	repo       ports.RegistryRepository
	uow        ports.UnitOfWork
	publisher  ports.EventPublisher
	thresholds domainregistry.Thresholds
}

// NewService wires registry usecases with repository, unit of work, and optional event publisher.
func NewService(repo ports.RegistryRepository, uow ports.UnitOfWork, publisher ports.EventPublisher, thresholds domainregistry.Thresholds) *Service {
	return &Service{
		repo:       repo,
		uow:        uow,
		publisher:  publisher,
		thresholds: thresholds,
	}
}

type RegisterServerInput struct {
	CanonicalID   string
	Name          string
	OwnerTeam     string
	SourceType    string
	DeclaredTools []string
	MCPConfig     json.RawMessage
}

type RegisterServerResult struct {
	ID          string
	CanonicalID string
	Name        string
	Status      string
	Message     string
}

type UploadScanInput struct {
	ServerID    string
	ScanOutput  string
	ScanVersion string
	ScannedAt   string
}

type UploadScanResult struct {
	ID          string
	ServerID    string
	RiskScore   float64
	Status      string
	ToolsFound  int
	IssuesFound int
	Message     string
}

type AdminActionInput struct {
	ServerID string
	Action   string
	Reason   *string
}

type AdminActionResult struct {
	ID      string
	Status  string
	Message string
}

type ListServersInput struct {
	Status    string
	OwnerTeam string
}

type ServerItem struct {
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

type ScanItem struct {
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

type ListAuditEventsInput struct {
	EventType string
	ServerID  string
	Limit     int
}

type AuditEventItem struct {
	EventID     uint64
	EventType   string
	ServerID    *string
	Actor       string
	DetailsJSON string
	CreatedAt   string
}

type PolicyDecision struct {
	Allowed    bool
	Reason     string
	Action     string
	ServerID   string
	ServerName string
}

type CatalogEntry struct {
	ID          string
	CanonicalID string
	Name        string
	Tools       []string
	ProxyURL    *string
	IsLocal     bool
	Note        *string
}

type auditEnvelope struct {
	EventType string          `json:"eventType"`
	ServerID  *string         `json:"serverId"`
	Actor     string          `json:"actor"`
	Details   json.RawMessage `json:"details"`
	CreatedAt string          `json:"createdAt"`
}

func (s *Service) publishAuditBestEffort(ctx context.Context, eventType domainregistry.EventType, serverID *string, actor string, details []byte, createdAt string) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(auditEnvelope{
		EventType: eventType.String(),
		ServerID:  serverID,
		Actor:     actor,
		Details:   details,
		CreatedAt: createdAt,
	})
	if err != nil {
		return
	}
	_ = s.publisher.PublishAuditEvent(ctx, eventType.String(), payload)
}
