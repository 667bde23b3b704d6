package registry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	domainregistry "mcpgate/internal/domain/registry"
	"mcpgate/internal/errs"
	"mcpgate/internal/ports"
)

type serverRegisteredDetails struct {
	Name        string `json:"name"`
	CanonicalID string `json:"canonicalId"`
}

// RegisterServer records a new server in PendingScan and appends the registration audit event.
func (s *Service) RegisterServer(ctx context.Context, input RegisterServerInput) (RegisterServerResult, error) {
	if ctx == nil {
		return RegisterServerResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return RegisterServerResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return RegisterServerResult{}, errors.New("registry repository is required")
	}
	if s.uow == nil {
		return RegisterServerResult{}, errors.New("registry unit of work is required")
	}

	canonicalID := strings.TrimSpace(input.CanonicalID)
	if canonicalID == "" {
		return RegisterServerResult{}, errCanonicalIDRequired
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return RegisterServerResult{}, errNameRequired
	}
	ownerTeam := strings.TrimSpace(input.OwnerTeam)
	if ownerTeam == "" {
		return RegisterServerResult{}, errOwnerTeamRequired
	}
	sourceType := strings.TrimSpace(input.SourceType)
	if sourceType == "" {
		sourceType = "LocalDeclared"
	}
	mcpConfig, err := normalizeMCPConfig(input.MCPConfig)
	if err != nil {
		return RegisterServerResult{}, err
	}

	now := nowUTCString()
	serverID := uuid.New().String()
	details, err := json.Marshal(serverRegisteredDetails{Name: name, CanonicalID: canonicalID})
	if err != nil {
		return RegisterServerResult{}, errs.Wrap(err, "marshal audit details")
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateServer(txCtx, ports.ServerRecord{
			ID:            serverID,
			CanonicalID:   canonicalID,
			Name:          name,
			OwnerTeam:     ownerTeam,
			SourceType:    sourceType,
			Status:        string(domainregistry.StatusPendingScan),
			DeclaredTools: input.DeclaredTools,
			MCPConfig:     mcpConfig,
			CreatedAt:     now,
			UpdatedAt:     now,
		}); err != nil {
			return err
		}
		return s.repo.AppendAuditEvent(txCtx, ports.AuditEventCreate{
			EventType:   domainregistry.EventServerRegistered.String(),
			ServerID:    &serverID,
			Actor:       actorGateway,
			DetailsJSON: string(details),
			CreatedAt:   now,
		})
	}); err != nil {
		return RegisterServerResult{}, err
	}

	s.publishAuditBestEffort(ctx, domainregistry.EventServerRegistered, &serverID, actorGateway, details, now)

	return RegisterServerResult{
		ID:          serverID,
		CanonicalID: canonicalID,
		Name:        name,
		Status:      string(domainregistry.StatusPendingScan),
		Message:     "Server registered. Upload scan results to complete registration.",
	}, nil
}
