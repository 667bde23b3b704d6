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

type adminActionDetails struct {
	Reason         *string `json:"reason"`
	PreviousStatus string  `json:"previousStatus"`
}

// ApplyAdminAction moves a server to the status the action dictates, recording the
// approval row and the audit event alongside the transition.
func (s *Service) ApplyAdminAction(ctx context.Context, input AdminActionInput) (AdminActionResult, error) {
	if ctx == nil {
		return AdminActionResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return AdminActionResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return AdminActionResult{}, errors.New("registry repository is required")
	}
	if s.uow == nil {
		return AdminActionResult{}, errors.New("registry unit of work is required")
	}

	serverID := strings.TrimSpace(input.ServerID)
	if serverID == "" {
		return AdminActionResult{}, errServerIDRequired
	}
	action, err := domainregistry.ParseAdminAction(input.Action)
	if err != nil {
		return AdminActionResult{}, err
	}
	newStatus := action.TargetStatus()
	now := nowUTCString()
	approvalID := uuid.New().String()

	var detailsJSON []byte
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		server, err := s.repo.GetServer(txCtx, serverID)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateServerStatus(txCtx, serverID, string(newStatus), now); err != nil {
			return err
		}
		if err := s.repo.CreateApproval(txCtx, ports.ApprovalRecord{
			ID:         approvalID,
			ServerID:   serverID,
			Action:     string(action),
			ApprovedBy: actorAdmin,
			Reason:     input.Reason,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		detailsJSON, err = json.Marshal(adminActionDetails{
			Reason:         input.Reason,
			PreviousStatus: server.Status,
		})
		if err != nil {
			return errs.Wrap(err, "marshal audit details")
		}
		return s.repo.AppendAuditEvent(txCtx, ports.AuditEventCreate{
			EventType:   action.EventType().String(),
			ServerID:    &serverID,
			Actor:       actorAdmin,
			DetailsJSON: string(detailsJSON),
			CreatedAt:   now,
		})
	}); err != nil {
		return AdminActionResult{}, err
	}

	s.publishAuditBestEffort(ctx, action.EventType(), &serverID, actorAdmin, detailsJSON, now)

	return AdminActionResult{
		ID:      serverID,
		Status:  string(newStatus),
		Message: "Server " + action.PastTense() + " successfully",
	}, nil
}
