package registry

import (
	"context"
	"errors"
	"strings"

	"mcpgate/internal/errs"
	"mcpgate/internal/ports"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// ListAuditEvents returns audit events newest first. The limit is clamped to
// [1, 1000]; a zero or negative limit falls back to the default of 100.
func (s *Service) ListAuditEvents(ctx context.Context, input ListAuditEventsInput) ([]AuditEventItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("registry repository is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	records, err := s.repo.ListAuditEvents(ctx, ports.AuditEventFilter{
		EventType: strings.TrimSpace(input.EventType),
		ServerID:  strings.TrimSpace(input.ServerID),
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]AuditEventItem, 0, len(records))
	for _, record := range records {
		items = append(items, AuditEventItem{
			EventID:     record.EventID,
			EventType:   record.EventType,
			ServerID:    record.ServerID,
			Actor:       record.Actor,
			DetailsJSON: record.DetailsJSON,
			CreatedAt:   record.CreatedAt,
		})
	}
	return items, nil
}
