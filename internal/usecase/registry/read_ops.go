package registry

import (
	"context"
	"errors"
	"strings"

	"mcpgate/internal/errs"
	"mcpgate/internal/ports"
)

// ListServers returns registered servers, optionally filtered by status and owner team.
func (s *Service) ListServers(ctx context.Context, input ListServersInput) ([]ServerItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("registry repository is required")
	}

	records, err := s.repo.ListServers(ctx, ports.ServerFilter{
		Status:    strings.TrimSpace(input.Status),
		OwnerTeam: strings.TrimSpace(input.OwnerTeam),
	})
	if err != nil {
		return nil, err
	}

	items := make([]ServerItem, 0, len(records))
	for _, record := range records {
		items = append(items, mapServerItem(record))
	}
	return items, nil
}

// GetServer returns one server by its id.
func (s *Service) GetServer(ctx context.Context, serverID string) (ServerItem, error) {
	if ctx == nil {
		return ServerItem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ServerItem{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ServerItem{}, errors.New("registry repository is required")
	}

	trimmed := strings.TrimSpace(serverID)
	if trimmed == "" {
		return ServerItem{}, errServerIDRequired
	}

	record, err := s.repo.GetServer(ctx, trimmed)
	if err != nil {
		return ServerItem{}, err
	}
	return mapServerItem(record), nil
}

// ListScans returns a server's scan history, newest scan first.
func (s *Service) ListScans(ctx context.Context, serverID string) ([]ScanItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("registry repository is required")
	}

	trimmed := strings.TrimSpace(serverID)
	if trimmed == "" {
		return nil, errServerIDRequired
	}

	if _, err := s.repo.GetServer(ctx, trimmed); err != nil {
		return nil, err
	}

	records, err := s.repo.ListScans(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	items := make([]ScanItem, 0, len(records))
	for _, record := range records {
		items = append(items, ScanItem{
			ID:              record.ID,
			ServerID:        record.ServerID,
			ScannerVersion:  record.ScannerVersion,
			RiskScore:       record.RiskScore,
			IssuesJSON:      record.IssuesJSON,
			DiscoveredTools: record.DiscoveredTools,
			RawOutput:       record.RawOutput,
			ScannedAt:       record.ScannedAt,
			CreatedAt:       record.CreatedAt,
		})
	}
	return items, nil
}

func mapServerItem(record ports.ServerRecord) ServerItem {
	return ServerItem{
		ID:            record.ID,
		CanonicalID:   record.CanonicalID,
		Name:          record.Name,
		OwnerTeam:     record.OwnerTeam,
		SourceType:    record.SourceType,
		Status:        record.Status,
		DeclaredTools: record.DeclaredTools,
		MCPConfig:     record.MCPConfig,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}
