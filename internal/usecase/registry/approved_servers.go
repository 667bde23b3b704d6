package registry

import (
	"context"
	"errors"

	domainregistry "mcpgate/internal/domain/registry"
	"mcpgate/internal/errs"
)

// ListApprovedServers returns the catalog of approved servers for client discovery.
// Servers without a remote URL are flagged local and carry no proxy path.
func (s *Service) ListApprovedServers(ctx context.Context) ([]CatalogEntry, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("registry repository is required")
	}

	records, err := s.repo.ListServersByStatus(ctx, string(domainregistry.StatusApproved))
	if err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, len(records))
	for _, record := range records {
		entry := CatalogEntry{
			ID:          record.ID,
			CanonicalID: record.CanonicalID,
			Name:        record.Name,
			Tools:       record.DeclaredTools,
		}
		remoteURL := domainregistry.RemoteURL(derefString(record.MCPConfig))
		if remoteURL == "" {
			entry.IsLocal = true
			note := "Local server - run locally"
			entry.Note = &note
		} else {
			proxyURL := "/mcp/proxy/" + record.ID
			entry.ProxyURL = &proxyURL
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
