package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainregistry "mcpgate/internal/domain/registry"
	"mcpgate/internal/errs"
)

// ErrNoRemoteURL marks an approved server whose config names no forwarding target.
var ErrNoRemoteURL = errors.New("server has no remote url configured")

// NotApprovedError reports a proxy attempt against a server outside Approved status.
type NotApprovedError struct {
	Name   string
	Status string
}

func (e *NotApprovedError) Error() string {
	return fmt.Sprintf("MCP server '%s' is not approved (status: %s)", e.Name, e.Status)
}

type ProxyTarget struct {
	ServerID string
	Name     string
	BaseURL  string
}

// ResolveProxyTarget checks that ref (server id or canonical id) names an approved
// server with a remote URL and returns where to forward.
func (s *Service) ResolveProxyTarget(ctx context.Context, ref string) (ProxyTarget, error) {
	if ctx == nil {
		return ProxyTarget{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ProxyTarget{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ProxyTarget{}, errors.New("registry repository is required")
	}

	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return ProxyTarget{}, errServerIDRequired
	}

	record, err := s.repo.FindServerByRef(ctx, trimmed)
	if err != nil {
		return ProxyTarget{}, err
	}
	if record.Status != string(domainregistry.StatusApproved) {
		return ProxyTarget{}, &NotApprovedError{Name: record.Name, Status: record.Status}
	}

	remoteURL := domainregistry.RemoteURL(derefString(record.MCPConfig))
	if remoteURL == "" {
		return ProxyTarget{}, ErrNoRemoteURL
	}

	return ProxyTarget{
		ServerID: record.ID,
		Name:     record.Name,
		BaseURL:  strings.TrimRight(remoteURL, "/"),
	}, nil
}
