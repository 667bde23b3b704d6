package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainregistry "mcpgate/internal/domain/registry"
	"mcpgate/internal/errs"
	"mcpgate/internal/ports"
)

// CheckPolicy decides whether clients may talk to the server registered under the
// given URL or canonical id. An unknown or unapproved server yields a block
// decision, not an error.
func (s *Service) CheckPolicy(ctx context.Context, serverURL string) (PolicyDecision, error) {
	if ctx == nil {
		return PolicyDecision{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return PolicyDecision{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return PolicyDecision{}, errors.New("registry repository is required")
	}

	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		return PolicyDecision{}, errServerURLRequired
	}

	record, err := s.repo.FindServerByGateIdentifier(ctx, trimmed)
	if errors.Is(err, ports.ErrServerNotFound) {
		return PolicyDecision{
			Allowed: false,
			Reason:  "Server not registered",
			Action:  "block",
		}, nil
	}
	if err != nil {
		return PolicyDecision{}, err
	}

	if record.Status != string(domainregistry.StatusApproved) {
		return PolicyDecision{
			Allowed: false,
			Reason:  fmt.Sprintf("Server status is %s, not Approved", record.Status),
			Action:  "block",
		}, nil
	}

	return PolicyDecision{
		Allowed:    true,
		ServerID:   record.ID,
		ServerName: record.Name,
	}, nil
}
