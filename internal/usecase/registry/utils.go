package registry

import (
	"encoding/json"
	"strings"
	"time"

	"mcpgate/internal/errs"
)

const (
	actorGateway = "gateway"
	actorAdmin   = "admin"
)

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

// parseScannedAt normalizes a client-supplied scan timestamp, falling back when absent or unparseable.
func parseScannedAt(raw, fallback string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC().Format(time.RFC3339Nano)
		}
	}
	return fallback
}

func marshalIssues(issues []json.RawMessage) (string, error) {
	if len(issues) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(issues)
	if err != nil {
		return "", errs.Wrap(err, "marshal scan issues")
	}
	return string(data), nil
}

// normalizeMCPConfig stores a client config only when it carries content; empty objects collapse to absent.
func normalizeMCPConfig(raw json.RawMessage) (*string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return nil, nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return nil, errMCPConfigNotObject
	}
	return &trimmed, nil
}
