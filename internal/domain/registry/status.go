package registry

import "fmt"

// ServerStatus is the registration lifecycle state of an MCP server.
type ServerStatus string

const (
	StatusPendingScan ServerStatus = "PendingScan"
	StatusScannedPass ServerStatus = "ScannedPass"
	StatusScannedFail ServerStatus = "ScannedFail"
	StatusApproved    ServerStatus = "Approved"
	StatusDenied      ServerStatus = "Denied"
	StatusSuspended   ServerStatus = "Suspended"
)

var allowedStatuses = map[ServerStatus]struct{}{
	StatusPendingScan: {},
	StatusScannedPass: {},
	StatusScannedFail: {},
	StatusApproved:    {},
	StatusDenied:      {},
	StatusSuspended:   {},
}

func (s ServerStatus) String() string {
	return string(s)
}

func ParseServerStatus(value string) (ServerStatus, error) {
	status := ServerStatus(value)
	if _, ok := allowedStatuses[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return status, nil
}
