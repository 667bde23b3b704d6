package registry

import "fmt"

// AdminAction is a manual status override applied by an administrator.
type AdminAction string

const (
	ActionApprove AdminAction = "approve"
	ActionDeny    AdminAction = "deny"
	ActionSuspend AdminAction = "suspend"
)

var allowedActions = map[AdminAction]struct{}{
	ActionApprove: {},
	ActionDeny:    {},
	ActionSuspend: {},
}

func (a AdminAction) String() string {
	return string(a)
}

func ParseAdminAction(value string) (AdminAction, error) {
	action := AdminAction(value)
	if _, ok := allowedActions[action]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAdminAction, value)
	}
	return action, nil
}

// TargetStatus is the status the server moves to when the action is applied.
func (a AdminAction) TargetStatus() ServerStatus {
	switch a {
	case ActionApprove:
		return StatusApproved
	case ActionDeny:
		return StatusDenied
	case ActionSuspend:
		return StatusSuspended
	default:
		return ""
	}
}

func (a AdminAction) EventType() EventType {
	switch a {
	case ActionApprove:
		return EventServerApproved
	case ActionDeny:
		return EventServerDenied
	case ActionSuspend:
		return EventServerSuspended
	default:
		return ""
	}
}

func (a AdminAction) PastTense() string {
	switch a {
	case ActionApprove:
		return "approved"
	case ActionDeny:
		return "denied"
	case ActionSuspend:
		return "suspended"
	default:
		return string(a)
	}
}
