package ports

import "context"

// EventPublisher fans audit events out to interested subscribers after
// they are committed to the audit log. Publishing is best effort and
// must not affect the write path.
type EventPublisher interface {
	PublishAuditEvent(ctx context.Context, eventType string, payload []byte) error
}
