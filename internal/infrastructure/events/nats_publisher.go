package events

import (
	"context"

	"github.com/nats-io/nats.go"

	"mcpgate/internal/errs"
)

// NATSPublisher emits audit events onto a NATS subject per event type.
type NATSPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

func NewNATSPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("mcpgate"))
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats at %s", url)
	}
	return &NATSPublisher{conn: conn, subjectPrefix: subjectPrefix}, nil
}

func (p *NATSPublisher) PublishAuditEvent(ctx context.Context, eventType string, payload []byte) error {
	subject := p.subjectPrefix + "." + eventType
	if err := p.conn.Publish(subject, payload); err != nil {
		return errs.Wrapf(err, "publish audit event to %s", subject)
	}
	return nil
}

// Close drains in-flight messages before disconnecting.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return errs.Wrap(err, "drain nats connection")
	}
	return nil
}

// NoopPublisher is used when no event bus is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) PublishAuditEvent(ctx context.Context, eventType string, payload []byte) error {
	return nil
}
