// internal/core/ports/messaging.go
package ports

import "context"

// EventPublisher delivers outbox events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, events []OutboxEvent) error
	Close() error
}

// Mailer sends plain text email.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}
