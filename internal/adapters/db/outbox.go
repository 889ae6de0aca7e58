// internal/adapters/db/outbox.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/optica-pos/internal/core/ports"
)

type outboxRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewOutbox creates the transactional outbox store
func NewOutbox(db *Database, logger *slog.Logger) ports.Outbox {
	return &outboxRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "outbox")),
	}
}

// Insert stores event in the caller's transaction
func (o *outboxRepository) Insert(ctx context.Context, tx pgx.Tx, event ports.OutboxEvent) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox (id, aggregate, aggregate_id, event_type, payload, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')`,
		event.ID, event.Aggregate, event.AggregateID, event.EventType, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// FetchPending returns the oldest unsent events
func (o *outboxRepository) FetchPending(ctx context.Context, limit int) ([]ports.OutboxEvent, error) {
	rows, err := o.db.Query(ctx, `
		SELECT id::text, aggregate, aggregate_id, event_type, payload
		FROM outbox
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox: %w", err)
	}
	defer rows.Close()

	var events []ports.OutboxEvent
	for rows.Next() {
		var e ports.OutboxEvent
		if err := rows.Scan(&e.ID, &e.Aggregate, &e.AggregateID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkSent flags an event as delivered
func (o *outboxRepository) MarkSent(ctx context.Context, id string) error {
	_, err := o.db.Exec(ctx, `UPDATE outbox SET status = 'sent', sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %s sent: %w", id, err)
	}
	return nil
}
