// internal/core/ports/sales.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

// SaleRepository persists sales. Inserts run in the caller's transaction.
type SaleRepository interface {
	InsertSale(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error
	InsertItem(ctx context.Context, tx pgx.Tx, item *domain.SaleItem) error
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
	// FindByIdempotencyKey looks up the sale userID created with key.
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (*domain.Sale, error)
	// FindByIdempotencyKeyTx does the same lookup inside tx and loads the
	// header only.
	FindByIdempotencyKeyTx(ctx context.Context, tx pgx.Tx, userID int64, key string) (*domain.Sale, error)
}

// OutboxEvent is a domain event stored alongside the change that caused it.
type OutboxEvent struct {
	ID          string
	Aggregate   string
	AggregateID int64
	EventType   string
	Payload     []byte
}

// Outbox stores events transactionally and hands them to the relay.
type Outbox interface {
	Insert(ctx context.Context, tx pgx.Tx, event OutboxEvent) error
	FetchPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
}
