// internal/core/ports/inventory.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

// InventoryLedger holds stock per product and the movement log.
// Methods taking a pgx.Tx must run inside the caller's transaction; the
// row lock taken by LockAndRead lasts until that transaction ends.
type InventoryLedger interface {
	// EnsureTracked creates a zero-stock row if none exists. It never
	// resets existing stock.
	EnsureTracked(ctx context.Context, tx pgx.Tx, productID int64) error
	// LockAndRead locks the product's row for update and returns its stock.
	LockAndRead(ctx context.Context, tx pgx.Tx, productID int64) (int, error)
	// Adjust applies delta and appends one movement describing it.
	Adjust(ctx context.Context, tx pgx.Tx, productID int64, delta int, src domain.MovementSource) (*domain.InventoryMovement, error)

	ListStock(ctx context.Context) ([]domain.InventoryView, error)
	StockLevels(ctx context.Context, productIDs []int64) ([]domain.InventoryView, error)
	MovementsForReference(ctx context.Context, refType domain.ReferenceType, refID int64) ([]domain.InventoryMovement, error)
}
