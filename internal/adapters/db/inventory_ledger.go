// internal/adapters/db/inventory_ledger.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

// inventoryLedger implements ports.InventoryLedger
type inventoryLedger struct {
	db     *Database
	logger *slog.Logger
}

// NewInventoryLedger creates the stock ledger
func NewInventoryLedger(db *Database, logger *slog.Logger) ports.InventoryLedger {
	return &inventoryLedger{
		db:     db,
		logger: logger.With(slog.String("repository", "inventory")),
	}
}

// EnsureTracked creates a zero-stock row when the product has none
func (l *inventoryLedger) EnsureTracked(ctx context.Context, tx pgx.Tx, productID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO inventory (product_id, stock) VALUES ($1, 0) ON CONFLICT (product_id) DO NOTHING`,
		productID)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to track product %d: %w", productID, err)
	}
	return nil
}

// LockAndRead takes the row lock for productID and returns its stock
func (l *inventoryLedger) LockAndRead(ctx context.Context, tx pgx.Tx, productID int64) (int, error) {
	var stock int
	err := tx.QueryRow(ctx,
		`SELECT stock FROM inventory WHERE product_id = $1 FOR UPDATE`,
		productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("inventory for product %d: %w", productID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to lock inventory for product %d: %w", productID, translatePgError(err))
	}
	return stock, nil
}

// Adjust applies delta and records the movement. The update refuses to go
// below zero; a refused decrement reports the stock that was available.
func (l *inventoryLedger) Adjust(ctx context.Context, tx pgx.Tx, productID int64, delta int, src domain.MovementSource) (*domain.InventoryMovement, error) {
	if delta == 0 {
		return nil, domain.NewValidationError("quantity", "stock adjustment cannot be zero")
	}

	var after int
	err := tx.QueryRow(ctx, `
		UPDATE inventory
		SET stock = stock + $2,
		    last_restock_at = CASE WHEN $2 > 0 THEN NOW() ELSE last_restock_at END,
		    updated_at = NOW()
		WHERE product_id = $1 AND stock + $2 >= 0
		RETURNING stock`,
		productID, delta).Scan(&after)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to adjust stock for product %d: %w", productID, translatePgError(err))
		}
		var available int
		if err := tx.QueryRow(ctx, `SELECT stock FROM inventory WHERE product_id = $1`, productID).Scan(&available); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("inventory for product %d: %w", productID, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to read stock for product %d: %w", productID, err)
		}
		return nil, &domain.InsufficientStockError{ProductID: productID, Requested: -delta, Available: available}
	}

	m := domain.NewMovement(productID, delta, after-delta, src)

	var actor *int64
	if m.ActorID > 0 {
		actor = &m.ActorID
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO inventory_movements (
			product_id, variant_id, type, qty, quantity_before, quantity_after,
			reference_type, reference_id, user_id, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))
		RETURNING id, created_at`,
		m.ProductID, m.VariantID, string(m.Direction), m.Quantity, m.QuantityBefore, m.QuantityAfter,
		string(m.ReferenceType), m.ReferenceID, actor, m.Note,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record movement for product %d: %w", productID, err)
	}

	l.logger.DebugContext(ctx, "stock adjusted",
		slog.Int64("product_id", productID),
		slog.Int("delta", delta),
		slog.Int("stock", after),
		slog.String("reference_type", string(m.ReferenceType)))

	return &m, nil
}

const inventoryViewQuery = `
	SELECT p.id, p.sku, p.name, COALESCE(c.name, ''), p.sale_price, p.buy_price,
	       COALESCE(i.stock, 0), p.min_stock, p.max_stock, p.image_key IS NOT NULL
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN inventory i ON i.product_id = p.id
	WHERE p.deleted_at IS NULL AND p.active`

// ListStock returns the stock view of every active product with variants
func (l *inventoryLedger) ListStock(ctx context.Context) ([]domain.InventoryView, error) {
	return l.queryViews(ctx, inventoryViewQuery+` ORDER BY p.name ASC`)
}

// StockLevels returns the stock view of the given products
func (l *inventoryLedger) StockLevels(ctx context.Context, productIDs []int64) ([]domain.InventoryView, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	return l.queryViews(ctx, inventoryViewQuery+` AND p.id = ANY($1) ORDER BY p.id ASC`, productIDs)
}

func (l *inventoryLedger) queryViews(ctx context.Context, query string, args ...interface{}) ([]domain.InventoryView, error) {
	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	views := make([]domain.InventoryView, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var v domain.InventoryView
		var maxStock sql.NullInt32
		if err := rows.Scan(&v.ProductID, &v.SKU, &v.Name, &v.CategoryName, &v.SalePrice, &v.BuyPrice,
			&v.Stock, &v.MinStock, &maxStock, &v.HasImage); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		if maxStock.Valid {
			m := int(maxStock.Int32)
			v.MaxStock = &m
		}
		v.Critical = domain.IsCritical(v.Stock, v.MinStock)
		v.Variants = []domain.VariantStock{}
		index[v.ProductID] = len(views)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory rows: %w", err)
	}

	if len(views) == 0 {
		return views, nil
	}

	ids := make([]int64, len(views))
	for i := range views {
		ids[i] = views[i].ProductID
	}
	if err := l.attachVariants(ctx, ids, views, index); err != nil {
		return nil, err
	}
	return views, nil
}

func (l *inventoryLedger) attachVariants(ctx context.Context, ids []int64, views []domain.InventoryView, index map[int64]int) error {
	rows, err := l.db.Query(ctx, `
		SELECT v.id, v.product_id, COALESCE(v.type, ''), v.sph, v.cyl, v."add", v.bc, v.dia,
		       COALESCE(v.color, ''), COALESCE(iv.stock, 0)
		FROM product_variants v
		LEFT JOIN inventory_variants iv ON iv.variant_id = v.id
		WHERE v.product_id = ANY($1) AND v.deleted_at IS NULL AND v.active
		ORDER BY v.product_id, v.id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vs domain.VariantStock
		var productID int64
		var sph, cyl, add, bc, dia decimal.NullDecimal
		if err := rows.Scan(&vs.ID, &productID, &vs.Type, &sph, &cyl, &add, &bc, &dia, &vs.Color, &vs.Stock); err != nil {
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		vs.Sph, vs.Cyl, vs.Add, vs.BC, vs.Dia = nullDecimal(sph), nullDecimal(cyl), nullDecimal(add), nullDecimal(bc), nullDecimal(dia)
		if i, ok := index[productID]; ok {
			views[i].Variants = append(views[i].Variants, vs)
		}
	}
	return rows.Err()
}

// MovementsForReference lists the movements written for one reference
func (l *inventoryLedger) MovementsForReference(ctx context.Context, refType domain.ReferenceType, refID int64) ([]domain.InventoryMovement, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, product_id, variant_id, type, qty, quantity_before, quantity_after,
		       reference_type, reference_id, COALESCE(user_id, 0), COALESCE(note, ''), created_at
		FROM inventory_movements
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY id ASC`, string(refType), refID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var out []domain.InventoryMovement
	for rows.Next() {
		var m domain.InventoryMovement
		var dir, ref string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.VariantID, &dir, &m.Quantity, &m.QuantityBefore,
			&m.QuantityAfter, &ref, &m.ReferenceID, &m.ActorID, &m.Note, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		m.Direction = domain.MovementDirection(dir)
		m.ReferenceType = domain.ReferenceType(ref)
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
