// internal/adapters/db/sale_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

const salesIdempotencyConstraint = "sales_user_idempotency_key"

// saleRepository implements ports.SaleRepository
type saleRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *Database, logger *slog.Logger) ports.SaleRepository {
	return &saleRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sales")),
	}
}

// InsertSale writes the header and sets sale.ID and sale.CreatedAt
func (r *saleRepository) InsertSale(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO sales (
			user_id, customer_id, customer_name, payment_method_id,
			discount_type, discount_value, subtotal, discount_amount, total,
			notes, idempotency_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)
		RETURNING id, created_at`,
		sale.UserID, sale.CustomerID, sale.CustomerName, sale.PaymentMethodID,
		string(sale.DiscountType), sale.DiscountValue, sale.Subtotal, sale.DiscountAmount, sale.Total,
		sale.Notes, sale.IdempotencyKey,
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, salesIdempotencyConstraint) {
			return domain.ErrDuplicateRequest
		}
		if pgCode(err) == pgForeignKeyViolation {
			return domain.NewValidationError("payment_method_id", "payment method or customer no longer exists")
		}
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

// InsertItem writes one line of sale item.SaleID
func (r *saleRepository) InsertItem(ctx context.Context, tx pgx.Tx, item *domain.SaleItem) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO sale_items (
			sale_id, product_id, variant_id, qty, unit_price, line_subtotal,
			discount_type, discount_value, discount_amount, line_total, axis, item_notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''))
		RETURNING id`,
		item.SaleID, item.ProductID, item.VariantID, item.Quantity, item.UnitPrice, item.LineSubtotal,
		string(item.DiscountType), item.DiscountValue, item.DiscountAmount, item.LineTotal, item.Axis, item.Notes,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert sale item for product %d: %w", item.ProductID, err)
	}
	return nil
}

const saleHeaderColumns = `
	id, user_id, customer_id, customer_name, payment_method_id,
	discount_type, discount_value, subtotal, discount_amount, total,
	COALESCE(notes, ''), idempotency_key, created_at`

// FindByID loads a sale with its items
func (r *saleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	return r.findOne(ctx, `SELECT `+saleHeaderColumns+` FROM sales WHERE id = $1`, id)
}

// FindByIdempotencyKey loads the sale userID created with key
func (r *saleRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (*domain.Sale, error) {
	return r.findOne(ctx, `SELECT `+saleHeaderColumns+` FROM sales WHERE user_id = $1 AND idempotency_key = $2`, userID, key)
}

// FindByIdempotencyKeyTx loads the header of the sale userID created with
// key, reading through tx so rows committed while tx waited on a lock are
// visible.
func (r *saleRepository) FindByIdempotencyKeyTx(ctx context.Context, tx pgx.Tx, userID int64, key string) (*domain.Sale, error) {
	return scanSaleHeader(tx.QueryRow(ctx,
		`SELECT `+saleHeaderColumns+` FROM sales WHERE user_id = $1 AND idempotency_key = $2`, userID, key))
}

func (r *saleRepository) findOne(ctx context.Context, query string, args ...interface{}) (*domain.Sale, error) {
	s, err := scanSaleHeader(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	items, err := r.findItems(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

func scanSaleHeader(row pgx.Row) (*domain.Sale, error) {
	var s domain.Sale
	var discountType string
	var key sql.NullString
	err := row.Scan(
		&s.ID, &s.UserID, &s.CustomerID, &s.CustomerName, &s.PaymentMethodID,
		&discountType, &s.DiscountValue, &s.Subtotal, &s.DiscountAmount, &s.Total,
		&s.Notes, &key, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}
	s.DiscountType = domain.DiscountMode(discountType)
	if key.Valid {
		s.IdempotencyKey = &key.String
	}
	return &s, nil
}

func (r *saleRepository) findItems(ctx context.Context, saleID int64) ([]domain.SaleItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT si.id, si.sale_id, si.product_id, si.variant_id, COALESCE(p.sku, ''), COALESCE(p.name, ''),
		       si.qty, si.unit_price, si.line_subtotal, si.discount_type, si.discount_value,
		       si.discount_amount, si.line_total, si.axis, COALESCE(si.item_notes, '')
		FROM sale_items si
		LEFT JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = $1
		ORDER BY si.id ASC`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0)
	for rows.Next() {
		var it domain.SaleItem
		var discountType string
		var axis sql.NullInt16
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.VariantID, &it.SKU, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.LineSubtotal, &discountType, &it.DiscountValue,
			&it.DiscountAmount, &it.LineTotal, &axis, &it.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		it.DiscountType = domain.DiscountMode(discountType)
		if axis.Valid {
			a := int(axis.Int16)
			it.Axis = &a
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}
	return items, nil
}
