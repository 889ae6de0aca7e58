// internal/core/domain/inventory.go
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementDirection is the sign of a stock change.
type MovementDirection string

const (
	MovementIn  MovementDirection = "in"
	MovementOut MovementDirection = "out"
)

// ReferenceType identifies what caused a movement.
type ReferenceType string

const (
	ReferenceManual ReferenceType = "manual"
	ReferenceSale   ReferenceType = "sale"
)

// InventoryRecord is the current stock of one product.
type InventoryRecord struct {
	ProductID     int64      `json:"product_id"`
	Stock         int        `json:"stock"`
	LastRestockAt *time.Time `json:"last_restock_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MovementSource describes why stock changes. It is supplied by the caller
// of Adjust and copied onto the movement row.
type MovementSource struct {
	VariantID     *int64
	ReferenceType ReferenceType
	ReferenceID   *int64
	ActorID       int64
	Note          string
}

// SaleMovement builds the source for a stock decrement caused by a sale.
func SaleMovement(saleID int64, variantID *int64, actorID int64) MovementSource {
	id := saleID
	return MovementSource{
		VariantID:     variantID,
		ReferenceType: ReferenceSale,
		ReferenceID:   &id,
		ActorID:       actorID,
		Note:          SaleMovementNote,
	}
}

// ManualMovement builds the source for a manual restock.
func ManualMovement(actorID int64, note string) MovementSource {
	return MovementSource{
		ReferenceType: ReferenceManual,
		ActorID:       actorID,
		Note:          strings.TrimSpace(note),
	}
}

// InventoryMovement is an append-only audit row for one stock change.
type InventoryMovement struct {
	ID             int64             `json:"id"`
	ProductID      int64             `json:"product_id"`
	VariantID      *int64            `json:"variant_id,omitempty"`
	Direction      MovementDirection `json:"type"`
	Quantity       int               `json:"qty"`
	QuantityBefore int               `json:"quantity_before"`
	QuantityAfter  int               `json:"quantity_after"`
	ReferenceType  ReferenceType     `json:"reference_type"`
	ReferenceID    *int64            `json:"reference_id,omitempty"`
	ActorID        int64             `json:"user_id"`
	Note           string            `json:"note,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// NewMovement derives direction and magnitude from delta.
func NewMovement(productID int64, delta, before int, src MovementSource) InventoryMovement {
	dir := MovementIn
	qty := delta
	if delta < 0 {
		dir = MovementOut
		qty = -delta
	}
	return InventoryMovement{
		ProductID:      productID,
		VariantID:      src.VariantID,
		Direction:      dir,
		Quantity:       qty,
		QuantityBefore: before,
		QuantityAfter:  before + delta,
		ReferenceType:  src.ReferenceType,
		ReferenceID:    src.ReferenceID,
		ActorID:        src.ActorID,
		Note:           src.Note,
	}
}

// StockAdjustment is a manual, additive stock change.
type StockAdjustment struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

// Validate rejects non-positive quantities. Manual adjustments only add.
func (a StockAdjustment) Validate() error {
	if a.Quantity <= 0 {
		return NewValidationError("quantity", "quantity must be greater than zero")
	}
	if len(a.Note) > 255 {
		return NewValidationError("note", "must be at most 255 characters")
	}
	return nil
}

// VariantStock is a variant row of the inventory view.
type VariantStock struct {
	ID    int64            `json:"id"`
	Type  string           `json:"type,omitempty"`
	Sph   *decimal.Decimal `json:"sph,omitempty"`
	Cyl   *decimal.Decimal `json:"cyl,omitempty"`
	Add   *decimal.Decimal `json:"add,omitempty"`
	BC    *decimal.Decimal `json:"bc,omitempty"`
	Dia   *decimal.Decimal `json:"dia,omitempty"`
	Color string           `json:"color,omitempty"`
	Stock int              `json:"stock"`
}

// InventoryView is one row of the stock listing.
type InventoryView struct {
	ProductID    int64           `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	CategoryName string          `json:"category,omitempty"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	Stock        int             `json:"stock"`
	MinStock     int             `json:"min_stock"`
	MaxStock     *int            `json:"max_stock,omitempty"`
	Critical     bool            `json:"critical"`
	HasImage     bool            `json:"-"`
	ImageURL     string          `json:"image_url,omitempty"`
	Variants     []VariantStock  `json:"variants"`
}

// IsCritical reports whether stock is at or below the minimum.
func IsCritical(stock, minStock int) bool {
	return stock <= minStock
}
