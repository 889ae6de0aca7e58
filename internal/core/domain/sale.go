// internal/core/domain/sale.go
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	maxAxis              = 180
	maxCustomerNameLen   = 160
	maxIdempotencyKeyLen = 128
	maxLineQuantity      = 100000

	// SaleMovementNote is written on every movement produced by a sale.
	SaleMovementNote = "Venta POS"
)

// SaleRequest is the inbound cart payload.
type SaleRequest struct {
	CustomerID      *int64           `json:"customer_id,omitempty"`
	CustomerName    string           `json:"customer_name,omitempty"`
	PaymentMethodID int64            `json:"payment_method_id"`
	DiscountType    string           `json:"discount_type,omitempty"`
	DiscountValue   *decimal.Decimal `json:"discount_value,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Items           []LineRequest    `json:"items"`
}

// LineRequest is one line of the inbound cart. UnitPrice falls back to the
// catalog sale price when omitted.
type LineRequest struct {
	ProductID         int64            `json:"product_id"`
	VariantID         *int64           `json:"variant_id,omitempty"`
	Quantity          int              `json:"qty"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
	ItemDiscountType  string           `json:"item_discount_type,omitempty"`
	ItemDiscountValue *decimal.Decimal `json:"item_discount_value,omitempty"`
	Axis              *int             `json:"axis,omitempty"`
	ItemNotes         string           `json:"item_notes,omitempty"`
}

// Cart is a SaleRequest that passed structural validation.
type Cart struct {
	CustomerID      *int64
	CustomerName    string
	PaymentMethodID int64
	OrderDiscount   Discount
	Notes           string
	Lines           []CartLine
}

// CartLine is a validated line. UnitPrice is nil until resolved from the
// catalog when the client did not send one.
type CartLine struct {
	ProductID int64
	VariantID *int64
	Quantity  int
	UnitPrice *decimal.Decimal
	Discount  Discount
	Axis      *int
	Notes     string
}

// Validate checks the payload shape before any lookup or lock happens.
func (r *SaleRequest) Validate() (*Cart, error) {
	if len(r.Items) == 0 {
		return nil, NewValidationError("items", "the cart must contain at least one item")
	}
	if r.PaymentMethodID <= 0 {
		return nil, NewValidationError("payment_method_id", "payment method is required")
	}
	if r.CustomerID != nil && *r.CustomerID <= 0 {
		return nil, NewValidationError("customer_id", "must be a positive id")
	}
	if len(r.CustomerName) > maxCustomerNameLen {
		return nil, NewValidationError("customer_name", "must be at most %d characters", maxCustomerNameLen)
	}

	orderMode, err := ParseDiscountMode(r.DiscountType)
	if err != nil {
		return nil, NewValidationError("discount_type", "%s", err.Error())
	}

	cart := &Cart{
		CustomerID:      r.CustomerID,
		CustomerName:    strings.TrimSpace(r.CustomerName),
		PaymentMethodID: r.PaymentMethodID,
		OrderDiscount:   Discount{Mode: orderMode, Value: valueOrZero(r.DiscountValue)},
		Notes:           strings.TrimSpace(r.Notes),
		Lines:           make([]CartLine, 0, len(r.Items)),
	}

	for i, it := range r.Items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		if it.ProductID <= 0 {
			return nil, NewValidationError(field("product_id"), "product is required")
		}
		if it.VariantID != nil && *it.VariantID <= 0 {
			return nil, NewValidationError(field("variant_id"), "must be a positive id")
		}
		if it.Quantity < 1 {
			return nil, NewValidationError(field("qty"), "quantity must be at least 1")
		}
		if it.Quantity > maxLineQuantity {
			return nil, NewValidationError(field("qty"), "quantity must be at most %d", maxLineQuantity)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, NewValidationError(field("unit_price"), "unit price cannot be negative")
		}
		if it.UnitPrice != nil && it.UnitPrice.GreaterThan(MaxAmount) {
			return nil, NewValidationError(field("unit_price"), "unit price must be at most %s", MaxAmount.StringFixed(2))
		}
		if it.Axis != nil && (*it.Axis < 0 || *it.Axis > maxAxis) {
			return nil, NewValidationError(field("axis"), "axis must be between 0 and %d", maxAxis)
		}
		mode, err := ParseDiscountMode(it.ItemDiscountType)
		if err != nil {
			return nil, NewValidationError(field("item_discount_type"), "%s", err.Error())
		}

		cart.Lines = append(cart.Lines, CartLine{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  Discount{Mode: mode, Value: valueOrZero(it.ItemDiscountValue)},
			Axis:      it.Axis,
			Notes:     strings.TrimSpace(it.ItemNotes),
		})
	}

	return cart, nil
}

// ValidateIdempotencyKey bounds client-supplied keys to the column size.
func ValidateIdempotencyKey(key string) error {
	if len(key) > maxIdempotencyKeyLen {
		return NewValidationError("Idempotency-Key", "must be at most %d characters", maxIdempotencyKeyLen)
	}
	return nil
}

// ProductIDs returns the distinct product ids of the cart, ascending.
// Locks are always taken in this order.
func (c *Cart) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(c.Lines))
	ids := make([]int64, 0, len(c.Lines))
	for _, l := range c.Lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RequestedQuantities sums quantities per product across all lines.
func (c *Cart) RequestedQuantities() map[int64]int {
	out := make(map[int64]int, len(c.Lines))
	for _, l := range c.Lines {
		out[l.ProductID] += l.Quantity
	}
	return out
}

// CheckAvailability compares the summed quantities against the locked stock
// levels and reports the first product, in lock order, that falls short.
// A product missing from available has no stock.
func (c *Cart) CheckAvailability(available map[int64]int) error {
	requested := c.RequestedQuantities()
	for _, id := range c.ProductIDs() {
		if want, have := requested[id], available[id]; want > have {
			return &InsufficientStockError{ProductID: id, Requested: want, Available: have}
		}
	}
	return nil
}

// CheckAmounts rejects carts whose line or order subtotal cannot be stored.
// Clamped discounts never exceed the subtotal they apply to, so bounding the
// subtotals bounds every stored amount.
func (c *Cart) CheckAmounts() error {
	total := decimal.Zero
	for i, l := range c.Lines {
		if l.UnitPrice == nil {
			continue
		}
		sub := l.UnitPrice.Round(2).Mul(decimal.NewFromInt(int64(l.Quantity)))
		if sub.GreaterThan(MaxAmount) {
			return NewValidationError(fmt.Sprintf("items[%d].qty", i),
				"line amount exceeds %s", MaxAmount.StringFixed(2))
		}
		total = total.Add(sub)
	}
	if total.GreaterThan(MaxAmount) {
		return NewValidationError("items", "sale amount exceeds %s", MaxAmount.StringFixed(2))
	}
	return nil
}

// PriceLines converts the cart into pricing input. Every line must have a
// resolved unit price by now.
func (c *Cart) PriceLines() []PriceLine {
	lines := make([]PriceLine, len(c.Lines))
	for i, l := range c.Lines {
		price := decimal.Zero
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		lines[i] = PriceLine{Quantity: l.Quantity, UnitPrice: price, Discount: l.Discount}
	}
	return lines
}

// Sale is a committed sale header with its items.
type Sale struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	CustomerID      *int64          `json:"customer_id,omitempty"`
	CustomerName    string          `json:"customer_name"`
	PaymentMethodID int64           `json:"payment_method_id"`
	DiscountType    DiscountMode    `json:"discount_type"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	Notes           string          `json:"notes,omitempty"`
	IdempotencyKey  *string         `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []SaleItem      `json:"items"`
}

// SaleItem is one persisted line of a sale.
type SaleItem struct {
	ID             int64           `json:"id"`
	SaleID         int64           `json:"sale_id"`
	ProductID      int64           `json:"product_id"`
	VariantID      *int64          `json:"variant_id,omitempty"`
	SKU            string          `json:"sku,omitempty"`
	ProductName    string          `json:"product_name,omitempty"`
	Quantity       int             `json:"qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineSubtotal   decimal.Decimal `json:"line_subtotal"`
	DiscountType   DiscountMode    `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
	Axis           *int            `json:"axis,omitempty"`
	Notes          string          `json:"item_notes,omitempty"`
}

// SaleReceipt is returned to the caller once a sale commits.
type SaleReceipt struct {
	SaleID           int64           `json:"sale_id"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	Total            decimal.Decimal `json:"total"`
	IdempotentReplay bool            `json:"idempotent_replay,omitempty"`
}

// Receipt summarises a stored sale.
func (s *Sale) Receipt() *SaleReceipt {
	return &SaleReceipt{
		SaleID:         s.ID,
		Subtotal:       s.Subtotal,
		DiscountAmount: s.DiscountAmount,
		Total:          s.Total,
	}
}

// NewSale assembles the header and items to persist from a priced cart.
func NewSale(actor Actor, cart *Cart, attr Attribution, pricing CartPricing, idempotencyKey string) *Sale {
	s := &Sale{
		UserID:          actor.ID,
		CustomerID:      attr.CustomerID,
		CustomerName:    attr.CustomerName,
		PaymentMethodID: cart.PaymentMethodID,
		DiscountType:    pricing.OrderDiscountMode,
		DiscountValue:   pricing.OrderDiscountValue,
		Subtotal:        pricing.Subtotal,
		DiscountAmount:  pricing.DiscountAmount,
		Total:           pricing.Total,
		Notes:           cart.Notes,
		Items:           make([]SaleItem, len(cart.Lines)),
	}
	if idempotencyKey != "" {
		k := idempotencyKey
		s.IdempotencyKey = &k
	}
	for i, l := range cart.Lines {
		p := pricing.Lines[i]
		s.Items[i] = SaleItem{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPrice:      p.UnitPrice,
			LineSubtotal:   p.Subtotal,
			DiscountType:   p.DiscountMode,
			DiscountValue:  p.DiscountValue,
			DiscountAmount: p.DiscountAmount,
			LineTotal:      p.Total,
			Axis:           l.Axis,
			Notes:          l.Notes,
		}
	}
	return s
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
