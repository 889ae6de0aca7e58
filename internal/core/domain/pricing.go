// internal/core/domain/pricing.go
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountMode selects how a discount value is interpreted.
type DiscountMode string

const (
	DiscountNone    DiscountMode = "none"
	DiscountPercent DiscountMode = "percent"
	DiscountAmount  DiscountMode = "amount"
)

var hundred = decimal.NewFromInt(100)

// MaxAmount is the largest money value a NUMERIC(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ParseDiscountMode accepts the canonical names plus the short and
// order-prefixed forms older POS clients still send.
func ParseDiscountMode(s string) (DiscountMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DiscountNone, nil
	case "percent", "pct", "order_pct":
		return DiscountPercent, nil
	case "amount", "order_amount":
		return DiscountAmount, nil
	default:
		return "", fmt.Errorf("unknown discount mode %q", s)
	}
}

// Discount is a mode plus its raw, unclamped value.
type Discount struct {
	Mode  DiscountMode    `json:"mode"`
	Value decimal.Decimal `json:"value"`
}

// PriceLine is the pricing input for one cart line.
type PriceLine struct {
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  Discount
}

// PricedLine is the result for one cart line. DiscountValue is the clamped
// value that was applied, not the raw input.
type PricedLine struct {
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountMode   DiscountMode    `json:"discount_mode"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// CartPricing holds the priced lines and the order totals.
type CartPricing struct {
	Lines               []PricedLine    `json:"lines"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	ItemsDiscount       decimal.Decimal `json:"items_discount"`
	OrderDiscountMode   DiscountMode    `json:"order_discount_mode"`
	OrderDiscountValue  decimal.Decimal `json:"order_discount_value"`
	OrderDiscountAmount decimal.Decimal `json:"order_discount_amount"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	Total               decimal.Decimal `json:"total"`
}

// PriceCart computes line and order totals. Discount values are clamped
// into range before use; out-of-range input is never an error.
//
// Every amount is rounded half-up to cents as soon as it is computed and the
// totals are derived from the rounded figures, so the stored numbers always
// satisfy total = max(0, subtotal - discount) per line and per order.
func PriceCart(lines []PriceLine, order Discount) CartPricing {
	result := CartPricing{
		Lines:             make([]PricedLine, 0, len(lines)),
		Subtotal:          decimal.Zero,
		ItemsDiscount:     decimal.Zero,
		OrderDiscountMode: normalizeMode(order.Mode),
	}

	for _, l := range lines {
		unit := nonNegative(l.UnitPrice).Round(2)
		sub := nonNegative(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))

		amount := discountAmount(l.Discount, sub).Round(2)
		result.Lines = append(result.Lines, PricedLine{
			Quantity:       l.Quantity,
			UnitPrice:      unit,
			Subtotal:       sub,
			DiscountMode:   normalizeMode(l.Discount.Mode),
			DiscountValue:  l.Discount.EffectiveValue(sub).Round(2),
			DiscountAmount: amount,
			Total:          nonNegative(sub.Sub(amount)),
		})

		result.Subtotal = result.Subtotal.Add(sub)
		result.ItemsDiscount = result.ItemsDiscount.Add(amount)
	}

	result.OrderDiscountValue = order.EffectiveValue(result.Subtotal).Round(2)
	result.OrderDiscountAmount = discountAmount(order, result.Subtotal).Round(2)
	result.DiscountAmount = result.ItemsDiscount.Add(result.OrderDiscountAmount)
	result.Total = nonNegative(result.Subtotal.Sub(result.DiscountAmount))

	return result
}

// EffectiveValue returns the clamped value that is actually applied
// against base.
func (d Discount) EffectiveValue(base decimal.Decimal) decimal.Decimal {
	switch normalizeMode(d.Mode) {
	case DiscountPercent:
		return clamp(d.Value, decimal.Zero, hundred)
	case DiscountAmount:
		return clamp(d.Value, decimal.Zero, nonNegative(base))
	default:
		return decimal.Zero
	}
}

func discountAmount(d Discount, base decimal.Decimal) decimal.Decimal {
	v := d.EffectiveValue(base)
	if normalizeMode(d.Mode) == DiscountPercent {
		return base.Mul(v).Div(hundred)
	}
	return v
}

func normalizeMode(m DiscountMode) DiscountMode {
	if m == "" {
		return DiscountNone
	}
	return m
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
