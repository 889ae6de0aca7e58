package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func validSaleRequest(opts ...func(*domain.SaleRequest)) *domain.SaleRequest {
	req := &domain.SaleRequest{
		PaymentMethodID: 1,
		Items: []domain.LineRequest{
			{ProductID: 7, Quantity: 2, UnitPrice: ptr(d("100"))},
		},
	}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

func TestSaleRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       *domain.SaleRequest
		wantField string
	}{
		{
			name: "valid_request",
			req:  validSaleRequest(),
		},
		{
			name:      "empty_cart",
			req:       validSaleRequest(func(r *domain.SaleRequest) { r.Items = nil }),
			wantField: "items",
		},
		{
			name:      "missing_payment_method",
			req:       validSaleRequest(func(r *domain.SaleRequest) { r.PaymentMethodID = 0 }),
			wantField: "payment_method_id",
		},
		{
			name: "zero_quantity_on_second_line",
			req: validSaleRequest(func(r *domain.SaleRequest) {
				r.Items = append(r.Items, domain.LineRequest{ProductID: 8, Quantity: 0})
			}),
			wantField: "items[1].qty",
		},
		{
			name: "negative_unit_price",
			req: validSaleRequest(func(r *domain.SaleRequest) {
				r.Items[0].UnitPrice = ptr(d("-0.01"))
			}),
			wantField: "items[0].unit_price",
		},
		{
			name: "unit_price_above_column_range",
			req: validSaleRequest(func(r *domain.SaleRequest) {
				r.Items[0].UnitPrice = ptr(d("10000000000.00"))
			}),
			wantField: "items[0].unit_price",
		},
		{
			name: "quantity_above_limit",
			req: validSaleRequest(func(r *domain.SaleRequest) {
				r.Items[0].Quantity = 100001
			}),
			wantField: "items[0].qty",
		},
		{
			name: "axis_out_of_range",
			req: validSaleRequest(func(r *domain.SaleRequest) {
				r.Items[0].Axis = ptr(181)
			}),
			wantField: "items[0].axis",
		},
		{
			name: "unknown_item_discount_type",
			req: validSaleRequest(func(r *domain.SaleRequest) {
				r.Items[0].ItemDiscountType = "half"
			}),
			wantField: "items[0].item_discount_type",
		},
		{
			name: "unknown_order_discount_type",
			req: validSaleRequest(func(r *domain.SaleRequest) {
				r.DiscountType = "coupon"
			}),
			wantField: "discount_type",
		},
		{
			name: "non_positive_customer_id",
			req: validSaleRequest(func(r *domain.SaleRequest) {
				r.CustomerID = ptr(int64(0))
			}),
			wantField: "customer_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := tt.req.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				require.NotNil(t, cart)
				return
			}

			require.Error(t, err)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestSaleRequest_Validate_AcceptsLegacyDiscountNames(t *testing.T) {
	req := validSaleRequest(func(r *domain.SaleRequest) {
		r.DiscountType = "order_pct"
		r.DiscountValue = ptr(d("10"))
		r.Items[0].ItemDiscountType = "pct"
		r.Items[0].ItemDiscountValue = ptr(d("5"))
	})

	cart, err := req.Validate()
	require.NoError(t, err)

	assert.Equal(t, domain.DiscountPercent, cart.OrderDiscount.Mode)
	assert.Equal(t, domain.DiscountPercent, cart.Lines[0].Discount.Mode)
	assert.True(t, cart.OrderDiscount.Value.Equal(decimal.NewFromInt(10)))
}

func TestCart_ProductIDsAreDistinctAndAscending(t *testing.T) {
	cart := &domain.Cart{Lines: []domain.CartLine{
		{ProductID: 42, Quantity: 1},
		{ProductID: 7, Quantity: 2},
		{ProductID: 42, Quantity: 3},
		{ProductID: 13, Quantity: 1},
	}}

	assert.Equal(t, []int64{7, 13, 42}, cart.ProductIDs())
	assert.Equal(t, map[int64]int{7: 2, 13: 1, 42: 4}, cart.RequestedQuantities())
}

func TestCart_CheckAvailability(t *testing.T) {
	cart := &domain.Cart{Lines: []domain.CartLine{
		{ProductID: 42, Quantity: 1},
		{ProductID: 7, Quantity: 2},
		{ProductID: 42, Quantity: 1},
	}}

	assert.NoError(t, cart.CheckAvailability(map[int64]int{7: 2, 42: 2}))

	err := cart.CheckAvailability(map[int64]int{7: 1, 42: 0})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(7), stockErr.ProductID, "the lowest id is reported first")
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	err = cart.CheckAvailability(map[int64]int{7: 5})
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(42), stockErr.ProductID)
	assert.Equal(t, 0, stockErr.Available)
}

func TestCart_CheckAmounts(t *testing.T) {
	line := func(qty int, price string) domain.CartLine {
		return domain.CartLine{ProductID: 1, Quantity: qty, UnitPrice: ptr(d(price))}
	}

	ok := &domain.Cart{Lines: []domain.CartLine{line(1, "9999999999.99")}}
	assert.NoError(t, ok.CheckAmounts())

	var ve *domain.ValidationError

	err := (&domain.Cart{Lines: []domain.CartLine{line(1, "10"), line(2, "9999999999.99")}}).CheckAmounts()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[1].qty", ve.Field)

	err = (&domain.Cart{Lines: []domain.CartLine{line(1, "6000000000"), line(1, "6000000000")}}).CheckAmounts()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items", ve.Field)
}

func TestNewSale_CopiesPricingOntoItems(t *testing.T) {
	cart, err := validSaleRequest(func(r *domain.SaleRequest) {
		r.DiscountType = "percent"
		r.DiscountValue = ptr(d("10"))
		r.Notes = "  lentes armazón  "
	}).Validate()
	require.NoError(t, err)

	pricing := domain.PriceCart(cart.PriceLines(), cart.OrderDiscount)
	actor := domain.Actor{ID: 3, Name: "Caja 1", Role: domain.RoleEmployee}
	attr := domain.AttributeCustomer(actor, domain.CustomerRequest{})

	sale := domain.NewSale(actor, cart, attr, pricing, "key-1")

	assert.Equal(t, int64(3), sale.UserID)
	assert.Equal(t, domain.WalkInCustomerName, sale.CustomerName)
	assert.Equal(t, "lentes armazón", sale.Notes)
	require.NotNil(t, sale.IdempotencyKey)
	assert.Equal(t, "key-1", *sale.IdempotencyKey)
	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Items[0].LineTotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(180)))

	receipt := sale.Receipt()
	assert.True(t, receipt.DiscountAmount.Equal(decimal.NewFromInt(20)))
}

func TestValidateIdempotencyKey(t *testing.T) {
	assert.NoError(t, domain.ValidateIdempotencyKey(""))
	assert.NoError(t, domain.ValidateIdempotencyKey("3f0c8c9e-6e7a-4c4a-9f55-0d4b0e0a1c11"))

	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, domain.ValidateIdempotencyKey(string(long)))
}

func TestInsufficientStockError(t *testing.T) {
	err := error(&domain.InsufficientStockError{ProductID: 9, Requested: 5, Available: 3})

	assert.Equal(t, "product 9: stock=3, qty=5", err.Error())
	assert.True(t, domain.IsValidation(err))
	assert.False(t, domain.IsValidation(domain.ErrConflict))
}
