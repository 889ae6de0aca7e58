package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

func TestNewMovement(t *testing.T) {
	t.Run("sale_decrement_is_out", func(t *testing.T) {
		m := domain.NewMovement(7, -2, 5, domain.SaleMovement(100, nil, 3))

		assert.Equal(t, domain.MovementOut, m.Direction)
		assert.Equal(t, 2, m.Quantity)
		assert.Equal(t, 5, m.QuantityBefore)
		assert.Equal(t, 3, m.QuantityAfter)
		assert.Equal(t, domain.ReferenceSale, m.ReferenceType)
		require.NotNil(t, m.ReferenceID)
		assert.Equal(t, int64(100), *m.ReferenceID)
		assert.Equal(t, domain.SaleMovementNote, m.Note)
	})

	t.Run("manual_restock_is_in_without_reference", func(t *testing.T) {
		m := domain.NewMovement(7, 10, 0, domain.ManualMovement(1, " recepción proveedor "))

		assert.Equal(t, domain.MovementIn, m.Direction)
		assert.Equal(t, 10, m.Quantity)
		assert.Equal(t, 10, m.QuantityAfter)
		assert.Equal(t, domain.ReferenceManual, m.ReferenceType)
		assert.Nil(t, m.ReferenceID)
		assert.Equal(t, "recepción proveedor", m.Note)
	})
}

func TestStockAdjustment_Validate(t *testing.T) {
	assert.NoError(t, domain.StockAdjustment{Quantity: 1}.Validate())
	assert.Error(t, domain.StockAdjustment{Quantity: 0}.Validate())
	assert.Error(t, domain.StockAdjustment{Quantity: -4}.Validate())
}

func TestIsCritical(t *testing.T) {
	assert.True(t, domain.IsCritical(0, 0))
	assert.True(t, domain.IsCritical(3, 3))
	assert.False(t, domain.IsCritical(4, 3))
}

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.Product)
		wantField string
	}{
		{name: "valid", mutate: func(p *domain.Product) {}},
		{name: "missing_sku", mutate: func(p *domain.Product) { p.SKU = "  " }, wantField: "sku"},
		{name: "missing_name", mutate: func(p *domain.Product) { p.Name = "" }, wantField: "name"},
		{name: "negative_sale_price", mutate: func(p *domain.Product) { p.SalePrice = d("-1") }, wantField: "sale_price"},
		{name: "max_below_min", mutate: func(p *domain.Product) { p.MinStock = 5; p.MaxStock = ptr(2) }, wantField: "max_stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.Product{SKU: "ARM-001", Name: "Armazón acetato", SalePrice: d("1200"), BuyPrice: d("600")}
			tt.mutate(p)

			err := p.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}
