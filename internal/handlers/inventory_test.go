package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/test/helpers"
)

func TestInventoryHandler_ListInventory(t *testing.T) {
	s := newTestServer(t)
	s.inventory.EXPECT().List(gomock.Any()).Return([]domain.InventoryView{
		{
			ProductID: 5,
			SKU:       "ARM-001",
			Name:      "Armazón",
			SalePrice: helpers.Dec("1200"),
			Stock:     1,
			MinStock:  2,
			Critical:  true,
			Variants:  []domain.VariantStock{},
		},
	}, nil)

	w := s.do(t, http.MethodGet, "/api/v1/inventory", employeeToken, nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sku":"ARM-001"`)
	assert.Contains(t, w.Body.String(), `"critical":true`)
}

func TestInventoryHandler_AddStock(t *testing.T) {
	t.Run("adds stock", func(t *testing.T) {
		s := newTestServer(t)
		s.inventory.EXPECT().
			AddStock(gomock.Any(), adminActor, int64(5), domain.StockAdjustment{Quantity: 10, Note: "Compra proveedor"}).
			Return(&domain.InventoryMovement{
				ID:             1,
				ProductID:      5,
				Direction:      domain.MovementIn,
				Quantity:       10,
				QuantityBefore: 0,
				QuantityAfter:  10,
				ReferenceType:  domain.ReferenceManual,
				ActorID:        1,
			}, nil)

		w := s.doJSON(t, http.MethodPost, "/api/v1/products/5/stock", adminToken,
			map[string]interface{}{"quantity": 10, "note": "Compra proveedor"})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, float64(10), body["quantity_after"])
		assert.Equal(t, "in", body["type"])
	})

	t.Run("rejects non positive quantity", func(t *testing.T) {
		s := newTestServer(t)
		s.inventory.EXPECT().
			AddStock(gomock.Any(), gomock.Any(), int64(5), gomock.Any()).
			Return(nil, domain.NewValidationError("quantity", "quantity must be greater than zero"))

		w := s.doJSON(t, http.MethodPost, "/api/v1/products/5/stock", adminToken,
			map[string]interface{}{"quantity": 0})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "quantity", decodeBody(t, w)["field"])
	})

	t.Run("unknown product", func(t *testing.T) {
		s := newTestServer(t)
		s.inventory.EXPECT().
			AddStock(gomock.Any(), gomock.Any(), int64(99), gomock.Any()).
			Return(nil, domain.ErrNotFound)

		w := s.doJSON(t, http.MethodPost, "/api/v1/products/99/stock", adminToken,
			map[string]interface{}{"quantity": 1})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
