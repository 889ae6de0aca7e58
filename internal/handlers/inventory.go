// internal/handlers/inventory.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

// InventoryHandler handles stock requests
type InventoryHandler struct {
	service ports.InventoryService
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "inventory")),
	}
}

// ListInventory handles GET /api/v1/inventory
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	if views == nil {
		views = []domain.InventoryView{}
	}
	respondJSON(w, http.StatusOK, views)
}

// AddStock handles POST /api/v1/products/{id}/stock
func (h *InventoryHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := requireActor(r)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}
	productID, err := pathID(r)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}

	var adj domain.StockAdjustment
	if err := decodeJSON(w, r, &adj); err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}

	movement, err := h.service.AddStock(ctx, actor, productID, adj)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "stock added",
		slog.Int64("product_id", productID),
		slog.Int("quantity", adj.Quantity))

	respondJSON(w, http.StatusCreated, movement)
}
