// internal/handlers/sales.go
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

// IdempotencyKeyHeader lets clients retry a sale safely
const IdempotencyKeyHeader = "Idempotency-Key"

// SaleHandler handles sale requests
type SaleHandler struct {
	service ports.SaleService
	logger  *slog.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(service ports.SaleService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "sales")),
	}
}

// SaleCreatedResponse is the body returned for a committed sale. Amounts
// are fixed to two decimals.
type SaleCreatedResponse struct {
	OK               bool   `json:"ok"`
	SaleID           int64  `json:"sale_id"`
	Subtotal         string `json:"subtotal"`
	DiscountAmount   string `json:"discount_amount"`
	Total            string `json:"total"`
	IdempotentReplay bool   `json:"idempotent_replay,omitempty"`
}

// CreateSale handles POST /api/v1/sales. A replayed idempotency key
// returns the original sale with 200 instead of 201.
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := requireActor(r)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}

	var req domain.SaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	receipt, err := h.service.CreateSale(ctx, actor, &req, key)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}

	status := http.StatusCreated
	if receipt.IdempotentReplay {
		status = http.StatusOK
	}
	respondJSON(w, status, SaleCreatedResponse{
		OK:               true,
		SaleID:           receipt.SaleID,
		Subtotal:         receipt.Subtotal.StringFixed(2),
		DiscountAmount:   receipt.DiscountAmount.StringFixed(2),
		Total:            receipt.Total.StringFixed(2),
		IdempotentReplay: receipt.IdempotentReplay,
	})
}

// GetSale handles GET /api/v1/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

// ListSalesNotAllowed answers GET /api/v1/sales, which is not a listing
func (h *SaleHandler) ListSalesNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	respondError(w, http.StatusMethodNotAllowed, "Use POST /api/v1/sales to create a sale.")
}
