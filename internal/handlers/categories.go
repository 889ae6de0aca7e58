// internal/handlers/categories.go
package handlers

import (
	"net/http"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

// CategoryRequest is the body of category create and update requests
type CategoryRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	c := &domain.Category{Code: req.Code, Name: req.Name, Description: req.Description}
	if err := h.service.CreateCategory(r.Context(), c); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// UpdateCategory handles PUT /api/v1/categories/{id}
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	c := &domain.Category{ID: id, Code: req.Code, Name: req.Name, Description: req.Description}
	if err := h.service.UpdateCategory(r.Context(), c); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
