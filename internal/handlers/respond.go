// internal/handlers/respond.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/handlers/middleware"
)

const maxJSONBody = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// handleServiceError maps domain errors onto HTTP responses. Anything it
// does not recognise is logged and reported as a 500.
func handleServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *domain.ValidationError
	var se *domain.InsufficientStockError

	switch {
	case errors.As(err, &se):
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":      "insufficient stock",
			"product_id": se.ProductID,
			"requested":  se.Requested,
			"available":  se.Available,
		})
	case errors.As(err, &ve):
		body := map[string]string{"error": ve.Message}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		respondJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(w, http.StatusUnprocessableEntity, "Credenciales inválidas.")
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "Recurso no encontrado")
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicateRequest):
		respondError(w, http.StatusConflict, "Conflicto: el recurso fue modificado, intenta de nuevo")
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "No autenticado")
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, "No autorizado")
	case errors.Is(err, context.Canceled):
		// client went away
		w.WriteHeader(499)
	default:
		logger.ErrorContext(ctx, "request failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}

// decodeJSON reads a JSON body of at most maxJSONBody bytes into dest
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("", "request body is empty")
		}
		return domain.NewValidationError("", "invalid JSON body: %v", err)
	}
	return nil
}

// pathID parses the {id} path value
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// requireActor returns the request's actor. Routes needing it are behind
// RequireRoles, so a missing actor is a wiring bug.
func requireActor(r *http.Request) (domain.Actor, error) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		return domain.Actor{}, fmt.Errorf("no actor on request: %w", domain.ErrUnauthorized)
	}
	return actor, nil
}
