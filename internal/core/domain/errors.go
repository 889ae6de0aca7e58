// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and adapters.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict: resource is locked or was modified concurrently")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	// ErrDuplicateRequest means an idempotency key was already used.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// ValidationError reports malformed or semantically invalid input.
// Field uses a JSON-path style such as "items[2].quantity".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError is returned when a product cannot cover the
// requested quantity under lock.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %d: stock=%d, qty=%d", e.ProductID, e.Available, e.Requested)
}

// IsValidation reports whether err is a validation failure of any kind,
// including insufficient stock.
func IsValidation(err error) bool {
	var ve *ValidationError
	var se *InsufficientStockError
	return errors.As(err, &ve) || errors.As(err, &se)
}
