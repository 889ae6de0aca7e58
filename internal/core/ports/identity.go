// internal/core/ports/identity.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

// UserRepository looks up and stores accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

// SessionStore keeps opaque bearer tokens.
type SessionStore interface {
	Save(ctx context.Context, token string, actor domain.Actor, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (*domain.Actor, error)
	Revoke(ctx context.Context, token string) error
}
