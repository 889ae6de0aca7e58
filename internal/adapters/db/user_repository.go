// internal/adapters/db/user_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

type userRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *Database, logger *slog.Logger) ports.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "users")),
	}
}

// findUser loads one live user matching where
func findUser(ctx context.Context, q rowQuerier, where string, args ...interface{}) (*domain.User, error) {
	var u domain.User
	var role string
	err := q.QueryRow(ctx, `
		SELECT u.id, u.name, u.email, COALESCE(u.phone, ''), r.name, u.active, u.password_hash, u.created_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.deleted_at IS NULL AND `+where, args...,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &role, &u.Active, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// FindByEmail matches case-insensitively
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findUser(ctx, r.db, `LOWER(u.email) = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return findUser(ctx, r.db, `u.id = $1`, id)
}

// Create inserts u; PasswordHash must already be set
func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if !u.Role.Valid() {
		return domain.NewValidationError("role", "unknown role %q", u.Role)
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (role_id, name, email, phone, password_hash, active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING id, created_at`,
		u.Role.ID(), u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.Phone, u.PasswordHash, u.Active,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return fmt.Errorf("email %q already registered: %w", u.Email, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
