// internal/core/services/auth.go
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

const tokenBytes = 32

// AuthService logs users in and resolves bearer tokens
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	ttl      time.Duration
	logger   *slog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new auth service issuing tokens valid for ttl
func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, ttl time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger.With(slog.String("service", "auth")),
	}
}

// Login checks the credentials of an active account and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		s.logger.InfoContext(ctx, "login refused for inactive user", slog.Int64("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, token, user.Actor(), s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)))

	return &ports.LoginResult{Token: token, ExpiresIn: s.ttl, User: user}, nil
}

// Logout revokes token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Authenticate resolves a bearer token into the actor it was issued to
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Actor, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.sessions.Lookup(ctx, token)
}

// HashPassword hashes password with bcrypt at cost
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
