// internal/adapters/redis_adapter/sessions.go
package redis_a

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

// SessionStore keeps bearer tokens in Redis. Only a hash of the token is
// used as key so a dump of the keyspace does not leak usable tokens.
type SessionStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a Redis backed session store
func NewSessionStore(client *redis.Client, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		logger: logger.With(slog.String("component", "sessions")),
	}
}

func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return BuildKey(PrefixSession, hex.EncodeToString(sum[:]))
}

// Save stores the actor for token until ttl elapses
func (s *SessionStore) Save(ctx context.Context, token string, actor domain.Actor, ttl time.Duration) error {
	data, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Lookup returns the actor bound to token or domain.ErrUnauthorized
func (s *SessionStore) Lookup(ctx context.Context, token string) (*domain.Actor, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var actor domain.Actor
	if err := json.Unmarshal(data, &actor); err != nil {
		s.logger.WarnContext(ctx, "dropping unreadable session", slog.String("error", err.Error()))
		_ = s.client.Del(ctx, sessionKey(token)).Err()
		return nil, domain.ErrUnauthorized
	}
	return &actor, nil
}

// Revoke deletes the session for token
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
