// internal/handlers/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/pkg/logger"
)

type actorKey struct{}

// WithActor stores the authenticated actor in ctx
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	ctx = context.WithValue(ctx, actorKey{}, actor)
	return logger.WithUser(ctx, actor.ID, string(actor.Role))
}

// ActorFrom returns the actor stored by Authenticate
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Authenticate resolves the bearer token, when present, into an actor.
// Requests without a valid token continue anonymously; RequireRoles
// rejects them where a role is needed.
func Authenticate(auth ports.AuthService, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := auth.Authenticate(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithActor(r.Context(), *actor))
			case errors.Is(err, domain.ErrUnauthorized):
			default:
				l.ErrorContext(r.Context(), "failed to resolve session",
					slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"error": "No se pudo verificar la sesión",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles lets through only actors with one of roles
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make([]string, len(roles))
	for i, role := range roles {
		allowed[i] = string(role)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "No autenticado"})
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeJSON(w, http.StatusForbidden, map[string]interface{}{
				"error":   "No autorizado",
				"role":    actor.Role,
				"allowed": allowed,
			})
		})
	}
}
