// internal/pkg/logger/handlers.go
package logger

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"sync/atomic"
)

const redacted = "***REDACTED***"

// contextHandler copies request scoped values (request id, user, task) from
// the context onto every record.
type contextHandler struct {
	next slog.Handler
	keys []ContextKey
}

func withContext(next slog.Handler) slog.Handler {
	return &contextHandler{next: next, keys: defaultContextKeys()}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := extractContextAttrs(ctx, h.keys); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), keys: h.keys}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), keys: h.keys}
}

// sampledHandler keeps one in every n debug and info records. Warnings and
// errors always pass. The counter is shared by derived handlers.
type sampledHandler struct {
	next  slog.Handler
	every uint64
	seen  *atomic.Uint64
}

func withSampling(next slog.Handler, rate float64) slog.Handler {
	every := uint64(math.Round(1 / rate))
	if every <= 1 {
		return next
	}
	return &sampledHandler{next: next, every: every, seen: new(atomic.Uint64)}
}

func (h *sampledHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sampledHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < slog.LevelWarn && (h.seen.Add(1)-1)%h.every != 0 {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *sampledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sampledHandler{next: h.next.WithAttrs(attrs), every: h.every, seen: h.seen}
}

func (h *sampledHandler) WithGroup(name string) slog.Handler {
	return &sampledHandler{next: h.next.WithGroup(name), every: h.every, seen: h.seen}
}

// Attribute keys containing any of these fragments are masked. Cashier
// passwords, session tokens and the SMTP and AWS credentials are the
// secrets this service handles.
var sensitiveKeys = []string{"password", "token", "secret", "authorization", "cookie"}

var (
	credentialInText = regexp.MustCompile(`(?i)\b(password|token|secret)(\s*[:=]\s*)["']?[^"'\s,]+`)
	bearerInText     = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`)
)

// redactingHandler masks credentials in attributes, nested groups and the
// message text before the record reaches any sink.
type redactingHandler struct {
	next slog.Handler
}

func withRedaction(next slog.Handler) slog.Handler {
	return &redactingHandler{next: next}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, redactText(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redactAttr(a)
	}
	return &redactingHandler{next: h.next.WithAttrs(clean)}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if isSensitive(a.Key) {
		return slog.String(a.Key, redacted)
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		clean := make([]any, len(group))
		for i, g := range group {
			clean[i] = redactAttr(g)
		}
		return slog.Group(a.Key, clean...)
	case slog.KindString:
		return slog.String(a.Key, redactText(v.String()))
	}
	return slog.Attr{Key: a.Key, Value: v}
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func redactText(s string) string {
	s = credentialInText.ReplaceAllString(s, "${1}${2}"+redacted)
	return bearerInText.ReplaceAllString(s, "Bearer "+redacted)
}

// fanOut writes every record to each sink that accepts its level.
type fanOut []slog.Handler

func (f fanOut) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanOut) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanOut) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanOut, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanOut) WithGroup(name string) slog.Handler {
	out := make(fanOut, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
