// internal/workers/mux.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/optica-pos/internal/pkg/config"
	"github.com/ammerola/optica-pos/internal/pkg/metrics"
)

// Processors are the task handlers of the worker. Outbox is nil when no
// message bus is configured.
type Processors struct {
	Import   *CatalogImportProcessor
	LowStock *LowStockProcessor
	Email    *EmailProcessor
	Outbox   *OutboxRelay
	Cleanup  *CleanupProcessor
}

// NewServeMux routes every task type to its processor
func NewServeMux(p Processors, m *metrics.Metrics, logger *slog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(observe(m, logger))

	mux.HandleFunc(TypeCatalogImport, p.Import.ProcessImport)
	mux.HandleFunc(TypeLowStockCheck, p.LowStock.CheckLowStock)
	mux.HandleFunc(TypeSendEmail, p.Email.SendEmail)
	mux.HandleFunc(TypeCleanupTempFiles, p.Cleanup.CleanupTempFiles)
	if p.Outbox != nil {
		mux.HandleFunc(TypeOutboxRelay, p.Outbox.Relay)
	}
	return mux
}

// observe logs and counts every processed task
func observe(m *metrics.Metrics, logger *slog.Logger) asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			start := time.Now()
			err := next.ProcessTask(ctx, t)
			m.TaskProcessed(t.Type(), err)

			attrs := []any{
				slog.String("task_type", t.Type()),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.ErrorContext(ctx, "task failed", append(attrs, slog.String("error", err.Error()))...)
			} else {
				logger.DebugContext(ctx, "task processed", attrs...)
			}
			return err
		})
	}
}

// PeriodicRegistrar is the part of *asynq.Scheduler used to register jobs
type PeriodicRegistrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

// RegisterPeriodicTasks schedules the cleanup and, when relayEnabled, the
// outbox relay.
func RegisterPeriodicTasks(s PeriodicRegistrar, cfg config.AsynqConfig, relayEnabled bool) error {
	if _, err := s.Register(cfg.CleanupInterval, asynq.NewTask(TypeCleanupTempFiles, nil),
		asynq.Queue(QueueLow), asynq.MaxRetry(1)); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", TypeCleanupTempFiles, err)
	}

	if !relayEnabled {
		return nil
	}
	// A run that overlaps the next tick is dropped by the unique lock
	if _, err := s.Register(cfg.OutboxInterval, asynq.NewTask(TypeOutboxRelay, nil),
		asynq.Queue(QueueCritical), asynq.MaxRetry(0), asynq.Unique(time.Minute)); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", TypeOutboxRelay, err)
	}
	return nil
}
