// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/optica-pos/internal/core/ports"
)

// Task types
const (
	TypeCatalogImport    = "catalog:import"
	TypeLowStockCheck    = "inventory:low_stock_check"
	TypeSendEmail        = "notification:email"
	TypeOutboxRelay      = "outbox:relay"
	TypeCleanupTempFiles = "cleanup:temp_files"
)

// Queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// CatalogImportPayload points at an uploaded xlsx file
type CatalogImportPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
	ActorID  int64  `json:"actor_id"`
}

// LowStockPayload lists the products touched by a sale
type LowStockPayload struct {
	ProductIDs []int64 `json:"product_ids"`
}

// EmailPayload is a plain text message
type EmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Enqueuer is the part of *asynq.Client the publisher uses
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher enqueues background tasks
type Publisher struct {
	client        Enqueuer
	importTimeout time.Duration
	logger        *slog.Logger
}

var _ ports.TaskPublisher = (*Publisher)(nil)

// NewPublisher creates a publisher. importTimeout bounds one catalog import.
func NewPublisher(client Enqueuer, importTimeout time.Duration, logger *slog.Logger) *Publisher {
	if importTimeout <= 0 {
		importTimeout = 10 * time.Minute
	}
	return &Publisher{
		client:        client,
		importTimeout: importTimeout,
		logger:        logger.With(slog.String("component", "task_publisher")),
	}
}

// EnqueueLowStockCheck asks the worker to look at the stock of productIDs
func (p *Publisher) EnqueueLowStockCheck(ctx context.Context, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	task, err := newTask(TypeLowStockCheck, LowStockPayload{ProductIDs: productIDs})
	if err != nil {
		return err
	}
	_, err = p.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute))
	if err != nil {
		return fmt.Errorf("failed to enqueue low stock check: %w", err)
	}
	return nil
}

// EnqueueCatalogImport schedules an import of filePath and returns its job id
func (p *Publisher) EnqueueCatalogImport(ctx context.Context, filePath string, actorID int64) (string, error) {
	jobID := uuid.NewString()
	task, err := newTask(TypeCatalogImport, CatalogImportPayload{
		JobID:    jobID,
		FilePath: filePath,
		ActorID:  actorID,
	})
	if err != nil {
		return "", err
	}

	info, err := p.client.EnqueueContext(ctx, task,
		asynq.TaskID(jobID),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(p.importTimeout),
		asynq.Retention(24*time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue catalog import: %w", err)
	}

	p.logger.InfoContext(ctx, "catalog import queued",
		slog.String("job_id", jobID),
		slog.String("queue", info.Queue))
	return jobID, nil
}

// EnqueueEmail queues a message on the low priority queue
func (p *Publisher) EnqueueEmail(ctx context.Context, email EmailPayload) error {
	task, err := newTask(TypeSendEmail, email)
	if err != nil {
		return err
	}
	if _, err := p.client.EnqueueContext(ctx, task, asynq.Queue(QueueLow), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}
	return nil
}

func newTask(taskType string, payload interface{}) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, data), nil
}

// decodePayload unmarshals a task payload. Malformed payloads are not retried.
func decodePayload(t *asynq.Task, dest interface{}) error {
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("invalid %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}
