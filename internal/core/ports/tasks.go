// internal/core/ports/tasks.go
package ports

import "context"

// TaskPublisher hands work to the background workers.
type TaskPublisher interface {
	EnqueueLowStockCheck(ctx context.Context, productIDs []int64) error
	EnqueueCatalogImport(ctx context.Context, filePath string, actorID int64) (string, error)
}
