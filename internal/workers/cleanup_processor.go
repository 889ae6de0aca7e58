// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
)

// CleanupProcessor removes stale catalog uploads
type CleanupProcessor struct {
	uploadDir string
	maxAge    time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewCleanupProcessor creates a processor deleting files in uploadDir older
// than maxAge
func NewCleanupProcessor(uploadDir string, maxAge time.Duration, logger *slog.Logger) *CleanupProcessor {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &CleanupProcessor{
		uploadDir: uploadDir,
		maxAge:    maxAge,
		now:       time.Now,
		logger:    logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupTempFiles handles cleanup:temp_files tasks
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, _ *asynq.Task) error {
	deleted, err := p.RemoveStale(ctx)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "temp files cleaned up", slog.Int("files_deleted", deleted))
	return nil
}

// RemoveStale deletes old regular files and returns how many were removed.
// A missing upload directory is not an error.
func (p *CleanupProcessor) RemoveStale(ctx context.Context) (int, error) {
	cutoff := p.now().Add(-p.maxAge)
	deleted := 0

	err := filepath.WalkDir(p.uploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == p.uploadDir {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			p.logger.WarnContext(ctx, "failed to delete temp file",
				slog.String("file", path),
				slog.String("error", err.Error()))
			return nil
		}
		deleted++
		return nil
	})
	if err != nil {
		return deleted, fmt.Errorf("failed to walk upload directory: %w", err)
	}
	return deleted, nil
}
