// internal/core/ports/storage.go
package ports

import (
	"context"
	"io"
)

// ImageStore stores product images.
type ImageStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
