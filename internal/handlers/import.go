// internal/handlers/import.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

// ImportHandler accepts catalog spreadsheets and queues them for the workers
type ImportHandler struct {
	tasks       ports.TaskPublisher
	uploadDir   string
	maxFileSize int64
	logger      *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(tasks ports.TaskPublisher, uploadDir string, maxFileSize int64, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		tasks:       tasks,
		uploadDir:   uploadDir,
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("handler", "import")),
	}
}

// ImportCatalog handles POST /api/v1/products/import
func (h *ImportHandler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := requireActor(r)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+formOverhead)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleServiceError(ctx, w, h.logger,
				domain.NewValidationError("file", "file must be at most %d MB", h.maxFileSize>>20))
			return
		}
		handleServiceError(ctx, w, h.logger, domain.NewValidationError("file", "failed to parse form data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		handleServiceError(ctx, w, h.logger, domain.NewValidationError("file", "file is required"))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		handleServiceError(ctx, w, h.logger, domain.NewValidationError("file", "only .xlsx files are allowed"))
		return
	}

	path, err := h.save(file)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save upload", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	jobID, err := h.tasks.EnqueueCatalogImport(ctx, path, actor.ID)
	if err != nil {
		os.Remove(path)
		h.logger.ErrorContext(ctx, "failed to enqueue catalog import", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "catalog import queued",
		slog.String("job_id", jobID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Catalog import has been queued for processing",
	})
}

func (h *ImportHandler) save(src io.Reader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(h.uploadDir, uuid.NewString()+".xlsx")
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
