// internal/core/services/catalog.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

const (
	// MaxImageSize bounds product image uploads.
	MaxImageSize = 5 << 20

	defaultPageSize = 50
	maxPageSize     = 200
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// CatalogService manages products, categories and product images
type CatalogService struct {
	tx     ports.Transactor
	repo   ports.CatalogRepository
	ledger ports.InventoryLedger
	images ports.ImageStore
	cache  ports.CacheRepository
	logger *slog.Logger
}

var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(tx ports.Transactor, repo ports.CatalogRepository, ledger ports.InventoryLedger,
	images ports.ImageStore, cache ports.CacheRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		tx:     tx,
		repo:   repo,
		ledger: ledger,
		images: images,
		cache:  cache,
		logger: logger.With(slog.String("service", "catalog")),
	}
}

// CreateProduct stores p with an optional image and opens its inventory
// row at zero stock.
func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product, img *ports.ImageUpload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.Active = true

	if img != nil {
		stored, err := s.storeImage(ctx, img)
		if err != nil {
			return err
		}
		p.Image = stored
	}

	err := s.tx.Transaction(ctx, func(tx pgx.Tx) error {
		if err := s.repo.CreateProduct(ctx, tx, p); err != nil {
			return err
		}
		return s.ledger.EnsureTracked(ctx, tx, p.ID)
	})
	if err != nil {
		if p.Image != nil {
			s.discardImage(ctx, p.Image.Key)
			p.Image = nil
		}
		return err
	}

	s.invalidateInventory(ctx)
	return nil
}

// UpdateProduct rewrites the product's fields and, when img is given,
// replaces its image.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *domain.Product, img *ports.ImageUpload) error {
	if err := p.Validate(); err != nil {
		return err
	}

	current, err := s.repo.FindProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	if current.SKU != p.SKU {
		return domain.NewValidationError("sku", "sku cannot be changed")
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return err
	}
	p.Image = current.Image
	p.HasImage = current.HasImage

	if img != nil {
		stored, err := s.storeImage(ctx, img)
		if err != nil {
			return err
		}
		if err := s.repo.SetProductImage(ctx, p.ID, stored); err != nil {
			s.discardImage(ctx, stored.Key)
			return err
		}
		if current.Image != nil {
			s.discardImage(ctx, current.Image.Key)
		}
		p.Image = stored
		p.HasImage = true
	}

	s.invalidateInventory(ctx)
	return nil
}

// DeleteProduct soft-deletes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.SoftDeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateInventory(ctx)
	s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindProduct(ctx, id)
}

// ListProducts returns one page of products. Page defaults to 1 and page
// size to 50, capped at 200.
func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter) (*domain.ProductPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}

	items, total, err := s.repo.ListProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	pages := int(total) / f.PageSize
	if int(total)%f.PageSize != 0 {
		pages++
	}

	return &domain.ProductPage{
		Items:      items,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalCount: total,
		TotalPages: pages,
	}, nil
}

// OpenProductImage returns the image metadata and a reader over its bytes.
// A product without an image yields nil for both and no error.
func (s *CatalogService) OpenProductImage(ctx context.Context, id int64) (*domain.ProductImage, io.ReadCloser, error) {
	p, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if p.Image == nil {
		return nil, nil, nil
	}

	body, err := s.images.Download(ctx, p.Image.Key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "product image missing from store",
				slog.Int64("product_id", id),
				slog.String("key", p.Image.Key))
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}

	img := *p.Image
	if img.MimeType == "" {
		img.MimeType = "image/jpeg"
	}
	if img.Filename == "" {
		img.Filename = fmt.Sprintf("product_%d.jpg", id)
	}
	return &img, body, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *domain.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.repo.CreateCategory(ctx, c)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, c *domain.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return err
	}
	s.invalidateInventory(ctx)
	return nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repo.SoftDeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidateInventory(ctx)
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// storeImage checks type and size and uploads the image under a fresh key
func (s *CatalogService) storeImage(ctx context.Context, img *ports.ImageUpload) (*domain.ProductImage, error) {
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(img.ContentType, ";")[0]))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, domain.NewValidationError("image", "unsupported image type %q", img.ContentType)
	}
	if img.Size > MaxImageSize {
		return nil, domain.NewValidationError("image", "image must be at most %d MB", MaxImageSize>>20)
	}

	key := fmt.Sprintf("products/%s%s", uuid.NewString(), ext)
	if err := s.images.Upload(ctx, key, io.LimitReader(img.Body, MaxImageSize+1), contentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	filename := filepath.Base(img.Filename)
	if filename == "." || filename == string(filepath.Separator) {
		filename = ""
	}
	return &domain.ProductImage{Key: key, MimeType: contentType, Filename: filename}, nil
}

func (s *CatalogService) discardImage(ctx context.Context, key string) {
	if err := s.images.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete image",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

func (s *CatalogService) invalidateInventory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(context.WithoutCancel(ctx), inventoryCacheGlob); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate inventory cache",
			slog.String("error", err.Error()))
	}
}
