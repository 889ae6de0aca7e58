// internal/core/services/inventory.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/pkg/metrics"
)

// InventoryService handles stock outside of sales
type InventoryService struct {
	tx       ports.Transactor
	ledger   ports.InventoryLedger
	catalog  ports.CatalogRepository
	cache    ports.CacheRepository
	metrics  *metrics.Metrics
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service. cache and m may be nil.
func NewInventoryService(tx ports.Transactor, ledger ports.InventoryLedger, catalog ports.CatalogRepository,
	cache ports.CacheRepository, m *metrics.Metrics, cacheTTL time.Duration, logger *slog.Logger) *InventoryService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &InventoryService{
		tx:       tx,
		ledger:   ledger,
		catalog:  catalog,
		cache:    cache,
		metrics:  m,
		cacheTTL: cacheTTL,
		logger:   logger.With(slog.String("service", "inventory")),
	}
}

// AddStock adds adj.Quantity units to productID and records a manual
// movement. A product without an inventory row starts from zero.
func (s *InventoryService) AddStock(ctx context.Context, actor domain.Actor, productID int64, adj domain.StockAdjustment) (*domain.InventoryMovement, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.catalog.FindProduct(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	var movement *domain.InventoryMovement
	err := s.tx.Transaction(ctx, func(tx pgx.Tx) error {
		if err := s.ledger.EnsureTracked(ctx, tx, productID); err != nil {
			return err
		}
		if _, err := s.ledger.LockAndRead(ctx, tx, productID); err != nil {
			return err
		}
		m, err := s.ledger.Adjust(ctx, tx, productID, adj.Quantity, domain.ManualMovement(actor.ID, adj.Note))
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StockMoved(string(domain.MovementIn), string(domain.ReferenceManual), adj.Quantity)
	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "stock added",
		slog.Int64("product_id", productID),
		slog.Int("quantity", adj.Quantity),
		slog.Int("stock", movement.QuantityAfter),
		slog.Int64("user_id", actor.ID))

	return movement, nil
}

// List returns the inventory view, served from cache when possible
func (s *InventoryService) List(ctx context.Context) ([]domain.InventoryView, error) {
	load := func() ([]domain.InventoryView, error) {
		views, err := s.ledger.ListStock(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list inventory: %w", err)
		}
		for i := range views {
			if views[i].HasImage {
				views[i].ImageURL = ProductImagePath(views[i].ProductID)
			}
		}
		return views, nil
	}

	if s.cache == nil {
		return load()
	}

	var views []domain.InventoryView
	err := s.cache.GetOrSet(ctx, inventoryCacheKey, &views, func() (interface{}, error) {
		return load()
	}, s.cacheTTL)
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *InventoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(context.WithoutCancel(ctx), inventoryCacheGlob); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate inventory cache",
			slog.String("error", err.Error()))
	}
}

// ProductImagePath is the API path serving a product's image
func ProductImagePath(productID int64) string {
	return fmt.Sprintf("/api/v1/products/%d/image", productID)
}
