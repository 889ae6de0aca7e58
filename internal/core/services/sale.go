// internal/core/services/sale.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/pkg/metrics"
)

const (
	inventoryCacheKey  = "inv:list"
	inventoryCacheGlob = "inv:*"
	saleCacheTTL       = 24 * time.Hour

	// EventSaleCommitted is the outbox event written with every sale.
	EventSaleCommitted = "sale.committed"

	// InventoryCachePattern matches every cached inventory view. Writers
	// outside this package delete it after changing stock.
	InventoryCachePattern = inventoryCacheGlob
)

func saleCacheKey(id int64) string {
	return fmt.Sprintf("sale:%d", id)
}

// SaleDeps are the collaborators of SaleService. Cache, Tasks and Metrics
// are optional.
type SaleDeps struct {
	Tx      ports.Transactor
	Catalog ports.CatalogResolver
	Ledger  ports.InventoryLedger
	Sales   ports.SaleRepository
	Outbox  ports.Outbox
	Cache   ports.CacheRepository
	Tasks   ports.TaskPublisher
	Metrics *metrics.Metrics
}

// SaleService records sales. A sale is validated without touching stock,
// then locked, priced and persisted inside one transaction.
type SaleService struct {
	deps   SaleDeps
	logger *slog.Logger
}

var _ ports.SaleService = (*SaleService)(nil)

// NewSaleService creates a new sale service
func NewSaleService(deps SaleDeps, logger *slog.Logger) *SaleService {
	return &SaleService{
		deps:   deps,
		logger: logger.With(slog.String("service", "sales")),
	}
}

// saleCommittedEvent is the outbox payload of a committed sale
type saleCommittedEvent struct {
	SaleID       int64           `json:"sale_id"`
	UserID       int64           `json:"user_id"`
	CustomerID   *int64          `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name"`
	Total        string          `json:"total"`
	Items        []eventLineItem `json:"items"`
	CommittedAt  time.Time       `json:"committed_at"`
}

type eventLineItem struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"qty"`
	LineTotal string `json:"line_total"`
}

// CreateSale validates, locks, prices and persists a sale. With a non-empty
// idempotencyKey a repeated request returns the stored receipt marked as a
// replay instead of selling twice.
func (s *SaleService) CreateSale(ctx context.Context, actor domain.Actor, req *domain.SaleRequest, idempotencyKey string) (*domain.SaleReceipt, error) {
	if req == nil {
		return nil, domain.NewValidationError("items", "the cart must contain at least one item")
	}
	if err := domain.ValidateIdempotencyKey(idempotencyKey); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		if receipt, err := s.replay(ctx, actor.ID, idempotencyKey); err != nil || receipt != nil {
			return receipt, err
		}
	}

	cart, attr, err := s.validate(ctx, actor, req)
	if err != nil {
		s.deps.Metrics.SaleOutcome("rejected")
		return nil, err
	}

	var sale, replayed *domain.Sale
	err = s.deps.Tx.Transaction(ctx, func(tx pgx.Tx) error {
		available, err := s.lockStock(ctx, tx, cart)
		if err != nil {
			return err
		}

		// A request with the same key may have committed while we waited
		// for the locks; its stock is already gone.
		if idempotencyKey != "" {
			existing, err := s.deps.Sales.FindByIdempotencyKeyTx(ctx, tx, actor.ID, idempotencyKey)
			if err == nil {
				replayed = existing
				return nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("failed to look up idempotency key: %w", err)
			}
		}

		if err := cart.CheckAvailability(available); err != nil {
			return err
		}

		pricing := domain.PriceCart(cart.PriceLines(), cart.OrderDiscount)
		sale = domain.NewSale(actor, cart, attr, pricing, idempotencyKey)

		return s.persist(ctx, tx, actor, sale)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRequest) && idempotencyKey != "" {
			// a concurrent request with the same key committed first
			if receipt, rerr := s.replay(ctx, actor.ID, idempotencyKey); rerr != nil || receipt != nil {
				return receipt, rerr
			}
		}
		return nil, s.handleTxError(ctx, err)
	}
	if replayed != nil {
		return s.replayReceipt(ctx, replayed), nil
	}

	s.afterCommit(ctx, sale, cart.ProductIDs())

	s.logger.InfoContext(ctx, "sale committed",
		slog.Int64("sale_id", sale.ID),
		slog.Int64("user_id", actor.ID),
		slog.String("role", string(actor.Role)),
		slog.Int("lines", len(sale.Items)),
		slog.String("total", sale.Total.StringFixed(2)))

	return sale.Receipt(), nil
}

// replay returns the receipt of the sale userID stored under key, or nil
// when no such sale exists.
func (s *SaleService) replay(ctx context.Context, userID int64, key string) (*domain.SaleReceipt, error) {
	existing, err := s.deps.Sales.FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return s.replayReceipt(ctx, existing), nil
}

func (s *SaleService) replayReceipt(ctx context.Context, existing *domain.Sale) *domain.SaleReceipt {
	s.deps.Metrics.SaleOutcome("replayed")
	s.logger.InfoContext(ctx, "idempotent replay",
		slog.Int64("sale_id", existing.ID))

	receipt := existing.Receipt()
	receipt.IdempotentReplay = true
	return receipt
}

// validate runs every check that needs no lock: payload shape, payment
// method, products, variants and customer attribution. Unit prices missing
// from the payload are filled from the catalog.
func (s *SaleService) validate(ctx context.Context, actor domain.Actor, req *domain.SaleRequest) (*domain.Cart, domain.Attribution, error) {
	cart, err := req.Validate()
	if err != nil {
		return nil, domain.Attribution{}, err
	}

	ok, err := s.deps.Catalog.ResolvePaymentMethod(ctx, cart.PaymentMethodID)
	if err != nil {
		return nil, domain.Attribution{}, fmt.Errorf("failed to resolve payment method: %w", err)
	}
	if !ok {
		return nil, domain.Attribution{}, domain.NewValidationError("payment_method_id",
			"payment method %d does not exist", cart.PaymentMethodID)
	}

	products, err := s.deps.Catalog.ResolveProducts(ctx, cart.ProductIDs())
	if err != nil {
		return nil, domain.Attribution{}, fmt.Errorf("failed to resolve products: %w", err)
	}

	for i := range cart.Lines {
		line := &cart.Lines[i]
		p := products[line.ProductID]
		if !p.Exists {
			return nil, domain.Attribution{}, domain.NewValidationError(
				fmt.Sprintf("items[%d].product_id", i), "product %d does not exist", line.ProductID)
		}
		if !p.Active {
			return nil, domain.Attribution{}, domain.NewValidationError(
				fmt.Sprintf("items[%d].product_id", i), "product %d is inactive", line.ProductID)
		}
		if line.UnitPrice == nil {
			price := p.SalePrice
			line.UnitPrice = &price
		}

		if line.VariantID != nil {
			v, err := s.deps.Catalog.ResolveVariant(ctx, *line.VariantID)
			if err != nil {
				return nil, domain.Attribution{}, fmt.Errorf("failed to resolve variant: %w", err)
			}
			if v == nil || v.ProductID != line.ProductID {
				return nil, domain.Attribution{}, domain.NewValidationError(
					fmt.Sprintf("items[%d].variant_id", i),
					"variant %d does not belong to product %d", *line.VariantID, line.ProductID)
			}
			if !v.Active {
				return nil, domain.Attribution{}, domain.NewValidationError(
					fmt.Sprintf("items[%d].variant_id", i), "variant %d is inactive", *line.VariantID)
			}
		}
	}

	if err := cart.CheckAmounts(); err != nil {
		return nil, domain.Attribution{}, err
	}

	attr := domain.AttributeCustomer(actor, domain.CustomerRequest{ID: cart.CustomerID, Name: cart.CustomerName})
	if attr.NeedsLookup {
		customer, err := s.deps.Catalog.ResolveWholesaleCustomer(ctx, *attr.CustomerID)
		if err != nil {
			return nil, domain.Attribution{}, fmt.Errorf("failed to resolve customer: %w", err)
		}
		if customer == nil {
			return nil, domain.Attribution{}, domain.NewValidationError("customer_id",
				"customer %d is not an active optica account", *attr.CustomerID)
		}
		if attr.CustomerName == "" {
			attr.CustomerName = customer.Name
		}
		if attr.CustomerName == "" {
			attr.CustomerName = domain.OpticaFallbackName
		}
		attr.NeedsLookup = false
	}

	return cart, attr, nil
}

// lockStock takes every row lock the sale needs, in ascending product id
// order, and returns the stock level read under each lock. No row is
// written before all locks are held.
func (s *SaleService) lockStock(ctx context.Context, tx pgx.Tx, cart *domain.Cart) (map[int64]int, error) {
	ids := cart.ProductIDs()
	available := make(map[int64]int, len(ids))

	for _, productID := range ids {
		if err := s.deps.Ledger.EnsureTracked(ctx, tx, productID); err != nil {
			return nil, err
		}
		stock, err := s.deps.Ledger.LockAndRead(ctx, tx, productID)
		if err != nil {
			return nil, err
		}
		available[productID] = stock
	}
	return available, nil
}

// persist writes the header, the items with their stock movements and the
// outbox event.
func (s *SaleService) persist(ctx context.Context, tx pgx.Tx, actor domain.Actor, sale *domain.Sale) error {
	if err := s.deps.Sales.InsertSale(ctx, tx, sale); err != nil {
		return err
	}

	event := saleCommittedEvent{
		SaleID:       sale.ID,
		UserID:       sale.UserID,
		CustomerID:   sale.CustomerID,
		CustomerName: sale.CustomerName,
		Total:        sale.Total.StringFixed(2),
		Items:        make([]eventLineItem, 0, len(sale.Items)),
		CommittedAt:  sale.CreatedAt,
	}

	for i := range sale.Items {
		item := &sale.Items[i]
		item.SaleID = sale.ID
		if err := s.deps.Sales.InsertItem(ctx, tx, item); err != nil {
			return err
		}
		src := domain.SaleMovement(sale.ID, item.VariantID, actor.ID)
		if _, err := s.deps.Ledger.Adjust(ctx, tx, item.ProductID, -item.Quantity, src); err != nil {
			return err
		}
		event.Items = append(event.Items, eventLineItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}

	if s.deps.Outbox == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode sale event: %w", err)
	}
	return s.deps.Outbox.Insert(ctx, tx, ports.OutboxEvent{
		ID:          uuid.NewString(),
		Aggregate:   "sale",
		AggregateID: sale.ID,
		EventType:   EventSaleCommitted,
		Payload:     payload,
	})
}

// handleTxError classifies a rolled back transaction for logs and metrics.
func (s *SaleService) handleTxError(ctx context.Context, err error) error {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		s.deps.Metrics.SaleOutcome("rejected")
		s.logger.InfoContext(ctx, "sale rejected: insufficient stock",
			slog.Int64("product_id", stockErr.ProductID),
			slog.Int("requested", stockErr.Requested),
			slog.Int("available", stockErr.Available))
		return err
	case domain.IsValidation(err), errors.Is(err, domain.ErrNotFound):
		s.deps.Metrics.SaleOutcome("rejected")
		return err
	case errors.Is(err, domain.ErrConflict):
		s.deps.Metrics.SaleOutcome("conflict")
		s.logger.WarnContext(ctx, "sale aborted by lock contention",
			slog.String("error", err.Error()))
		return err
	}

	s.deps.Metrics.SaleOutcome("failed")
	s.logger.ErrorContext(ctx, "sale transaction failed",
		slog.String("error", err.Error()))
	return fmt.Errorf("failed to create sale: %w", err)
}

// afterCommit runs best-effort side effects. Failures are logged only.
func (s *SaleService) afterCommit(ctx context.Context, sale *domain.Sale, productIDs []int64) {
	ctx = context.WithoutCancel(ctx)

	s.deps.Metrics.SaleCommitted(sale.Total)
	for _, it := range sale.Items {
		s.deps.Metrics.StockMoved(string(domain.MovementOut), string(domain.ReferenceSale), it.Quantity)
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.DeletePattern(ctx, inventoryCacheGlob); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate inventory cache",
				slog.String("error", err.Error()))
		}
	}

	if s.deps.Tasks != nil {
		if err := s.deps.Tasks.EnqueueLowStockCheck(ctx, productIDs); err != nil {
			s.logger.WarnContext(ctx, "failed to enqueue low stock check",
				slog.Int64("sale_id", sale.ID),
				slog.String("error", err.Error()))
		}
	}
}

// GetSale returns a sale with its items. Sales never change once written,
// so they are cached.
func (s *SaleService) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}

	if s.deps.Cache == nil {
		return s.deps.Sales.FindByID(ctx, id)
	}

	fetch := func() (interface{}, error) {
		return s.deps.Sales.FindByID(ctx, id)
	}

	var sale domain.Sale
	if err := s.deps.Cache.GetOrSet(ctx, saleCacheKey(id), &sale, fetch, saleCacheTTL); err != nil {
		return nil, err
	}
	return &sale, nil
}
