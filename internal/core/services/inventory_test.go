// internal/core/services/inventory_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/core/services"
	"github.com/ammerola/optica-pos/test/helpers"
	"github.com/ammerola/optica-pos/test/mocks"
)

type inventoryFixture struct {
	tx      *mocks.MockTransactor
	ledger  *mocks.MockInventoryLedger
	catalog *mocks.MockCatalogRepository
	cache   *mocks.MockCacheRepository
	svc     *services.InventoryService
}

func newInventoryFixture(t *testing.T, withCache bool) *inventoryFixture {
	ctrl := gomock.NewController(t)
	f := &inventoryFixture{
		tx:      mocks.NewMockTransactor(ctrl),
		ledger:  mocks.NewMockInventoryLedger(ctrl),
		catalog: mocks.NewMockCatalogRepository(ctrl),
		cache:   mocks.NewMockCacheRepository(ctrl),
	}
	var cache ports.CacheRepository
	if withCache {
		cache = f.cache
	}
	f.svc = services.NewInventoryService(f.tx, f.ledger, f.catalog, cache, nil, time.Minute, helpers.TestLogger())
	return f
}

func TestInventoryService_AddStock(t *testing.T) {
	admin := domain.Actor{ID: 1, Name: "Admin", Role: domain.RoleAdmin}

	tests := []struct {
		name    string
		adj     domain.StockAdjustment
		setup   func(f *inventoryFixture)
		wantErr error
		check   func(t *testing.T, m *domain.InventoryMovement, err error)
	}{
		{
			name: "adds_to_existing_stock",
			adj:  domain.StockAdjustment{Quantity: 5, Note: "  compra proveedor  "},
			setup: func(f *inventoryFixture) {
				f.catalog.EXPECT().FindProduct(gomock.Any(), int64(3)).Return(helpers.CreateTestProduct(), nil)
				f.tx.EXPECT().Transaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, fn func(pgx.Tx) error) error { return fn(nil) })
				ensure := f.ledger.EXPECT().EnsureTracked(gomock.Any(), gomock.Any(), int64(3)).Return(nil)
				lock := f.ledger.EXPECT().LockAndRead(gomock.Any(), gomock.Any(), int64(3)).Return(2, nil).After(ensure)
				f.ledger.EXPECT().
					Adjust(gomock.Any(), gomock.Any(), int64(3), 5, domain.ManualMovement(1, "compra proveedor")).
					DoAndReturn(func(ctx context.Context, tx pgx.Tx, productID int64, delta int, src domain.MovementSource) (*domain.InventoryMovement, error) {
						m := domain.NewMovement(productID, delta, 2, src)
						return &m, nil
					}).
					After(lock)
				f.cache.EXPECT().DeletePattern(gomock.Any(), "inv:*").Return(nil)
			},
			check: func(t *testing.T, m *domain.InventoryMovement, err error) {
				require.NoError(t, err)
				assert.Equal(t, domain.MovementIn, m.Direction)
				assert.Equal(t, 5, m.Quantity)
				assert.Equal(t, 2, m.QuantityBefore)
				assert.Equal(t, 7, m.QuantityAfter)
				assert.Equal(t, domain.ReferenceManual, m.ReferenceType)
				assert.Equal(t, "compra proveedor", m.Note)
				assert.Equal(t, int64(1), m.ActorID)
			},
		},
		{
			name: "cache_failure_is_ignored",
			adj:  domain.StockAdjustment{Quantity: 1},
			setup: func(f *inventoryFixture) {
				f.catalog.EXPECT().FindProduct(gomock.Any(), int64(3)).Return(helpers.CreateTestProduct(), nil)
				f.tx.EXPECT().Transaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, fn func(pgx.Tx) error) error { return fn(nil) })
				f.ledger.EXPECT().EnsureTracked(gomock.Any(), gomock.Any(), int64(3)).Return(nil)
				f.ledger.EXPECT().LockAndRead(gomock.Any(), gomock.Any(), int64(3)).Return(0, nil)
				f.ledger.EXPECT().Adjust(gomock.Any(), gomock.Any(), int64(3), 1, gomock.Any()).
					Return(&domain.InventoryMovement{QuantityAfter: 1}, nil)
				f.cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
			check: func(t *testing.T, m *domain.InventoryMovement, err error) {
				require.NoError(t, err)
				assert.Equal(t, 1, m.QuantityAfter)
			},
		},
		{
			name:  "zero_quantity",
			adj:   domain.StockAdjustment{Quantity: 0},
			setup: func(f *inventoryFixture) {},
			check: func(t *testing.T, m *domain.InventoryMovement, err error) {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "quantity", ve.Field)
			},
		},
		{
			name:  "negative_quantity",
			adj:   domain.StockAdjustment{Quantity: -3},
			setup: func(f *inventoryFixture) {},
			check: func(t *testing.T, m *domain.InventoryMovement, err error) {
				assert.True(t, domain.IsValidation(err))
			},
		},
		{
			name: "unknown_product",
			adj:  domain.StockAdjustment{Quantity: 2},
			setup: func(f *inventoryFixture) {
				f.catalog.EXPECT().FindProduct(gomock.Any(), int64(3)).Return(nil, domain.ErrNotFound)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "lock_timeout",
			adj:  domain.StockAdjustment{Quantity: 2},
			setup: func(f *inventoryFixture) {
				f.catalog.EXPECT().FindProduct(gomock.Any(), int64(3)).Return(helpers.CreateTestProduct(), nil)
				f.tx.EXPECT().Transaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, fn func(pgx.Tx) error) error { return fn(nil) })
				f.ledger.EXPECT().EnsureTracked(gomock.Any(), gomock.Any(), int64(3)).Return(nil)
				f.ledger.EXPECT().LockAndRead(gomock.Any(), gomock.Any(), int64(3)).Return(0, domain.ErrConflict)
			},
			wantErr: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInventoryFixture(t, true)
			tt.setup(f)

			m, err := f.svc.AddStock(context.Background(), admin, 3, tt.adj)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			tt.check(t, m, err)
		})
	}
}

func TestInventoryService_List(t *testing.T) {
	views := []domain.InventoryView{
		{ProductID: 1, SKU: "ARM-1", Stock: 1, MinStock: 2, Critical: true, HasImage: true},
		{ProductID: 2, SKU: "LEN-1", Stock: 9, MinStock: 2},
	}

	t.Run("without_cache", func(t *testing.T) {
		f := newInventoryFixture(t, false)
		f.ledger.EXPECT().ListStock(gomock.Any()).Return(append([]domain.InventoryView(nil), views...), nil)

		got, err := f.svc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "/api/v1/products/1/image", got[0].ImageURL)
		assert.Empty(t, got[1].ImageURL)
	})

	t.Run("through_cache", func(t *testing.T) {
		f := newInventoryFixture(t, true)
		f.ledger.EXPECT().ListStock(gomock.Any()).Return(append([]domain.InventoryView(nil), views...), nil)
		f.cache.EXPECT().
			GetOrSet(gomock.Any(), "inv:list", gomock.Any(), gomock.Any(), time.Minute).
			DoAndReturn(func(ctx context.Context, key string, dest interface{}, fetch func() (interface{}, error), ttl time.Duration) error {
				v, err := fetch()
				if err != nil {
					return err
				}
				*dest.(*[]domain.InventoryView) = v.([]domain.InventoryView)
				return nil
			})

		got, err := f.svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.True(t, got[0].Critical)
	})

	t.Run("ledger_error", func(t *testing.T) {
		f := newInventoryFixture(t, false)
		f.ledger.EXPECT().ListStock(gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := f.svc.List(context.Background())
		assert.ErrorContains(t, err, "failed to list inventory")
	})
}
