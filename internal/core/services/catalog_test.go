// internal/core/services/catalog_test.go
package services_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

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

type catalogFixture struct {
	tx     *mocks.MockTransactor
	repo   *mocks.MockCatalogRepository
	ledger *mocks.MockInventoryLedger
	images *mocks.MockImageStore
	cache  *mocks.MockCacheRepository
	svc    *services.CatalogService
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	ctrl := gomock.NewController(t)
	f := &catalogFixture{
		tx:     mocks.NewMockTransactor(ctrl),
		repo:   mocks.NewMockCatalogRepository(ctrl),
		ledger: mocks.NewMockInventoryLedger(ctrl),
		images: mocks.NewMockImageStore(ctrl),
		cache:  mocks.NewMockCacheRepository(ctrl),
	}
	f.svc = services.NewCatalogService(f.tx, f.repo, f.ledger, f.images, f.cache, helpers.TestLogger())
	return f
}

func (f *catalogFixture) runTx() {
	f.tx.EXPECT().Transaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(pgx.Tx) error) error { return fn(nil) })
}

func pngUpload() *ports.ImageUpload {
	body := []byte("\x89PNG fake")
	return &ports.ImageUpload{
		Filename:    "../../armazon.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}
}

func TestCatalogService_CreateProduct(t *testing.T) {
	t.Run("with_image", func(t *testing.T) {
		f := newCatalogFixture(t)
		p := helpers.CreateTestProduct(func(p *domain.Product) { p.SKU = "  ARM-9  "; p.Active = false })

		var uploadedKey string
		f.images.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), "image/png").
			DoAndReturn(func(ctx context.Context, key string, body io.Reader, contentType string) error {
				uploadedKey = key
				return nil
			})
		f.runTx()
		f.repo.EXPECT().CreateProduct(gomock.Any(), gomock.Any(), p).
			DoAndReturn(func(ctx context.Context, tx pgx.Tx, p *domain.Product) error {
				p.ID = 14
				return nil
			})
		f.ledger.EXPECT().EnsureTracked(gomock.Any(), gomock.Any(), int64(14)).Return(nil)
		f.cache.EXPECT().DeletePattern(gomock.Any(), "inv:*").Return(nil)

		require.NoError(t, f.svc.CreateProduct(context.Background(), p, pngUpload()))

		assert.Equal(t, "ARM-9", p.SKU)
		assert.True(t, p.Active)
		require.NotNil(t, p.Image)
		assert.Equal(t, uploadedKey, p.Image.Key)
		assert.True(t, strings.HasPrefix(p.Image.Key, "products/"))
		assert.True(t, strings.HasSuffix(p.Image.Key, ".png"))
		assert.Equal(t, "armazon.png", p.Image.Filename)
	})

	t.Run("failed_insert_discards_image", func(t *testing.T) {
		f := newCatalogFixture(t)
		p := helpers.CreateTestProduct()

		var uploadedKey string
		f.images.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, key string, body io.Reader, contentType string) error {
				uploadedKey = key
				return nil
			})
		f.runTx()
		f.repo.EXPECT().CreateProduct(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrConflict)
		f.images.EXPECT().Delete(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, key string) error {
				assert.Equal(t, uploadedKey, key)
				return nil
			})

		err := f.svc.CreateProduct(context.Background(), p, pngUpload())
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Nil(t, p.Image)
	})

	t.Run("rejects_unsupported_image", func(t *testing.T) {
		f := newCatalogFixture(t)
		img := pngUpload()
		img.ContentType = "application/pdf"

		err := f.svc.CreateProduct(context.Background(), helpers.CreateTestProduct(), img)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "image", ve.Field)
	})

	t.Run("rejects_oversized_image", func(t *testing.T) {
		f := newCatalogFixture(t)
		img := pngUpload()
		img.Size = services.MaxImageSize + 1

		err := f.svc.CreateProduct(context.Background(), helpers.CreateTestProduct(), img)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("invalid_product", func(t *testing.T) {
		f := newCatalogFixture(t)
		p := helpers.CreateTestProduct(func(p *domain.Product) { p.SalePrice = helpers.Dec("-1") })

		err := f.svc.CreateProduct(context.Background(), p, nil)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "sale_price", ve.Field)
	})
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	t.Run("sku_is_immutable", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.repo.EXPECT().FindProduct(gomock.Any(), int64(3)).
			Return(helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 3 }), nil)

		p := helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 3; p.SKU = "OTRO" })
		err := f.svc.UpdateProduct(context.Background(), p, nil)

		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "sku", ve.Field)
	})

	t.Run("replaces_image", func(t *testing.T) {
		f := newCatalogFixture(t)
		current := helpers.CreateTestProduct(func(p *domain.Product) {
			p.ID = 3
			p.Image = &domain.ProductImage{Key: "products/old.jpg", MimeType: "image/jpeg"}
			p.HasImage = true
		})
		f.repo.EXPECT().FindProduct(gomock.Any(), int64(3)).Return(current, nil)
		f.repo.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(nil)
		f.images.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), "image/png").Return(nil)
		f.repo.EXPECT().SetProductImage(gomock.Any(), int64(3), gomock.Any()).Return(nil)
		f.images.EXPECT().Delete(gomock.Any(), "products/old.jpg").Return(errors.New("gone already"))
		f.cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil)

		p := helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 3; p.Name = "Nuevo nombre" })
		require.NoError(t, f.svc.UpdateProduct(context.Background(), p, pngUpload()))

		require.NotNil(t, p.Image)
		assert.NotEqual(t, "products/old.jpg", p.Image.Key)
		assert.True(t, p.HasImage)
	})

	t.Run("keeps_image_without_upload", func(t *testing.T) {
		f := newCatalogFixture(t)
		current := helpers.CreateTestProduct(func(p *domain.Product) {
			p.ID = 3
			p.Image = &domain.ProductImage{Key: "products/old.jpg"}
			p.HasImage = true
		})
		f.repo.EXPECT().FindProduct(gomock.Any(), int64(3)).Return(current, nil)
		f.repo.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(nil)
		f.cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil)

		p := helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 3 })
		require.NoError(t, f.svc.UpdateProduct(context.Background(), p, nil))
		assert.Equal(t, "products/old.jpg", p.Image.Key)
	})
}

func TestCatalogService_ListProducts(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.ProductFilter
		total     int64
		wantPage  int
		wantSize  int
		wantPages int
	}{
		{name: "defaults", filter: domain.ProductFilter{}, total: 120, wantPage: 1, wantSize: 50, wantPages: 3},
		{name: "capped_page_size", filter: domain.ProductFilter{Page: 2, PageSize: 1000}, total: 401, wantPage: 2, wantSize: 200, wantPages: 3},
		{name: "empty", filter: domain.ProductFilter{Page: 1, PageSize: 10}, total: 0, wantPage: 1, wantSize: 10, wantPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture(t)
			f.repo.EXPECT().ListProducts(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, got domain.ProductFilter) ([]*domain.Product, int64, error) {
					assert.Equal(t, tt.wantPage, got.Page)
					assert.Equal(t, tt.wantSize, got.PageSize)
					return nil, tt.total, nil
				})

			page, err := f.svc.ListProducts(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.total, page.TotalCount)
		})
	}
}

func TestCatalogService_OpenProductImage(t *testing.T) {
	t.Run("no_image", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.repo.EXPECT().FindProduct(gomock.Any(), int64(1)).Return(helpers.CreateTestProduct(), nil)

		img, body, err := f.svc.OpenProductImage(context.Background(), 1)
		require.NoError(t, err)
		assert.Nil(t, img)
		assert.Nil(t, body)
	})

	t.Run("defaults_metadata", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.repo.EXPECT().FindProduct(gomock.Any(), int64(1)).
			Return(helpers.CreateTestProduct(func(p *domain.Product) { p.Image = &domain.ProductImage{Key: "products/a"} }), nil)
		f.images.EXPECT().Download(gomock.Any(), "products/a").
			Return(io.NopCloser(strings.NewReader("jpeg-bytes")), nil)

		img, body, err := f.svc.OpenProductImage(context.Background(), 1)
		require.NoError(t, err)
		defer body.Close()

		assert.Equal(t, "image/jpeg", img.MimeType)
		assert.Equal(t, "product_1.jpg", img.Filename)
		data, _ := io.ReadAll(body)
		assert.Equal(t, "jpeg-bytes", string(data))
	})

	t.Run("missing_object", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.repo.EXPECT().FindProduct(gomock.Any(), int64(1)).
			Return(helpers.CreateTestProduct(func(p *domain.Product) { p.Image = &domain.ProductImage{Key: "products/a"} }), nil)
		f.images.EXPECT().Download(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNotFound)

		img, body, err := f.svc.OpenProductImage(context.Background(), 1)
		require.NoError(t, err)
		assert.Nil(t, img)
		assert.Nil(t, body)
	})

	t.Run("unknown_product", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.repo.EXPECT().FindProduct(gomock.Any(), int64(1)).Return(nil, domain.ErrNotFound)

		_, _, err := f.svc.OpenProductImage(context.Background(), 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogService_Categories(t *testing.T) {
	f := newCatalogFixture(t)

	err := f.svc.CreateCategory(context.Background(), &domain.Category{Code: " ", Name: "Armazones"})
	assert.True(t, domain.IsValidation(err))

	f.repo.EXPECT().CreateCategory(gomock.Any(), &domain.Category{Code: "ARM", Name: "Armazones"}).Return(nil)
	require.NoError(t, f.svc.CreateCategory(context.Background(), &domain.Category{Code: " ARM ", Name: "Armazones "}))

	f.repo.EXPECT().SoftDeleteCategory(gomock.Any(), int64(2)).Return(nil)
	f.cache.EXPECT().DeletePattern(gomock.Any(), "inv:*").Return(nil)
	require.NoError(t, f.svc.DeleteCategory(context.Background(), 2))

	f.repo.EXPECT().SoftDeleteCategory(gomock.Any(), int64(3)).Return(domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteCategory(context.Background(), 3), domain.ErrNotFound)
}
