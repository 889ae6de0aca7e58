// internal/core/ports/catalog.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

// CatalogResolver is the read side the sale engine needs. Missing rows are
// reported through the returned values, not as errors.
type CatalogResolver interface {
	ResolveProducts(ctx context.Context, ids []int64) (map[int64]domain.ResolvedProduct, error)
	ResolveVariant(ctx context.Context, variantID int64) (*domain.ProductVariant, error)
	ResolvePaymentMethod(ctx context.Context, id int64) (bool, error)
	ResolveWholesaleCustomer(ctx context.Context, userID int64) (*domain.User, error)
}

// CatalogRepository manages products and categories.
type CatalogRepository interface {
	CatalogResolver

	CreateProduct(ctx context.Context, tx pgx.Tx, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	SoftDeleteProduct(ctx context.Context, id int64) error
	FindProduct(ctx context.Context, id int64) (*domain.Product, error)
	FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, int64, error)
	SetProductImage(ctx context.Context, id int64, img *domain.ProductImage) error

	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	SoftDeleteCategory(ctx context.Context, id int64) error
	FindCategoryByCode(ctx context.Context, code string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}
