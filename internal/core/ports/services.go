// internal/core/ports/services.go
package ports

import (
	"context"
	"io"
	"time"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

// SaleService records and reads sales.
type SaleService interface {
	CreateSale(ctx context.Context, actor domain.Actor, req *domain.SaleRequest, idempotencyKey string) (*domain.SaleReceipt, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
}

// InventoryService exposes stock operations outside of sales.
type InventoryService interface {
	AddStock(ctx context.Context, actor domain.Actor, productID int64, adj domain.StockAdjustment) (*domain.InventoryMovement, error)
	List(ctx context.Context) ([]domain.InventoryView, error)
}

// ImageUpload is an image received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CatalogService manages products and categories.
type CatalogService interface {
	CreateProduct(ctx context.Context, p *domain.Product, img *ImageUpload) error
	UpdateProduct(ctx context.Context, p *domain.Product, img *ImageUpload) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, f domain.ProductFilter) (*domain.ProductPage, error)
	OpenProductImage(ctx context.Context, id int64) (*domain.ProductImage, io.ReadCloser, error)

	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      *domain.User
}

// AuthService issues and checks bearer tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.Actor, error)
}
