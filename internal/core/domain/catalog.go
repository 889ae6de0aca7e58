// internal/core/domain/catalog.go
package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxSKULen          = 64
	maxProductNameLen  = 220
	maxCategoryCodeLen = 40
	maxCategoryNameLen = 80
)

// Category groups products.
type Category struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// Validate normalises and checks a category.
func (c *Category) Validate() error {
	c.Code = strings.TrimSpace(c.Code)
	c.Name = strings.TrimSpace(c.Name)
	if c.Code == "" {
		return NewValidationError("code", "code is required")
	}
	if utf8.RuneCountInString(c.Code) > maxCategoryCodeLen {
		return NewValidationError("code", "must be at most %d characters", maxCategoryCodeLen)
	}
	if c.Name == "" {
		return NewValidationError("name", "name is required")
	}
	if utf8.RuneCountInString(c.Name) > maxCategoryNameLen {
		return NewValidationError("name", "must be at most %d characters", maxCategoryNameLen)
	}
	return nil
}

// Product is a sellable catalog entry.
type Product struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	CategoryCode string          `json:"category_code,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	Type         string          `json:"type,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Model        string          `json:"model,omitempty"`
	Material     string          `json:"material,omitempty"`
	Size         string          `json:"size,omitempty"`
	Supplier     string          `json:"supplier,omitempty"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	MinStock     int             `json:"min_stock"`
	MaxStock     *int            `json:"max_stock,omitempty"`
	Active       bool            `json:"active"`
	Image        *ProductImage   `json:"-"`
	HasImage     bool            `json:"has_image"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    *time.Time      `json:"-"`
}

// ProductImage locates a stored product image.
type ProductImage struct {
	Key      string `json:"key"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename"`
}

// Validate normalises and checks a product before it is stored.
func (p *Product) Validate() error {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	p.CategoryCode = strings.TrimSpace(p.CategoryCode)

	if p.SKU == "" {
		return NewValidationError("sku", "sku is required")
	}
	if utf8.RuneCountInString(p.SKU) > maxSKULen {
		return NewValidationError("sku", "must be at most %d characters", maxSKULen)
	}
	if p.Name == "" {
		return NewValidationError("name", "name is required")
	}
	if utf8.RuneCountInString(p.Name) > maxProductNameLen {
		return NewValidationError("name", "must be at most %d characters", maxProductNameLen)
	}
	if utf8.RuneCountInString(p.CategoryCode) > maxCategoryCodeLen {
		return NewValidationError("category_code", "must be at most %d characters", maxCategoryCodeLen)
	}
	if p.BuyPrice.IsNegative() {
		return NewValidationError("buy_price", "cannot be negative")
	}
	if p.SalePrice.IsNegative() {
		return NewValidationError("sale_price", "cannot be negative")
	}
	if p.MinStock < 0 {
		return NewValidationError("min_stock", "cannot be negative")
	}
	if p.MaxStock != nil && *p.MaxStock < p.MinStock {
		return NewValidationError("max_stock", "must be greater than or equal to min_stock")
	}
	return nil
}

// ProductVariant carries optical attributes of a product.
type ProductVariant struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"product_id"`
	Type      string           `json:"type,omitempty"`
	Sph       *decimal.Decimal `json:"sph,omitempty"`
	Cyl       *decimal.Decimal `json:"cyl,omitempty"`
	Add       *decimal.Decimal `json:"add,omitempty"`
	BC        *decimal.Decimal `json:"bc,omitempty"`
	Dia       *decimal.Decimal `json:"dia,omitempty"`
	Color     string           `json:"color,omitempty"`
	Active    bool             `json:"active"`
}

// ResolvedProduct is what the sale engine needs to know about a product.
type ResolvedProduct struct {
	ID        int64
	Exists    bool
	Active    bool
	SalePrice decimal.Decimal
}

// PaymentMethod is a way a customer can pay.
type PaymentMethod struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Search       string
	CategoryCode string
	Active       *bool
	Page         int
	PageSize     int
}

// ProductPage is a page of products.
type ProductPage struct {
	Items      []*Product `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalCount int64      `json:"total_count"`
	TotalPages int        `json:"total_pages"`
}
