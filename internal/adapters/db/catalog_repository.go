// internal/adapters/db/catalog_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
)

// rowQuerier is satisfied by both *Database and pgx.Tx
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// catalogRepository implements ports.CatalogRepository
type catalogRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *Database, logger *slog.Logger) ports.CatalogRepository {
	return &catalogRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "catalog")),
	}
}

var productColumns = []string{
	"p.id", "p.sku", "p.name", "COALESCE(p.description, '')", "p.category_id",
	"COALESCE(c.code, '')", "COALESCE(c.name, '')",
	"COALESCE(p.type, '')", "COALESCE(p.brand, '')", "COALESCE(p.model, '')",
	"COALESCE(p.material, '')", "COALESCE(p.size, '')", "COALESCE(p.supplier, '')",
	"p.buy_price", "p.sale_price", "p.min_stock", "p.max_stock", "p.active",
	"p.image_key", "COALESCE(p.image_mime, '')", "COALESCE(p.image_filename, '')",
	"p.created_at", "p.updated_at",
}

func productSelect() squirrel.SelectBuilder {
	return squirrel.Select(productColumns...).
		From("products p").
		LeftJoin("categories c ON c.id = p.category_id").
		Where("p.deleted_at IS NULL").
		PlaceholderFormat(squirrel.Dollar)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var categoryID sql.NullInt64
	var maxStock sql.NullInt32
	var imageKey sql.NullString
	var imageMime, imageFilename string

	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &categoryID,
		&p.CategoryCode, &p.CategoryName,
		&p.Type, &p.Brand, &p.Model,
		&p.Material, &p.Size, &p.Supplier,
		&p.BuyPrice, &p.SalePrice, &p.MinStock, &maxStock, &p.Active,
		&imageKey, &imageMime, &imageFilename,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	if maxStock.Valid {
		m := int(maxStock.Int32)
		p.MaxStock = &m
	}
	if imageKey.Valid && imageKey.String != "" {
		p.Image = &domain.ProductImage{Key: imageKey.String, MimeType: imageMime, Filename: imageFilename}
		p.HasImage = true
	}
	return &p, nil
}

// resolveCategory maps a category code to its id. An empty code means no
// category.
func (r *catalogRepository) resolveCategory(ctx context.Context, q rowQuerier, code string) (*int64, error) {
	if code == "" {
		return nil, nil
	}
	var id int64
	err := q.QueryRow(ctx, `SELECT id FROM categories WHERE code = $1 AND deleted_at IS NULL`, code).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewValidationError("category_code", "Categoría inválida: %s", code)
		}
		return nil, fmt.Errorf("failed to resolve category %q: %w", code, err)
	}
	return &id, nil
}

// CreateProduct inserts p inside tx and sets its id and timestamps
func (r *catalogRepository) CreateProduct(ctx context.Context, tx pgx.Tx, p *domain.Product) error {
	categoryID, err := r.resolveCategory(ctx, tx, p.CategoryCode)
	if err != nil {
		return err
	}
	p.CategoryID = categoryID

	var imageKey, imageMime, imageFilename *string
	if p.Image != nil {
		imageKey, imageMime, imageFilename = &p.Image.Key, &p.Image.MimeType, &p.Image.Filename
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO products (
			sku, name, description, category_id, type, brand, model, material, size, supplier,
			buy_price, sale_price, min_stock, max_stock, active,
			image_key, image_mime, image_filename
		) VALUES (
			$1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''),
			$11, $12, $13, $14, $15, $16, $17, $18
		)
		RETURNING id, created_at, updated_at`,
		p.SKU, p.Name, p.Description, p.CategoryID, p.Type, p.Brand, p.Model, p.Material, p.Size, p.Supplier,
		p.BuyPrice, p.SalePrice, p.MinStock, p.MaxStock, p.Active,
		imageKey, imageMime, imageFilename,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "products_sku_key") {
			return fmt.Errorf("sku %q already exists: %w", p.SKU, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	p.HasImage = p.Image != nil

	r.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", p.ID),
		slog.String("sku", p.SKU))
	return nil
}

// UpdateProduct rewrites the editable fields of p. The image is left alone;
// use SetProductImage for it.
func (r *catalogRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	categoryID, err := r.resolveCategory(ctx, r.db, p.CategoryCode)
	if err != nil {
		return err
	}
	p.CategoryID = categoryID

	query, args, err := squirrel.Update("products").
		SetMap(map[string]interface{}{
			"sku":         p.SKU,
			"name":        p.Name,
			"description": nullString(p.Description),
			"category_id": p.CategoryID,
			"type":        nullString(p.Type),
			"brand":       nullString(p.Brand),
			"model":       nullString(p.Model),
			"material":    nullString(p.Material),
			"size":        nullString(p.Size),
			"supplier":    nullString(p.Supplier),
			"buy_price":   p.BuyPrice,
			"sale_price":  p.SalePrice,
			"min_stock":   p.MinStock,
			"max_stock":   p.MaxStock,
			"active":      p.Active,
			"updated_at":  squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": p.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err, "products_sku_key") {
			return fmt.Errorf("sku %q already exists: %w", p.SKU, domain.ErrConflict)
		}
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	return nil
}

// SoftDeleteProduct marks a product deleted
func (r *catalogRepository) SoftDeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET deleted_at = NOW(), active = FALSE, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindProduct returns a live product by id
func (r *catalogRepository) FindProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findProductWhere(ctx, squirrel.Eq{"p.id": id})
}

// FindProductBySKU returns a live product by sku
func (r *catalogRepository) FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.findProductWhere(ctx, squirrel.Eq{"p.sku": sku})
}

func (r *catalogRepository) findProductWhere(ctx context.Context, pred squirrel.Sqlizer) (*domain.Product, error) {
	query, args, err := productSelect().Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	p, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return p, nil
}

// ListProducts returns one page of products matching f and the total count
func (r *catalogRepository) ListProducts(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, int64, error) {
	filter := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if s := strings.TrimSpace(f.Search); s != "" {
			like := "%" + s + "%"
			qb = qb.Where(squirrel.Or{
				squirrel.ILike{"p.sku": like},
				squirrel.ILike{"p.name": like},
			})
		}
		if f.CategoryCode != "" {
			qb = qb.Where(squirrel.Eq{"c.code": f.CategoryCode})
		}
		if f.Active != nil {
			qb = qb.Where(squirrel.Eq{"p.active": *f.Active})
		}
		return qb
	}

	countSQL, countArgs, err := filter(squirrel.Select("COUNT(*)").
		From("products p").
		LeftJoin("categories c ON c.id = p.category_id").
		Where("p.deleted_at IS NULL").
		PlaceholderFormat(squirrel.Dollar)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	qb := filter(productSelect()).OrderBy("p.name ASC", "p.id ASC")
	if f.PageSize > 0 {
		qb = qb.Limit(uint64(f.PageSize))
		if f.Page > 1 {
			qb = qb.Offset(uint64((f.Page - 1) * f.PageSize))
		}
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}
	return products, total, nil
}

// SetProductImage records where the image of product id lives. A nil img
// clears it.
func (r *catalogRepository) SetProductImage(ctx context.Context, id int64, img *domain.ProductImage) error {
	var key, mime, filename *string
	if img != nil {
		key, mime, filename = &img.Key, &img.MimeType, &img.Filename
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET image_key = $2, image_mime = $3, image_filename = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, key, mime, filename)
	if err != nil {
		return fmt.Errorf("failed to set image for product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ResolveProducts reports existence, activity and catalog price for ids.
// Soft-deleted products are reported as missing.
func (r *catalogRepository) ResolveProducts(ctx context.Context, ids []int64) (map[int64]domain.ResolvedProduct, error) {
	out := make(map[int64]domain.ResolvedProduct, len(ids))
	for _, id := range ids {
		out[id] = domain.ResolvedProduct{ID: id}
	}
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, active, sale_price FROM products WHERE id = ANY($1) AND deleted_at IS NULL`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rp domain.ResolvedProduct
		var price decimal.Decimal
		if err := rows.Scan(&rp.ID, &rp.Active, &price); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		rp.Exists = true
		rp.SalePrice = price
		out[rp.ID] = rp
	}
	return out, rows.Err()
}

// ResolveVariant returns the live variant, or nil when there is none
func (r *catalogRepository) ResolveVariant(ctx context.Context, variantID int64) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	var sph, cyl, add, bc, dia decimal.NullDecimal
	err := r.db.QueryRow(ctx, `
		SELECT id, product_id, COALESCE(type, ''), sph, cyl, "add", bc, dia, COALESCE(color, ''), active
		FROM product_variants
		WHERE id = $1 AND deleted_at IS NULL`, variantID,
	).Scan(&v.ID, &v.ProductID, &v.Type, &sph, &cyl, &add, &bc, &dia, &v.Color, &v.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve variant %d: %w", variantID, err)
	}
	v.Sph, v.Cyl, v.Add, v.BC, v.Dia = nullDecimal(sph), nullDecimal(cyl), nullDecimal(add), nullDecimal(bc), nullDecimal(dia)
	return &v, nil
}

// ResolvePaymentMethod reports whether id is a live, active payment method
func (r *catalogRepository) ResolvePaymentMethod(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM payment_methods WHERE id = $1 AND active AND deleted_at IS NULL)`,
		id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to resolve payment method %d: %w", id, err)
	}
	return ok, nil
}

// ResolveWholesaleCustomer returns the active optica account userID, or nil
func (r *catalogRepository) ResolveWholesaleCustomer(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := findUser(ctx, r.db, `u.id = $1 AND u.role_id = $2 AND u.active`, userID, domain.RoleOptica.ID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// CreateCategory inserts c
func (r *catalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (code, name, description)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "categories_code_key") {
			return fmt.Errorf("category code %q already exists: %w", c.Code, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory rewrites code, name and description of c
func (r *catalogRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRow(ctx, `
		UPDATE categories
		SET code = $2, name = $3, description = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		c.ID, c.Code, c.Name, c.Description,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err, "categories_code_key") {
			return fmt.Errorf("category code %q already exists: %w", c.Code, domain.ErrConflict)
		}
		return fmt.Errorf("failed to update category %d: %w", c.ID, err)
	}
	return nil
}

// SoftDeleteCategory marks a category deleted. Products keep their
// reference.
func (r *catalogRepository) SoftDeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindCategoryByCode returns a live category
func (r *catalogRepository) FindCategoryByCode(ctx context.Context, code string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, code, name, COALESCE(description, ''), created_at, updated_at
		FROM categories WHERE code = $1 AND deleted_at IS NULL`, code,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category %q: %w", code, err)
	}
	return &c, nil
}

// ListCategories returns live categories ordered by name
func (r *catalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, code, name, COALESCE(description, ''), created_at, updated_at
		FROM categories WHERE deleted_at IS NULL ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
