// internal/handlers/products.go
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/core/services"
)

// multipart overhead allowed on top of the image itself
const formOverhead = 1 << 20

// CatalogHandler handles products and categories
type CatalogHandler struct {
	service ports.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service ports.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "catalog")),
	}
}

// ProductRequest is the body of product create and update requests. It is
// sent as JSON, or as multipart form fields together with an "image" file.
// On update only the fields present are changed.
type ProductRequest struct {
	SKU          *string          `json:"sku"`
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	CategoryCode *string          `json:"category_code"`
	Type         *string          `json:"type"`
	Brand        *string          `json:"brand"`
	Model        *string          `json:"model"`
	Material     *string          `json:"material"`
	Size         *string          `json:"size"`
	Supplier     *string          `json:"supplier"`
	BuyPrice     *decimal.Decimal `json:"buy_price"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	MinStock     *int             `json:"min_stock"`
	MaxStock     *int             `json:"max_stock"`
	Active       *bool            `json:"active"`
}

func (req *ProductRequest) apply(p *domain.Product) {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&p.SKU, req.SKU)
	setString(&p.Name, req.Name)
	setString(&p.Description, req.Description)
	setString(&p.CategoryCode, req.CategoryCode)
	setString(&p.Type, req.Type)
	setString(&p.Brand, req.Brand)
	setString(&p.Model, req.Model)
	setString(&p.Material, req.Material)
	setString(&p.Size, req.Size)
	setString(&p.Supplier, req.Supplier)

	if req.BuyPrice != nil {
		p.BuyPrice = *req.BuyPrice
	}
	if req.SalePrice != nil {
		p.SalePrice = *req.SalePrice
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if req.MaxStock != nil {
		p.MaxStock = req.MaxStock
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		CategoryCode: strings.TrimSpace(q.Get("category")),
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			handleServiceError(r.Context(), w, h.logger, domain.NewValidationError("active", "must be true or false"))
			return
		}
		filter.Active = &active
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	page, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	if page.Items == nil {
		page.Items = []*domain.Product{}
	}
	respondJSON(w, http.StatusOK, page)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// CreateProduct handles POST /api/v1/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, img, cleanup, err := readProductRequest(w, r)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}
	defer cleanup()

	p := &domain.Product{}
	req.apply(p)
	if err := h.service.CreateProduct(ctx, p, img); err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", p.ID),
		slog.String("sku", p.SKU))
	respondJSON(w, http.StatusCreated, p)
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}

	req, img, cleanup, err := readProductRequest(w, r)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}
	defer cleanup()

	p, err := h.service.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}
	req.apply(p)
	p.ID = id

	if err := h.service.UpdateProduct(ctx, p, img); err != nil {
		handleServiceError(ctx, w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProductImage handles GET /api/v1/products/{id}/image. A product without
// an image answers 204.
func (h *CatalogHandler) ProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	img, body, err := h.service.OpenProductImage(r.Context(), id)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": img.Filename}))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream product image",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()))
	}
}

// readProductRequest decodes a JSON or multipart product body. cleanup
// releases the uploaded file and must be called once the request is done.
func readProductRequest(w http.ResponseWriter, r *http.Request) (*ProductRequest, *ports.ImageUpload, func(), error) {
	noop := func() {}
	var req ProductRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := decodeJSON(w, r, &req); err != nil {
			return nil, nil, noop, err
		}
		return &req, nil, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageSize+formOverhead)
	if err := r.ParseMultipartForm(services.MaxImageSize + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, noop, domain.NewValidationError("image", "image must be at most 5 MB")
		}
		return nil, nil, noop, domain.NewValidationError("", "invalid multipart body: %v", err)
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	if err := formToProductRequest(r, &req); err != nil {
		cleanup()
		return nil, nil, noop, err
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return &req, nil, cleanup, nil
	}
	if err != nil {
		cleanup()
		return nil, nil, noop, domain.NewValidationError("image", "invalid image upload")
	}

	img := &ports.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return &req, img, func() {
		file.Close()
		cleanup()
	}, nil
}

func formToProductRequest(r *http.Request, req *ProductRequest) error {
	values := r.MultipartForm.Value
	str := func(name string) *string {
		if v, ok := values[name]; ok && len(v) > 0 {
			s := v[0]
			return &s
		}
		return nil
	}

	req.SKU = str("sku")
	req.Name = str("name")
	req.Description = str("description")
	req.CategoryCode = str("category_code")
	req.Type = str("type")
	req.Brand = str("brand")
	req.Model = str("model")
	req.Material = str("material")
	req.Size = str("size")
	req.Supplier = str("supplier")

	for _, f := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"buy_price", &req.BuyPrice}, {"sale_price", &req.SalePrice}} {
		if s := str(f.name); s != nil && *s != "" {
			d, err := decimal.NewFromString(strings.TrimSpace(*s))
			if err != nil {
				return domain.NewValidationError(f.name, "invalid amount %q", *s)
			}
			*f.dst = &d
		}
	}

	for _, f := range []struct {
		name string
		dst  **int
	}{{"min_stock", &req.MinStock}, {"max_stock", &req.MaxStock}} {
		if s := str(f.name); s != nil && *s != "" {
			n, err := strconv.Atoi(strings.TrimSpace(*s))
			if err != nil {
				return domain.NewValidationError(f.name, "must be a whole number")
			}
			*f.dst = &n
		}
	}

	if s := str("active"); s != nil && *s != "" {
		active, err := strconv.ParseBool(*s)
		if err != nil {
			return domain.NewValidationError("active", "must be true or false")
		}
		req.Active = &active
	}
	return nil
}
