package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/test/helpers"
)

func productForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="frente.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCatalogHandler_ListProducts(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().ListProducts(gomock.Any(), domain.ProductFilter{
			Search:       "ray",
			CategoryCode: "ARM",
			Active:       helpers.Ptr(true),
			Page:         2,
			PageSize:     10,
		}).Return(&domain.ProductPage{Page: 2, PageSize: 10, TotalCount: 11, TotalPages: 2}, nil)

		w := s.do(t, http.MethodGet,
			"/api/v1/products?search=ray&category=ARM&active=true&page=2&page_size=10",
			opticaToken, nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"items":[],"page":2,"page_size":10,"total_count":11,"total_pages":2}`,
			w.Body.String())
	})

	t.Run("rejects bad active flag", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodGet, "/api/v1/products?active=maybe", adminToken, nil, nil)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "active", decodeBody(t, w)["field"])
	})
}

func TestCatalogHandler_CreateProduct(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().
			CreateProduct(gomock.Any(), gomock.Any(), (*ports.ImageUpload)(nil)).
			DoAndReturn(func(_ context.Context, p *domain.Product, _ *ports.ImageUpload) error {
				assert.Equal(t, "ARM-001", p.SKU)
				assert.True(t, p.SalePrice.Equal(helpers.Dec("1200")))
				assert.True(t, p.Active)
				p.ID = 10
				return nil
			})

		w := s.doJSON(t, http.MethodPost, "/api/v1/products", adminToken, map[string]interface{}{
			"sku":        "ARM-001",
			"name":       "Armazón acetato",
			"sale_price": "1200",
			"buy_price":  "600",
			"min_stock":  2,
			"active":     true,
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, float64(10), decodeBody(t, w)["id"])
	})

	t.Run("multipart with image", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().
			CreateProduct(gomock.Any(), gomock.Any(), gomock.Not(gomock.Nil())).
			DoAndReturn(func(_ context.Context, p *domain.Product, img *ports.ImageUpload) error {
				assert.Equal(t, "LC-001", p.SKU)
				assert.Equal(t, 3, p.MinStock)
				require.NotNil(t, p.MaxStock)
				assert.Equal(t, 9, *p.MaxStock)
				assert.True(t, p.SalePrice.Equal(helpers.Dec("1500.50")))
				assert.False(t, p.Active)

				assert.Equal(t, "frente.png", img.Filename)
				assert.Equal(t, "image/png", img.ContentType)
				assert.Equal(t, int64(4), img.Size)
				data, err := io.ReadAll(img.Body)
				require.NoError(t, err)
				assert.Equal(t, "\x89PNG", string(data))

				p.ID = 11
				p.HasImage = true
				return nil
			})

		body, ct := productForm(t, map[string]string{
			"sku":        "LC-001",
			"name":       "Lente de contacto",
			"sale_price": "1500.50",
			"min_stock":  "3",
			"max_stock":  "9",
			"active":     "false",
		}, []byte("\x89PNG"))

		w := s.do(t, http.MethodPost, "/api/v1/products", adminToken, body, map[string]string{"Content-Type": ct})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, true, decodeBody(t, w)["has_image"])
	})

	t.Run("multipart with bad amount", func(t *testing.T) {
		s := newTestServer(t)

		body, ct := productForm(t, map[string]string{"sku": "LC-001", "sale_price": "mil"}, nil)
		w := s.do(t, http.MethodPost, "/api/v1/products", adminToken, body, map[string]string{"Content-Type": ct})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "sale_price", decodeBody(t, w)["field"])
	})

	t.Run("duplicate sku", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().CreateProduct(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrConflict)

		w := s.doJSON(t, http.MethodPost, "/api/v1/products", adminToken,
			map[string]interface{}{"sku": "ARM-001", "name": "Dup"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCatalogHandler_UpdateProduct(t *testing.T) {
	t.Run("applies only sent fields", func(t *testing.T) {
		s := newTestServer(t)
		current := helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 4 })
		s.catalog.EXPECT().GetProduct(gomock.Any(), int64(4)).Return(current, nil)
		s.catalog.EXPECT().
			UpdateProduct(gomock.Any(), gomock.Any(), (*ports.ImageUpload)(nil)).
			DoAndReturn(func(_ context.Context, p *domain.Product, _ *ports.ImageUpload) error {
				assert.Equal(t, int64(4), p.ID)
				assert.Equal(t, "ARM-ACE-001", p.SKU)
				assert.Equal(t, "Armazón renovado", p.Name)
				assert.True(t, p.SalePrice.Equal(helpers.Dec("1200")))
				return nil
			})

		w := s.doJSON(t, http.MethodPut, "/api/v1/products/4", adminToken,
			map[string]interface{}{"name": "Armazón renovado"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Armazón renovado", decodeBody(t, w)["name"])
	})

	t.Run("sku change is rejected", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().GetProduct(gomock.Any(), int64(4)).Return(helpers.CreateTestProduct(), nil)
		s.catalog.EXPECT().UpdateProduct(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.NewValidationError("sku", "sku cannot be changed"))

		w := s.doJSON(t, http.MethodPut, "/api/v1/products/4", adminToken,
			map[string]interface{}{"sku": "OTRO"})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "sku", decodeBody(t, w)["field"])
	})

	t.Run("missing product", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().GetProduct(gomock.Any(), int64(4)).Return(nil, domain.ErrNotFound)

		w := s.doJSON(t, http.MethodPut, "/api/v1/products/4", adminToken,
			map[string]interface{}{"name": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCatalogHandler_DeleteProduct(t *testing.T) {
	s := newTestServer(t)
	s.catalog.EXPECT().DeleteProduct(gomock.Any(), int64(4)).Return(nil)

	w := s.do(t, http.MethodDelete, "/api/v1/products/4", adminToken, nil, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestCatalogHandler_ProductImage(t *testing.T) {
	t.Run("streams the image", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().OpenProductImage(gomock.Any(), int64(4)).Return(
			&domain.ProductImage{Key: "products/4/frente.png", MimeType: "image/png", Filename: "frente.png"},
			io.NopCloser(strings.NewReader("png-bytes")),
			nil)

		w := s.do(t, http.MethodGet, "/api/v1/products/4/image", employeeToken, nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "inline")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "frente.png")
		assert.Equal(t, "png-bytes", w.Body.String())
	})

	t.Run("no image", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().OpenProductImage(gomock.Any(), int64(4)).Return(nil, nil, nil)

		w := s.do(t, http.MethodGet, "/api/v1/products/4/image", employeeToken, nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestCatalogHandler_Categories(t *testing.T) {
	t.Run("list empty", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().ListCategories(gomock.Any()).Return(nil, nil)

		w := s.do(t, http.MethodGet, "/api/v1/categories", employeeToken, nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("create", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().
			CreateCategory(gomock.Any(), &domain.Category{Code: "ARM", Name: "Armazones"}).
			DoAndReturn(func(_ context.Context, c *domain.Category) error {
				c.ID = 3
				return nil
			})

		w := s.doJSON(t, http.MethodPost, "/api/v1/categories", adminToken,
			map[string]string{"code": "ARM", "name": "Armazones"})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, float64(3), decodeBody(t, w)["id"])
	})

	t.Run("update uses the path id", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().
			UpdateCategory(gomock.Any(), &domain.Category{ID: 3, Code: "ARM", Name: "Armazones finos"}).
			Return(nil)

		w := s.doJSON(t, http.MethodPut, "/api/v1/categories/3", adminToken,
			map[string]string{"code": "ARM", "name": "Armazones finos"})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("duplicate code", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(domain.ErrConflict)

		w := s.doJSON(t, http.MethodPost, "/api/v1/categories", adminToken,
			map[string]string{"code": "ARM", "name": "Armazones"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		s := newTestServer(t)
		s.catalog.EXPECT().DeleteCategory(gomock.Any(), int64(3)).Return(nil)

		w := s.do(t, http.MethodDelete, "/api/v1/categories/3", adminToken, nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
