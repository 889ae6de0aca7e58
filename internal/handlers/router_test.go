package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/handlers"
	"github.com/ammerola/optica-pos/internal/pkg/config"
	"github.com/ammerola/optica-pos/test/helpers"
	"github.com/ammerola/optica-pos/test/mocks"
)

var (
	adminActor    = domain.Actor{ID: 1, Name: "Admin", Role: domain.RoleAdmin}
	employeeActor = domain.Actor{ID: 2, Name: "Empleado", Role: domain.RoleEmployee}
	opticaActor   = domain.Actor{ID: 3, Name: "Óptica Centro", Role: domain.RoleOptica}
)

const (
	adminToken    = "admin-token"
	employeeToken = "employee-token"
	opticaToken   = "optica-token"
)

type testServer struct {
	handler   http.Handler
	sales     *mocks.MockSaleService
	inventory *mocks.MockInventoryService
	catalog   *mocks.MockCatalogService
	auth      *mocks.MockAuthService
	tasks     *mocks.MockTaskPublisher
	uploadDir string
}

func newTestServer(t *testing.T, tweak ...func(*config.Config)) *testServer {
	t.Helper()

	ctrl := gomock.NewController(t)
	s := &testServer{
		sales:     mocks.NewMockSaleService(ctrl),
		inventory: mocks.NewMockInventoryService(ctrl),
		catalog:   mocks.NewMockCatalogService(ctrl),
		auth:      mocks.NewMockAuthService(ctrl),
		tasks:     mocks.NewMockTaskPublisher(ctrl),
		uploadDir: t.TempDir(),
	}

	s.auth.EXPECT().Authenticate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, token string) (*domain.Actor, error) {
			switch token {
			case adminToken:
				return &adminActor, nil
			case employeeToken:
				return &employeeActor, nil
			case opticaToken:
				return &opticaActor, nil
			}
			return nil, domain.ErrUnauthorized
		}).AnyTimes()

	cfg := helpers.LoadTestConfig()
	cfg.Import.UploadDir = s.uploadDir
	for _, fn := range tweak {
		fn(cfg)
	}

	logger := helpers.TestLogger()
	h := handlers.Handlers{
		Auth:      handlers.NewAuthHandler(s.auth, logger),
		Sales:     handlers.NewSaleHandler(s.sales, logger),
		Inventory: handlers.NewInventoryHandler(s.inventory, logger),
		Catalog:   handlers.NewCatalogHandler(s.catalog, logger),
		Import:    handlers.NewImportHandler(s.tasks, s.uploadDir, int64(cfg.Import.MaxSizeMB)<<20, logger),
	}
	s.handler = handlers.NewRouter(h, s.auth, nil, cfg, logger)
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil && headers["Content-Type"] == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return s.do(t, method, path, token, bytes.NewReader(b), nil)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/me"},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/products"},
		{http.MethodGet, "/api/v1/products/1"},
		{http.MethodGet, "/api/v1/products/1/image"},
		{http.MethodGet, "/api/v1/inventory"},
		{http.MethodGet, "/api/v1/categories"},
		{http.MethodPost, "/api/v1/sales"},
		{http.MethodGet, "/api/v1/sales/1"},
		{http.MethodPost, "/api/v1/products"},
		{http.MethodPost, "/api/v1/products/1/stock"},
		{http.MethodPost, "/api/v1/products/import"},
		{http.MethodDelete, "/api/v1/categories/1"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := s.do(t, rt.method, rt.path, "", nil, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "No autenticado", decodeBody(t, w)["error"])

			w = s.do(t, rt.method, rt.path, "expired-token", nil, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AdminOnlyRoutes(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/products"},
		{http.MethodPut, "/api/v1/products/1"},
		{http.MethodDelete, "/api/v1/products/1"},
		{http.MethodPost, "/api/v1/products/1/stock"},
		{http.MethodPost, "/api/v1/products/import"},
		{http.MethodPost, "/api/v1/categories"},
		{http.MethodPut, "/api/v1/categories/1"},
		{http.MethodDelete, "/api/v1/categories/1"},
	}

	for _, rt := range routes {
		for _, token := range []string{employeeToken, opticaToken} {
			t.Run(rt.method+" "+rt.path+" as "+token, func(t *testing.T) {
				w := s.do(t, rt.method, rt.path, token, nil, nil)
				require.Equal(t, http.StatusForbidden, w.Code)

				body := decodeBody(t, w)
				assert.Equal(t, "No autorizado", body["error"])
				assert.Equal(t, []interface{}{"admin"}, body["allowed"])
			})
		}
	}
}

func TestRouter_StaffRoutesAllowEveryRole(t *testing.T) {
	s := newTestServer(t)
	s.inventory.EXPECT().List(gomock.Any()).Return(nil, nil).Times(3)

	for _, token := range []string{adminToken, employeeToken, opticaToken} {
		w := s.do(t, http.MethodGet, "/api/v1/inventory", token, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code, token)
		assert.JSONEq(t, `[]`, w.Body.String())
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/nope", adminToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/me", adminToken, nil, map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}
