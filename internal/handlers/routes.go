// internal/handlers/routes.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/handlers/middleware"
	"github.com/ammerola/optica-pos/internal/pkg/config"
	"github.com/ammerola/optica-pos/internal/pkg/metrics"
)

const apiV1 = "/api/v1"

// Handlers groups everything the router serves
type Handlers struct {
	Auth      *AuthHandler
	Sales     *SaleHandler
	Inventory *InventoryHandler
	Catalog   *CatalogHandler
	Import    *ImportHandler
	Health    *HealthHandler
}

// NewRouter registers every route on a fresh ServeMux and wraps it with the
// middleware chain.
func NewRouter(h Handlers, auth ports.AuthService, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h, m, cfg)

	handler := middleware.Metrics(m)(mux)
	handler = middleware.Authenticate(auth, logger)(handler)
	handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logger(logger)(handler)
	handler = middleware.RequestID(handler)
	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}
	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}
	return handler
}

// RegisterRoutes maps the API onto mux. Authentication must already have run
// for the role checks to see an actor.
func RegisterRoutes(mux *http.ServeMux, h Handlers, m *metrics.Metrics, cfg *config.Config) {
	staff := middleware.RequireRoles(domain.RoleAdmin, domain.RoleEmployee, domain.RoleOptica)
	admin := middleware.RequireRoles(domain.RoleAdmin)

	handle := func(pattern string, guard func(http.Handler) http.Handler, fn http.HandlerFunc) {
		mux.Handle(pattern, guard(fn))
	}

	// Public
	loginLimit := middleware.RateLimit(cfg.Security.LoginRateLimit, time.Minute)
	mux.Handle("POST "+apiV1+"/auth/login", loginLimit(http.HandlerFunc(h.Auth.Login)))

	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", h.Health.Health)
		mux.HandleFunc("GET /ready", h.Health.Readiness)
	}
	if cfg.Server.EnableMetrics && m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	// Any authenticated user
	handle("POST "+apiV1+"/auth/logout", staff, h.Auth.Logout)
	handle("GET "+apiV1+"/me", staff, h.Auth.Me)

	// Staff
	handle("GET "+apiV1+"/products", staff, h.Catalog.ListProducts)
	handle("GET "+apiV1+"/products/{id}", staff, h.Catalog.GetProduct)
	handle("GET "+apiV1+"/products/{id}/image", staff, h.Catalog.ProductImage)
	handle("GET "+apiV1+"/inventory", staff, h.Inventory.ListInventory)
	handle("GET "+apiV1+"/categories", staff, h.Catalog.ListCategories)
	handle("POST "+apiV1+"/sales", staff, h.Sales.CreateSale)
	handle("GET "+apiV1+"/sales/{id}", staff, h.Sales.GetSale)
	handle("GET "+apiV1+"/sales", staff, h.Sales.ListSalesNotAllowed)

	// Admin
	handle("POST "+apiV1+"/products", admin, h.Catalog.CreateProduct)
	handle("PUT "+apiV1+"/products/{id}", admin, h.Catalog.UpdateProduct)
	handle("DELETE "+apiV1+"/products/{id}", admin, h.Catalog.DeleteProduct)
	handle("POST "+apiV1+"/products/{id}/stock", admin, h.Inventory.AddStock)
	handle("POST "+apiV1+"/products/import", admin, h.Import.ImportCatalog)
	handle("POST "+apiV1+"/categories", admin, h.Catalog.CreateCategory)
	handle("PUT "+apiV1+"/categories/{id}", admin, h.Catalog.UpdateCategory)
	handle("DELETE "+apiV1+"/categories/{id}", admin, h.Catalog.DeleteCategory)
}
