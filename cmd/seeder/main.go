// cmd/seeder/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/ammerola/optica-pos/internal/adapters/db"
	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/core/services"
	"github.com/ammerola/optica-pos/internal/pkg/config"
	"github.com/ammerola/optica-pos/internal/pkg/logger"
	"github.com/ammerola/optica-pos/internal/workers"
	"github.com/ammerola/optica-pos/migrations"
)

// demoProduct is a catalog entry seeded with -demo
type demoProduct struct {
	SKU      string
	Name     string
	Category string
	Type     string
	Brand    string
	Buy      string
	Sale     string
	MinStock int
	Stock    int
}

var sampleCategories = []domain.Category{
	{Code: "ARM", Name: "Armazones", Description: "Armazones oftálmicos y solares"},
	{Code: "LEN", Name: "Lentes oftálmicos", Description: "Micas y lentes graduados"},
	{Code: "LC", Name: "Lentes de contacto"},
	{Code: "ACC", Name: "Accesorios", Description: "Estuches, líquidos y paños"},
}

var demoCatalog = []demoProduct{
	{"ARM-RB-5154", "Armazón Ray-Ban Clubmaster", "ARM", "armazon", "Ray-Ban", "1450.00", "2890.00", 2, 6},
	{"ARM-OK-8046", "Armazón Oakley Airdrop", "ARM", "armazon", "Oakley", "1300.00", "2650.00", 2, 4},
	{"ARM-GEN-001", "Armazón acetato genérico", "ARM", "armazon", "", "250.00", "690.00", 5, 20},
	{"LEN-CR39-AR", "Mica CR-39 antirreflejante", "LEN", "mica", "", "180.00", "650.00", 10, 40},
	{"LEN-POLI-BL", "Mica policarbonato filtro azul", "LEN", "mica", "", "320.00", "980.00", 10, 25},
	{"LC-ACU-OASYS", "Acuvue Oasys caja 6 piezas", "LC", "contacto", "Johnson & Johnson", "520.00", "890.00", 4, 12},
	{"ACC-LIQ-120", "Solución multipropósito 120 ml", "ACC", "accesorio", "", "65.00", "149.00", 6, 30},
	{"ACC-EST-RIG", "Estuche rígido", "ACC", "accesorio", "", "35.00", "99.00", 10, 50},
}

func main() {
	var (
		demo        = flag.Bool("demo", false, "Seed a demo catalog with stock")
		catalogFile = flag.String("catalog", "", "Import products from an .xlsx catalog")
		skipMigrate = flag.Bool("skip-migrations", false, "Do not run migrations before seeding")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	log := logger.Setup(logger.LogConfig{Level: *logLevel, Format: "text", ServiceName: "optica-seeder"})

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if !*skipMigrate {
		err := db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
			DatabaseURL:    cfg.GetDatabaseURL(),
			EmbeddedSource: migrations.FS,
			TableName:      "schema_migrations",
			SchemaName:     "public",
		}, log, 3)
		if err != nil {
			log.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	database, err := db.NewDatabase(ctx, db.ConfigFromSettings(cfg.Database), log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	s := newSeeder(database, cfg, log)

	admin, err := s.seedAdmin(ctx, getEnv("SEED_ADMIN_EMAIL", "admin@optica.local"), os.Getenv("SEED_ADMIN_PASSWORD"))
	if err != nil {
		log.Error("failed to seed admin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := s.seedCategories(ctx); err != nil {
		log.Error("failed to seed categories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *demo {
		if err := s.seedDemoCatalog(ctx, admin); err != nil {
			log.Error("failed to seed demo catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if *catalogFile != "" {
		if err := s.importCatalog(ctx, admin, *catalogFile); err != nil {
			log.Error("failed to import catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	log.Info("seeding complete")
}

type seeder struct {
	tx        ports.Transactor
	users     ports.UserRepository
	catalog   ports.CatalogRepository
	ledger    ports.InventoryLedger
	products  *services.CatalogService
	inventory *services.InventoryService
	cfg       *config.Config
	logger    *slog.Logger
}

func newSeeder(database *db.Database, cfg *config.Config, logger *slog.Logger) *seeder {
	catalog := db.NewCatalogRepository(database, logger)
	ledger := db.NewInventoryLedger(database, logger)
	return &seeder{
		tx:        database,
		users:     db.NewUserRepository(database, logger),
		catalog:   catalog,
		ledger:    ledger,
		products:  services.NewCatalogService(database, catalog, ledger, nil, nil, logger),
		inventory: services.NewInventoryService(database, ledger, catalog, nil, nil, 0, logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// seedAdmin returns the admin account, creating it when missing
func (s *seeder) seedAdmin(ctx context.Context, email, password string) (domain.Actor, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		s.logger.Info("admin already present", slog.String("email", email))
		return existing.Actor(), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Actor{}, err
	}

	if password == "" {
		if s.cfg.IsProduction() {
			return domain.Actor{}, fmt.Errorf("SEED_ADMIN_PASSWORD is required in production: %w", config.ErrMissingRequiredConfig)
		}
		password = "admin123"
		s.logger.Warn("using the development admin password")
	}

	hash, err := services.HashPassword(password, s.cfg.Security.BcryptCost)
	if err != nil {
		return domain.Actor{}, err
	}
	u := &domain.User{
		Name:         "Administrador",
		Email:        email,
		Role:         domain.RoleAdmin,
		Active:       true,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return domain.Actor{}, err
	}

	s.logger.Info("admin created", slog.Int64("user_id", u.ID), slog.String("email", email))
	return u.Actor(), nil
}

func (s *seeder) seedCategories(ctx context.Context) error {
	for _, c := range sampleCategories {
		if _, err := s.catalog.FindCategoryByCode(ctx, c.Code); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		c := c
		if err := s.catalog.CreateCategory(ctx, &c); err != nil {
			return fmt.Errorf("category %s: %w", c.Code, err)
		}
		s.logger.Info("category created", slog.String("code", c.Code))
	}
	return nil
}

// seedDemoCatalog creates the demo products that do not exist yet and
// books their opening stock as manual movements.
func (s *seeder) seedDemoCatalog(ctx context.Context, admin domain.Actor) error {
	created := 0
	for _, d := range demoCatalog {
		if _, err := s.catalog.FindProductBySKU(ctx, d.SKU); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		p, err := d.product()
		if err != nil {
			return err
		}
		if err := s.products.CreateProduct(ctx, p, nil); err != nil {
			return fmt.Errorf("product %s: %w", d.SKU, err)
		}
		if d.Stock > 0 {
			adj := domain.StockAdjustment{Quantity: d.Stock, Note: "Inventario inicial"}
			if _, err := s.inventory.AddStock(ctx, admin, p.ID, adj); err != nil {
				return fmt.Errorf("stock for %s: %w", d.SKU, err)
			}
		}
		created++
	}

	s.logger.Info("demo catalog seeded", slog.Int("created", created), slog.Int("total", len(demoCatalog)))
	return nil
}

func (s *seeder) importCatalog(ctx context.Context, admin domain.Actor, path string) error {
	rows, rowErrs, err := workers.ParseCatalogSheet(path, s.cfg.Import.MaxRows)
	if err != nil {
		return err
	}
	for _, re := range rowErrs {
		s.logger.Warn("catalog row skipped", slog.String("error", re.Error()))
	}

	importer := workers.NewCatalogImportProcessor(s.tx, s.catalog, s.ledger, nil, s.cfg.Import.MaxRows, s.logger)
	result, err := importer.Import(ctx, admin.ID, rows)
	if err != nil {
		return err
	}

	s.logger.Info("catalog imported",
		slog.String("file", path),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped+len(rowErrs)))
	return nil
}

func (d demoProduct) product() (*domain.Product, error) {
	buy, err := decimal.NewFromString(d.Buy)
	if err != nil {
		return nil, fmt.Errorf("%s buy price: %w", d.SKU, err)
	}
	sale, err := decimal.NewFromString(d.Sale)
	if err != nil {
		return nil, fmt.Errorf("%s sale price: %w", d.SKU, err)
	}
	return &domain.Product{
		SKU:          d.SKU,
		Name:         d.Name,
		CategoryCode: d.Category,
		Type:         d.Type,
		Brand:        d.Brand,
		BuyPrice:     buy,
		SalePrice:    sale,
		MinStock:     d.MinStock,
		Active:       true,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
