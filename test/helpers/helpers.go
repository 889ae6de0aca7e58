// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ammerola/optica-pos/internal/adapters/db"
	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/pkg/config"
	"github.com/ammerola/optica-pos/migrations"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	level := slog.LevelError
	if testing.Verbose() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// SetupTestDB starts a PostgreSQL container and applies the embedded
// migrations to it.
func SetupTestDB(t testing.TB) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_optica",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_optica",
		SSLMode:            "disable",
		MaxConnections:     10,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
		LockTimeout:        5 * time.Second,
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		EmbeddedSource: migrations.FS,
	}
	err = db.RunMigrationsWithRetry(context.Background(), migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a miniredis instance with a client pointed at it
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "optica-pos-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "test",
			Password:       "test",
			Name:           "test_optica",
			SSLMode:        "disable",
			MaxConnections: 10,
			MinConnections: 2,
			LockTimeout:    5 * time.Second,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			TTL:      time.Minute,
			PoolSize: 10,
		},
		Security: config.SecurityConfig{
			SessionTTL:        time.Hour,
			BcryptCost:        bcrypt.MinCost,
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			LoginRateLimit:    10,
			AllowedOrigins:    []string{"*"},
			RequestIDHeader:   "X-Request-ID",
		},
		Server: config.ServerConfig{
			Host:          "localhost",
			Port:          "8080",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  15 * time.Second,
			EnableMetrics: true,
		},
		Import: config.ImportConfig{
			UploadDir: os.TempDir(),
			MaxSizeMB: 5,
			MaxRows:   1000,
			RetainFor: time.Hour,
		},
	}
}

// Dec parses a decimal literal and panics on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// CreateTestProduct creates a valid product
func CreateTestProduct(overrides ...func(*domain.Product)) *domain.Product {
	p := &domain.Product{
		SKU:       "ARM-ACE-001",
		Name:      "Armazón acetato negro",
		Type:      "armazon",
		Brand:     "Ray-Ban",
		Model:     "RB5154",
		Material:  "acetato",
		BuyPrice:  Dec("600.00"),
		SalePrice: Dec("1200.00"),
		MinStock:  2,
		Active:    true,
	}
	for _, override := range overrides {
		override(p)
	}
	return p
}

// CreateTestSaleRequest creates a one-line cart paid with payment method 1
func CreateTestSaleRequest(overrides ...func(*domain.SaleRequest)) *domain.SaleRequest {
	req := &domain.SaleRequest{
		PaymentMethodID: 1,
		Items: []domain.LineRequest{
			{ProductID: 1, Quantity: 1, UnitPrice: Ptr(Dec("100.00"))},
		},
	}
	for _, override := range overrides {
		override(req)
	}
	return req
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables empties every table the tests write to. Reference data
// (roles, payment methods) is kept.
func TruncateAllTables(t testing.TB, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE TABLE outbox, inventory_movements, sale_items, sales,
			inventory_variants, inventory, product_variants, products,
			categories, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Failed to truncate tables")
}

// SeedUser inserts an active user with password "secret123" and returns its id
func SeedUser(t testing.TB, pool *pgxpool.Pool, role domain.Role, name, email string) int64 {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	var id int64
	err = pool.QueryRow(context.Background(), `
		INSERT INTO users (role_id, name, email, password_hash)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		role.ID(), name, email, string(hash)).Scan(&id)
	require.NoError(t, err, "Failed to seed user")
	return id
}

// SeedProduct inserts a product with the given stock and returns its id.
// A negative stock leaves the product untracked.
func SeedProduct(t testing.TB, pool *pgxpool.Pool, sku string, price decimal.Decimal, stock int) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO products (sku, name, sale_price, buy_price)
		VALUES ($1, $2, $3, 0) RETURNING id`,
		sku, "Producto "+sku, price).Scan(&id)
	require.NoError(t, err, "Failed to seed product")

	if stock >= 0 {
		_, err = pool.Exec(ctx, `INSERT INTO inventory (product_id, stock) VALUES ($1, $2)`, id, stock)
		require.NoError(t, err, "Failed to seed inventory")
	}
	return id
}

// SeedVariant inserts a variant of productID and returns its id
func SeedVariant(t *testing.T, pool *pgxpool.Pool, productID int64, sph string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO product_variants (product_id, type, sph) VALUES ($1, 'lente', $2) RETURNING id`,
		productID, Dec(sph)).Scan(&id)
	require.NoError(t, err, "Failed to seed variant")
	return id
}

// PaymentMethodID returns the id of a seeded payment method
func PaymentMethodID(t testing.TB, pool *pgxpool.Pool, code string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `SELECT id FROM payment_methods WHERE code = $1`, code).Scan(&id)
	require.NoError(t, err, "Unknown payment method %s", code)
	return id
}

// StockOf returns the inventory stock of productID
func StockOf(t testing.TB, pool *pgxpool.Pool, productID int64) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(), `SELECT stock FROM inventory WHERE product_id = $1`, productID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

// CountRows counts rows of table matching where
func CountRows(t *testing.T, pool *pgxpool.Pool, table, where string, args ...any) int {
	t.Helper()

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp(t.TempDir(), fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")
	require.NoError(t, file.Close())

	return file.Name()
}
