// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/optica-pos/internal/adapters/db"
	redis_a "github.com/ammerola/optica-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/optica-pos/internal/adapters/storage"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/core/services"
	"github.com/ammerola/optica-pos/internal/handlers"
	"github.com/ammerola/optica-pos/internal/pkg/config"
	"github.com/ammerola/optica-pos/internal/pkg/logger"
	"github.com/ammerola/optica-pos/internal/pkg/metrics"
	"github.com/ammerola/optica-pos/internal/workers"
	"github.com/ammerola/optica-pos/migrations"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.Setup(logger.LogConfig{Level: "debug", Format: "json", ServiceName: "optica-api"})

	slogger.Info("starting optica point of sale api",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.Setup(logger.LogConfig{
		Level:          cfg.App.LogLevel,
		Format:         cfg.App.LogFormat,
		Output:         cfg.App.LogOutput,
		SampleRate:     cfg.App.LogSample,
		ServiceName:    "optica-api",
		ServiceVersion: Version,
		Environment:    cfg.App.Environment,
	})
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if !cfg.IsProduction() {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
		}
	}

	server := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handlers.NewRouter(deps.handlers, deps.auth, deps.metrics, cfg, slogger),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}
		slogger.Info("server shutdown complete")
	}
}

// dependencies holds everything the api process owns
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	auth           ports.AuthService
	metrics        *metrics.Metrics
	handlers       handlers.Handlers
}

func (d *dependencies) cleanup() {
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)
	database, err := db.NewDatabase(ctx, db.ConfigFromSettings(cfg.Database), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis", slog.String("addr", cfg.Redis.Addr()))
	redisClient := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Addr(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		deps.cleanup()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)
	sessions := redis_a.NewSessionStore(redisClient, logger)

	asynqOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqOpt)
	deps.asynqInspector = asynq.NewInspector(asynqOpt)
	tasks := workers.NewPublisher(deps.asynqClient, cfg.Import.WorkerWait, logger)

	images, err := newImageStore(ctx, cfg.AWS, logger)
	if err != nil {
		deps.cleanup()
		return nil, err
	}

	if cfg.Server.EnableMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.metrics = metrics.New(reg)
	}

	catalogRepo := db.NewCatalogRepository(database, logger)
	ledger := db.NewInventoryLedger(database, logger)
	users := db.NewUserRepository(database, logger)

	saleService := services.NewSaleService(services.SaleDeps{
		Tx:      database,
		Catalog: catalogRepo,
		Ledger:  ledger,
		Sales:   db.NewSaleRepository(database, logger),
		Outbox:  db.NewOutbox(database, logger),
		Cache:   cache,
		Tasks:   tasks,
		Metrics: deps.metrics,
	}, logger)
	inventoryService := services.NewInventoryService(database, ledger, catalogRepo, cache, deps.metrics, cfg.Redis.TTL, logger)
	catalogService := services.NewCatalogService(database, catalogRepo, ledger, images, cache, logger)
	authService := services.NewAuthService(users, sessions, cfg.Security.SessionTTL, logger)
	deps.auth = authService

	deps.handlers = handlers.Handlers{
		Auth:      handlers.NewAuthHandler(authService, logger),
		Sales:     handlers.NewSaleHandler(saleService, logger),
		Inventory: handlers.NewInventoryHandler(inventoryService, logger),
		Catalog:   handlers.NewCatalogHandler(catalogService, logger),
		Import:    handlers.NewImportHandler(tasks, cfg.Import.UploadDir, int64(cfg.Import.MaxSizeMB)<<20, logger),
		Health:    handlers.NewHealthHandler(database, redisClient, deps.asynqInspector, cfg.App, logger),
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// newImageStore uses S3 when a bucket is configured and the local disk
// otherwise
func newImageStore(ctx context.Context, cfg config.AWSConfig, logger *slog.Logger) (ports.ImageStore, error) {
	if cfg.S3Bucket == "" {
		logger.Info("storing product images on disk", slog.String("dir", cfg.LocalImageDir))
		return storage.NewLocalStorage(cfg.LocalImageDir, logger)
	}

	store, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Endpoint:        cfg.S3Endpoint,
		UsePathStyle:    cfg.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
	}
	return store, nil
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL:    cfg.GetDatabaseURL(),
		SourcePath:     cfg.Database.MigrationPath,
		EmbeddedSource: migrations.FS,
		TableName:      "schema_migrations",
		SchemaName:     "public",
	}
	if cfg.Database.MigrationPath != "" {
		migrationConfig.EmbeddedSource = nil
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
