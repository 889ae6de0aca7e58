// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/optica-pos/internal/adapters/db"
	"github.com/ammerola/optica-pos/internal/adapters/mail"
	"github.com/ammerola/optica-pos/internal/adapters/messaging"
	redis_a "github.com/ammerola/optica-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/pkg/config"
	"github.com/ammerola/optica-pos/internal/pkg/logger"
	"github.com/ammerola/optica-pos/internal/pkg/metrics"
	"github.com/ammerola/optica-pos/internal/workers"
)

func main() {
	slogger := logger.Setup(logger.LogConfig{Level: "info", Format: "json", ServiceName: "optica-worker"})

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.Setup(logger.LogConfig{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Output:      cfg.App.LogOutput,
		SampleRate:  cfg.App.LogSample,
		ServiceName: "optica-worker",
		Environment: cfg.App.Environment,
	})
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()
	dbCfg := db.ConfigFromSettings(cfg.Database)
	dbCfg.MaxConnections = 10
	dbCfg.MinConnections = 2
	database, err := db.NewDatabase(ctx, dbCfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	client := asynq.NewClient(redisOpt)
	defer client.Close()
	publisher := workers.NewPublisher(client, cfg.Import.WorkerWait, slogger)

	var m *metrics.Metrics
	if cfg.Server.EnableMetrics {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		go serveMetrics(m, slogger)
	}

	catalogRepo := db.NewCatalogRepository(database, slogger)
	ledger := db.NewInventoryLedger(database, slogger)

	processors := workers.Processors{
		Import:   workers.NewCatalogImportProcessor(database, catalogRepo, ledger, cache, cfg.Import.MaxRows, slogger),
		LowStock: workers.NewLowStockProcessor(ledger, publisher, cfg.Mail.LowStockTo, slogger),
		Email:    workers.NewEmailProcessor(newMailer(cfg, slogger), slogger),
		Cleanup:  workers.NewCleanupProcessor(cfg.Import.UploadDir, cfg.Import.RetainFor, slogger),
	}

	relayEnabled := cfg.Kafka.Enabled()
	if relayEnabled {
		kafka := messaging.NewKafkaPublisher(cfg.Kafka, slogger)
		defer kafka.Close()
		processors.Outbox = workers.NewOutboxRelay(db.NewOutbox(database, slogger), kafka, cfg.Kafka.BatchSize, slogger)
	} else {
		slogger.Warn("no kafka brokers configured, outbox events stay pending")
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError(slogger)),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck(slogger),
		Logger:          newAsynqLogger(slogger),
	})

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger:   newAsynqLogger(slogger),
		Location: time.Local,
	})
	if err := workers.RegisterPeriodicTasks(scheduler, cfg.Asynq, relayEnabled); err != nil {
		slogger.Error("failed to register periodic tasks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(workers.NewServeMux(processors, m, slogger)); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()
	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.Bool("outbox_relay", relayEnabled))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// newMailer sends through SMTP when a host is configured and logs the
// messages otherwise
func newMailer(cfg *config.Config, logger *slog.Logger) ports.Mailer {
	if cfg.Mail.SMTPHost == "" {
		logger.Warn("no SMTP host configured, emails are only logged")
		return mail.NewLogMailer(logger)
	}
	return mail.NewSMTPMailer(cfg.Mail, logger)
}

func serveMetrics(m *metrics.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	srv := &http.Server{Addr: ":9091", Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server stopped", slog.String("error", err.Error()))
	}
}

func handleError(logger *slog.Logger) func(ctx context.Context, task *asynq.Task, err error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		logger.ErrorContext(ctx, "task processing failed",
			slog.String("type", task.Type()),
			slog.Int("retry", retried),
			slog.Int("max_retry", maxRetry),
			slog.String("error", err.Error()))
	}
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	delay := time.Second * time.Duration(1<<uint(n))
	if delay > 10*time.Minute || delay <= 0 {
		delay = 10 * time.Minute
	}
	return delay
}

func healthCheck(logger *slog.Logger) func(error) {
	return func(err error) {
		if err != nil {
			logger.Error("worker health check failed", slog.String("error", err.Error()))
		}
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
