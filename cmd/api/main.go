package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/config"
	"github.com/microfix/dashboard/internal/events"
	"github.com/microfix/dashboard/internal/infrastructure/logger"
	"github.com/microfix/dashboard/internal/infrastructure/telemetry"
	"github.com/microfix/dashboard/internal/processing/links"
	httpTransport "github.com/microfix/dashboard/internal/transport/http"
	"github.com/microfix/dashboard/internal/transport/http/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Env, logger.Options{Level: cfg.App.LogLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		shutdownTracer, err = telemetry.InitTracer(cfg.OTel.Endpoint, cfg.App.Name, cfg.App.Version)
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	ctx := context.Background()

	linkRepo, closeStorage, err := initStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer closeStorage()

	// POST /api/setup-db runs the same statement on demand.
	if err := linkRepo.EnsureSchema(ctx); err != nil {
		logger.Warn("Schema check failed, call /api/setup-db once storage is reachable", zap.Error(err))
	}

	var publisher links.EventPublisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher
		logger.Info("Publishing link changes to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	linkSvc := links.NewService(linkRepo, publisher)

	var writeLimiter *middleware.WriteLimiter
	if cfg.RateLimit.WritesPerMinute > 0 {
		writeLimiter = middleware.NewWriteLimiter(cfg.RateLimit.WritesPerMinute, cfg.RateLimit.MaxClients, cfg.RateLimit.ClientTTL)
	}

	router := httpTransport.NewRouter(cfg, linkSvc, writeLimiter)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
		if shutdownTracer != nil {
			_ = shutdownTracer(shutdownCtx)
		}
	}()

	logger.Info("Server starting",
		zap.String("address", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("static_dir", cfg.Server.StaticDir),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
