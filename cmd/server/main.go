package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/handler"
	"github.com/acadvisor/acadvisor/internal/middleware"
	"github.com/acadvisor/acadvisor/internal/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	defer func() { _ = logger.Sync() }()

	sentryEnabled := initSentry(cfg, log)
	if sentryEnabled {
		defer middleware.FlushSentry(5 * time.Second)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := initDependencies(startCtx, cfg, log)
	cancelStart()
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	app := fiber.New(fiber.Config{
		AppName:               "Academic Advisor",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.AI.Timeout() + 10*time.Second,
		IdleTimeout:           120 * time.Second,
		BodyLimit:             64 * 1024,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          handler.ErrorHandler(log, sentryEnabled),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.NewLoggerMiddleware(middleware.DefaultLoggerConfig(log)).Handler())
	app.Use(middleware.RecoverWithSentry(log, sentryEnabled))
	app.Use(middleware.NewCORSMiddleware(middleware.DefaultCORSConfig()).Handler())
	app.Use(middleware.NewMetricsMiddleware(middleware.DefaultMetricsConfig()).Handler())

	registerRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Info("starting server",
			zap.String("addr", addr),
			zap.String("version", version),
			zap.Int("courses", deps.Catalog.Len()),
			zap.String("ai_gateway", deps.Gateway.Name()),
		)
		if err := app.Listen(addr); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}

func initSentry(cfg *config.Config, log *zap.Logger) bool {
	if !cfg.Sentry.Enabled || cfg.Sentry.DSN == "" {
		return false
	}

	sc := middleware.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		Debug:            cfg.Sentry.Debug,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	}
	if sc.Release == "" {
		sc.Release = "acadvisor@" + version
	}
	if sc.Environment == "" {
		sc.Environment = cfg.Server.Env
	}

	if err := middleware.InitSentry(sc); err != nil {
		log.Error("failed to initialize Sentry", zap.Error(err))
		return false
	}
	log.Info("Sentry initialized",
		zap.String("environment", sc.Environment),
		zap.String("release", sc.Release),
	)
	return true
}
