package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/ai"
	"github.com/acadvisor/acadvisor/internal/catalog"
	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/handler"
	"github.com/acadvisor/acadvisor/internal/middleware"
	"github.com/acadvisor/acadvisor/internal/pkg/database"
	"github.com/acadvisor/acadvisor/internal/service"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Catalog *catalog.Catalog
	Redis   *database.RedisDB
	Gateway ai.Gateway

	Dispatcher   *service.Dispatcher
	Courses      *service.CourseService
	Planner      *service.PlanningService
	Orchestrator *service.Orchestrator

	Handlers *Handlers

	// RateLimitMiddleware is nil when rate limiting is off or Redis is unreachable
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// Handlers groups the HTTP handlers
type Handlers struct {
	Health   *handler.HealthHandler
	Docs     *handler.DocsHandler
	Query    *handler.QueryHandler
	Subjects *handler.SubjectsHandler
}

// initDependencies wires the application. A catalog that fails to load
// leaves the server running with an unloaded catalog so that probes report
// it and queries fail with STORE_UNAVAILABLE.
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	cat, err := catalog.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load course catalog", zap.String("source", cfg.Catalog.Source), zap.Error(err))
		cat = catalog.Unloaded()
	}
	deps.Catalog = cat

	if cfg.RateLimit.Enabled && cfg.Redis.Enabled {
		redisDB, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("failed to connect to Redis, rate limiting disabled", zap.Error(err))
		} else {
			deps.Redis = redisDB
			deps.RateLimitMiddleware = middleware.NewRateLimitMiddleware(redisDB, logger, rateLimitConfig(cfg))
		}
	}

	deps.Gateway = ai.New(cfg.AI, logger)

	deps.Dispatcher = service.NewDispatcher(cfg.Advisor.IntentConfidenceThreshold, logger)
	deps.Courses = service.NewCourseService(cat, logger)
	deps.Planner = service.NewPlanningService(cat, cfg.Advisor.MaxCreditsPerTerm, logger)
	deps.Orchestrator = service.NewOrchestrator(
		deps.Dispatcher,
		deps.Courses,
		deps.Planner,
		deps.Gateway,
		service.OrchestratorConfig{
			AI:                    cfg.AI,
			DefaultTermsRemaining: cfg.Advisor.DefaultTermsRemaining,
		},
		logger,
	)

	var redisPinger handler.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}
	var breaker handler.BreakerReporter
	if g, ok := deps.Gateway.(*ai.Guarded); ok {
		breaker = g
	}

	deps.Handlers = &Handlers{
		Health:   handler.NewHealthHandler(cat, redisPinger, breaker, version),
		Docs:     handler.NewDocsHandler(),
		Query:    handler.NewQueryHandler(deps.Orchestrator, logger),
		Subjects: handler.NewSubjectsHandler(deps.Courses),
	}

	return deps, nil
}

func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimit.RequestsPerMinute > 0 {
		rl.Max = cfg.RateLimit.RequestsPerMinute
	}
	return rl
}

// Close closes all dependencies
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn("failed to close Redis", zap.Error(err))
		}
	}
}
