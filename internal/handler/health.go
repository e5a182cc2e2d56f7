package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/acadvisor/acadvisor/internal/catalog"
	"github.com/acadvisor/acadvisor/internal/pkg/circuitbreaker"
)

// Pinger is a dependency that can report connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes the state of the AI gateway's circuit breaker
type BreakerReporter interface {
	BreakerState() circuitbreaker.State
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	catalog   catalog.Store
	redis     Pinger
	breaker   BreakerReporter
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. redis and breaker may be nil
// when rate limiting or the live AI gateway are not configured.
func NewHealthHandler(store catalog.Store, redis Pinger, breaker BreakerReporter, version string) *HealthHandler {
	return &HealthHandler{
		catalog:   store,
		redis:     redis,
		breaker:   breaker,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthStatus represents health check status
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health handles GET /health. The AI gateway is reported but never makes the
// service unhealthy since every pipeline has a rule-based fallback.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := HealthStatus{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string),
	}

	if h.catalogReady() {
		status.Checks["catalog"] = fmt.Sprintf("healthy: %d courses", h.catalog.Len())
	} else {
		status.Status = "unhealthy"
		status.Checks["catalog"] = "unhealthy: not loaded"
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks["redis"] = "unhealthy: " + err.Error()
		} else {
			status.Checks["redis"] = "healthy"
		}
	}

	if h.breaker != nil {
		status.Checks["ai"] = "breaker " + h.breaker.BreakerState().String()
	}

	statusCode := fiber.StatusOK
	if status.Status != "healthy" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(status)
}

// Liveness handles GET /livez
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	if !h.catalogReady() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not ready",
			"reason": "catalog not loaded",
		})
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"reason": "redis unavailable",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "ready",
	})
}

// Version handles GET /version
func (h *HealthHandler) Version(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": h.version,
		"uptime":  time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) catalogReady() bool {
	return h.catalog != nil && h.catalog.Loaded()
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/healthz", h.Health)
	app.Get("/livez", h.Liveness)
	app.Get("/live", h.Liveness)
	app.Get("/readyz", h.Readiness)
	app.Get("/ready", h.Readiness)
	app.Get("/version", h.Version)
}
