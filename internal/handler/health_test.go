package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadvisor/acadvisor/internal/catalog"
	"github.com/acadvisor/acadvisor/internal/pkg/circuitbreaker"
	"github.com/acadvisor/acadvisor/internal/testutil"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fakeBreaker circuitbreaker.State

func (b fakeBreaker) BreakerState() circuitbreaker.State { return circuitbreaker.State(b) }

func getJSON(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestNewHealthHandler(t *testing.T) {
	before := time.Now()
	handler := NewHealthHandler(catalog.Unloaded(), nil, nil, "1.2.3")

	require.NotNil(t, handler)
	assert.Equal(t, "1.2.3", handler.version)
	assert.False(t, handler.startTime.Before(before))
}

func TestHealthHandler_Health(t *testing.T) {
	t.Run("healthy with breaker state", func(t *testing.T) {
		app := fiber.New()
		NewHealthHandler(testutil.FixtureCatalog(t), fakePinger{}, fakeBreaker(circuitbreaker.StateOpen), "1.0.0").RegisterRoutes(app)

		var status HealthStatus
		code := getJSON(t, app, "/health", &status)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, "healthy: 7 courses", status.Checks["catalog"])
		assert.Equal(t, "healthy", status.Checks["redis"])
		assert.Equal(t, "breaker open", status.Checks["ai"])
	})

	t.Run("catalog not loaded", func(t *testing.T) {
		app := fiber.New()
		NewHealthHandler(catalog.Unloaded(), nil, nil, "1.0.0").RegisterRoutes(app)

		var status HealthStatus
		code := getJSON(t, app, "/health", &status)

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", status.Status)
		assert.NotContains(t, status.Checks, "redis")
		assert.NotContains(t, status.Checks, "ai")
	})
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		store  catalog.Store
		redis  Pinger
		code   int
		reason string
	}{
		{name: "ready", store: testutil.FixtureCatalog(t), code: http.StatusOK},
		{name: "catalog missing", store: catalog.Unloaded(), code: http.StatusServiceUnavailable, reason: "catalog not loaded"},
		{
			name:   "redis down",
			store:  testutil.FixtureCatalog(t),
			redis:  fakePinger{err: errors.New("connection refused")},
			code:   http.StatusServiceUnavailable,
			reason: "redis unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			NewHealthHandler(tt.store, tt.redis, nil, "1.0.0").RegisterRoutes(app)

			var body map[string]string
			assert.Equal(t, tt.code, getJSON(t, app, "/ready", &body))
			assert.Equal(t, tt.reason, body["reason"])
		})
	}
}

func TestHealthHandler_LivenessAndVersion(t *testing.T) {
	app := fiber.New()
	NewHealthHandler(catalog.Unloaded(), nil, nil, "2.1.0").RegisterRoutes(app)

	var live map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, app, "/livez", &live))
	assert.Equal(t, "alive", live["status"])

	var version map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, app, "/version", &version))
	assert.Equal(t, "2.1.0", version["version"])
	assert.NotEmpty(t, version["uptime"])
}

func TestDocsHandler(t *testing.T) {
	app := fiber.New()
	NewDocsHandler().RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-yaml", resp.Header.Get("Content-Type"))

	var doc map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, app, "/openapi.json", &doc))
	assert.Contains(t, doc, "openapi")
	assert.Contains(t, doc["paths"], "/query")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
