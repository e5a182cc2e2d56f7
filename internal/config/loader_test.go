package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.AI.UseMock)
	assert.Equal(t, 5000, cfg.AI.TimeoutMs)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout())
	assert.Equal(t, 20, cfg.Advisor.MaxCreditsPerTerm)
	assert.InDelta(t, 0.5, cfg.Advisor.IntentConfidenceThreshold, 1e-9)
	assert.Equal(t, CatalogEmbedded, cfg.Catalog.Source)
	assert.Equal(t, "deepseek-chat", cfg.AI.Model)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("USE_MOCK_AI", "false")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("AI_TIMEOUT_MS", "1500")
	t.Setenv("MAX_CREDITS_PER_TERM", "15")
	t.Setenv("INTENT_CONFIDENCE_THRESHOLD", "0.7")
	t.Setenv("AI_TIMEOUT_PREREQUISITE_CHECK_MS", "800")
	t.Setenv("AI_TIMEOUT_CAREER_PATHWAY_MS", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.AI.UseMock)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, 15, cfg.Advisor.MaxCreditsPerTerm)
	assert.InDelta(t, 0.7, cfg.Advisor.IntentConfidenceThreshold, 1e-9)

	t.Run("per-intent timeout below global wins", func(t *testing.T) {
		assert.Equal(t, 800*time.Millisecond, cfg.AI.TimeoutFor("prerequisite_check"))
	})
	t.Run("per-intent timeout is capped by global", func(t *testing.T) {
		assert.Equal(t, 1500*time.Millisecond, cfg.AI.TimeoutFor("career_pathway"))
	})
	t.Run("unset intent uses global", func(t *testing.T) {
		assert.Equal(t, 1500*time.Millisecond, cfg.AI.TimeoutFor("course_lookup"))
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "threshold above one",
			env:  map[string]string{"INTENT_CONFIDENCE_THRESHOLD": "1.5"},
			want: "intent_confidence_threshold",
		},
		{
			name: "zero credits",
			env:  map[string]string{"MAX_CREDITS_PER_TERM": "0"},
			want: "max_credits_per_term",
		},
		{
			name: "live AI without key",
			env:  map[string]string{"USE_MOCK_AI": "false"},
			want: "ai_api_key",
		},
		{
			name: "file catalog without path",
			env:  map[string]string{"CATALOG_SOURCE": "file"},
			want: "catalog_path",
		},
		{
			name: "unknown catalog source",
			env:  map[string]string{"CATALOG_SOURCE": "sqlite"},
			want: "unknown catalog_source",
		},
		{
			name: "rate limit without redis",
			env:  map[string]string{"RATE_LIMIT_ENABLED": "true"},
			want: "redis_enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	c := PostgresConfig{User: "u", Password: "p", Host: "db", Port: 5433, Database: "cat", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/cat?sslmode=disable", c.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
