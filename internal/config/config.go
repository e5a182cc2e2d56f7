package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Advisor   AdvisorConfig
	AI        AIConfig
	Catalog   CatalogConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Sentry    SentryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// AdvisorConfig holds the dispatch and planning knobs
type AdvisorConfig struct {
	MaxCreditsPerTerm         int     `mapstructure:"max_credits_per_term"`
	IntentConfidenceThreshold float64 `mapstructure:"intent_confidence_threshold"`
	DefaultTermsRemaining     int     `mapstructure:"default_terms_remaining"`
}

// AIConfig holds AI gateway configuration
type AIConfig struct {
	UseMock           bool                     `mapstructure:"use_mock"`
	Enabled           bool                     `mapstructure:"enabled"`
	TimeoutMs         int                      `mapstructure:"timeout_ms"`
	BaseURL           string                   `mapstructure:"base_url"`
	APIKey            string                   `mapstructure:"api_key"`
	Model             string                   `mapstructure:"model"`
	MaxTokens         int                      `mapstructure:"max_tokens"`
	Temperature       float32                  `mapstructure:"temperature"`
	RequestsPerSecond float64                  `mapstructure:"requests_per_second"`
	Burst             int                      `mapstructure:"burst"`
	BreakerFailures   int                      `mapstructure:"breaker_failures"`
	BreakerCooldown   time.Duration            `mapstructure:"breaker_cooldown"`
	IntentTimeouts    map[string]time.Duration `mapstructure:"-"`
}

// DefaultAITimeout applies when no AI timeout is configured
const DefaultAITimeout = 5 * time.Second

// Timeout returns the global hard timeout for one enhancement call
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// TimeoutFor returns the timeout for an intent, never exceeding Timeout.
func (c AIConfig) TimeoutFor(intent string) time.Duration {
	global := c.Timeout()
	if d, ok := c.IntentTimeouts[intent]; ok && d > 0 && d < global {
		return d
	}
	return global
}

// CatalogConfig selects where the course catalog is loaded from
type CatalogConfig struct {
	Source    string `mapstructure:"source"` // embedded, file, postgres, minio
	Path      string `mapstructure:"path"`
	ObjectKey string `mapstructure:"object_key"`
	Table     string `mapstructure:"table"`
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DSN returns the PostgreSQL connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MinIOConfig holds MinIO configuration
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SentryConfig holds crash reporting configuration
type SentryConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	Release          string  `mapstructure:"release"`
	Debug            bool    `mapstructure:"debug"`
	SampleRate       float64 `mapstructure:"sample_rate"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

// IsDevelopment returns true if running in development mode
func (c Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c Config) IsProduction() bool {
	return c.Server.Env == "production"
}
