package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Catalog sources
const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
	CatalogMinIO    = "minio"
)

// intentTimeoutKeys lists the intents that accept a per-intent AI timeout.
var intentTimeoutKeys = []string{
	"course_lookup",
	"semester_planning",
	"career_pathway",
	"prerequisite_check",
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("ai_api_key", "AI_API_KEY", "DEEPSEEK_API_KEY")
	_ = v.BindEnv("sentry_dsn", "SENTRY_DSN")

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/acadvisor")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Server
	cfg.Server.Host = v.GetString("server_host")
	cfg.Server.Port = v.GetInt("server_port")
	cfg.Server.Env = v.GetString("server_env")

	// Advisor
	cfg.Advisor.MaxCreditsPerTerm = v.GetInt("max_credits_per_term")
	cfg.Advisor.IntentConfidenceThreshold = v.GetFloat64("intent_confidence_threshold")
	cfg.Advisor.DefaultTermsRemaining = v.GetInt("default_terms_remaining")

	// AI gateway
	cfg.AI.UseMock = v.GetBool("use_mock_ai")
	cfg.AI.Enabled = v.GetBool("ai_enabled")
	cfg.AI.TimeoutMs = v.GetInt("ai_timeout_ms")
	cfg.AI.BaseURL = v.GetString("ai_base_url")
	cfg.AI.APIKey = v.GetString("ai_api_key")
	cfg.AI.Model = v.GetString("ai_model")
	cfg.AI.MaxTokens = v.GetInt("ai_max_tokens")
	cfg.AI.Temperature = float32(v.GetFloat64("ai_temperature"))
	cfg.AI.RequestsPerSecond = v.GetFloat64("ai_requests_per_second")
	cfg.AI.Burst = v.GetInt("ai_burst")
	cfg.AI.BreakerFailures = v.GetInt("ai_breaker_failures")
	cfg.AI.BreakerCooldown = v.GetDuration("ai_breaker_cooldown")
	cfg.AI.IntentTimeouts = make(map[string]time.Duration)
	for _, intent := range intentTimeoutKeys {
		if ms := v.GetInt("ai_timeout_" + intent + "_ms"); ms > 0 {
			cfg.AI.IntentTimeouts[intent] = time.Duration(ms) * time.Millisecond
		}
	}

	// Catalog
	cfg.Catalog.Source = strings.ToLower(v.GetString("catalog_source"))
	cfg.Catalog.Path = v.GetString("catalog_path")
	cfg.Catalog.ObjectKey = v.GetString("catalog_object_key")
	cfg.Catalog.Table = v.GetString("catalog_table")

	// PostgreSQL
	cfg.Postgres.Host = v.GetString("postgres_host")
	cfg.Postgres.Port = v.GetInt("postgres_port")
	cfg.Postgres.User = v.GetString("postgres_user")
	cfg.Postgres.Password = v.GetString("postgres_password")
	cfg.Postgres.Database = v.GetString("postgres_db")
	cfg.Postgres.SSLMode = v.GetString("postgres_ssl_mode")
	cfg.Postgres.MaxConns = int32(v.GetInt("postgres_max_conns"))
	cfg.Postgres.MinConns = int32(v.GetInt("postgres_min_conns"))

	// Redis
	cfg.Redis.Enabled = v.GetBool("redis_enabled")
	cfg.Redis.Host = v.GetString("redis_host")
	cfg.Redis.Port = v.GetInt("redis_port")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")

	// MinIO
	cfg.MinIO.Endpoint = v.GetString("minio_endpoint")
	cfg.MinIO.AccessKey = v.GetString("minio_access_key")
	cfg.MinIO.SecretKey = v.GetString("minio_secret_key")
	cfg.MinIO.UseSSL = v.GetBool("minio_use_ssl")
	cfg.MinIO.Bucket = v.GetString("minio_bucket")

	// Rate Limiting
	cfg.RateLimit.Enabled = v.GetBool("rate_limit_enabled")
	cfg.RateLimit.RequestsPerMinute = v.GetInt("rate_limit_requests_per_minute")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Sentry
	cfg.Sentry.DSN = v.GetString("sentry_dsn")
	cfg.Sentry.Enabled = v.GetBool("sentry_enabled")
	cfg.Sentry.Environment = v.GetString("sentry_environment")
	cfg.Sentry.Release = v.GetString("sentry_release")
	cfg.Sentry.Debug = v.GetBool("sentry_debug")
	cfg.Sentry.SampleRate = v.GetFloat64("sentry_sample_rate")
	cfg.Sentry.TracesSampleRate = v.GetFloat64("sentry_traces_sample_rate")

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_env", "development")

	// Advisor defaults
	v.SetDefault("max_credits_per_term", 20)
	v.SetDefault("intent_confidence_threshold", 0.5)
	v.SetDefault("default_terms_remaining", 4)

	// AI defaults
	v.SetDefault("use_mock_ai", true)
	v.SetDefault("ai_enabled", true)
	v.SetDefault("ai_timeout_ms", 5000)
	v.SetDefault("ai_base_url", "https://api.deepseek.com/v1")
	v.SetDefault("ai_model", "deepseek-chat")
	v.SetDefault("ai_max_tokens", 600)
	v.SetDefault("ai_temperature", 0.3)
	v.SetDefault("ai_requests_per_second", 5)
	v.SetDefault("ai_burst", 10)
	v.SetDefault("ai_breaker_failures", 5)
	v.SetDefault("ai_breaker_cooldown", 30*time.Second)

	// Catalog defaults
	v.SetDefault("catalog_source", CatalogEmbedded)
	v.SetDefault("catalog_path", "")
	v.SetDefault("catalog_object_key", "catalog/courses.yaml")
	v.SetDefault("catalog_table", "courses")

	// PostgreSQL defaults
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "acadvisor")
	v.SetDefault("postgres_password", "acadvisor")
	v.SetDefault("postgres_db", "acadvisor")
	v.SetDefault("postgres_ssl_mode", "disable")
	v.SetDefault("postgres_max_conns", 4)
	v.SetDefault("postgres_min_conns", 1)

	// Redis defaults
	v.SetDefault("redis_enabled", false)
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// MinIO defaults
	v.SetDefault("minio_endpoint", "localhost:9000")
	v.SetDefault("minio_access_key", "acadvisor")
	v.SetDefault("minio_secret_key", "acadvisor123")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("minio_bucket", "acadvisor-catalog")

	// Rate limiting defaults
	v.SetDefault("rate_limit_enabled", false)
	v.SetDefault("rate_limit_requests_per_minute", 60)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// Sentry defaults
	v.SetDefault("sentry_enabled", false)
	v.SetDefault("sentry_sample_rate", 1.0)
	v.SetDefault("sentry_traces_sample_rate", 0.1)
}

func validate(cfg *Config) error {
	if cfg.Advisor.IntentConfidenceThreshold <= 0 || cfg.Advisor.IntentConfidenceThreshold > 1 {
		return fmt.Errorf("intent_confidence_threshold must be in (0, 1], got %v", cfg.Advisor.IntentConfidenceThreshold)
	}
	if cfg.Advisor.MaxCreditsPerTerm <= 0 {
		return fmt.Errorf("max_credits_per_term must be positive, got %d", cfg.Advisor.MaxCreditsPerTerm)
	}
	if cfg.Advisor.DefaultTermsRemaining <= 0 {
		return fmt.Errorf("default_terms_remaining must be positive, got %d", cfg.Advisor.DefaultTermsRemaining)
	}
	if cfg.AI.TimeoutMs <= 0 {
		return fmt.Errorf("ai_timeout_ms must be positive, got %d", cfg.AI.TimeoutMs)
	}
	if cfg.AI.Enabled && !cfg.AI.UseMock && cfg.AI.APIKey == "" {
		return fmt.Errorf("ai_api_key is required when use_mock_ai is false")
	}

	switch cfg.Catalog.Source {
	case CatalogEmbedded, CatalogPostgres:
	case CatalogFile:
		if cfg.Catalog.Path == "" {
			return fmt.Errorf("catalog_path is required for the file catalog source")
		}
	case CatalogMinIO:
		if cfg.MinIO.Endpoint == "" || cfg.MinIO.Bucket == "" {
			return fmt.Errorf("minio_endpoint and minio_bucket are required for the minio catalog source")
		}
	default:
		return fmt.Errorf("unknown catalog_source %q", cfg.Catalog.Source)
	}

	if cfg.RateLimit.Enabled && !cfg.Redis.Enabled {
		return fmt.Errorf("rate limiting requires redis_enabled")
	}
	return nil
}
