package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/pkg/database"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
)

// Limiter counts a request against a window. *database.RedisDB implements it.
type Limiter interface {
	SlidingWindow(ctx context.Context, key string, limit int64, window time.Duration) (database.WindowResult, error)
}

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	// Max requests per window
	Max    int
	Window time.Duration
	// Timeout bounds the limiter call; the request is let through when it expires
	Timeout      time.Duration
	KeyGenerator func(*fiber.Ctx) string
	Skip         func(*fiber.Ctx) bool
}

// DefaultRateLimitConfig returns default rate limit config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Max:     60,
		Window:  time.Minute,
		Timeout: 100 * time.Millisecond,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Skip: CombinedSkipper(HealthSkipper, MetricsSkipper),
	}
}

// RateLimitMiddleware limits requests per client with a shared sliding window
type RateLimitMiddleware struct {
	limiter Limiter
	config  RateLimitConfig
	logger  *zap.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter Limiter, logger *zap.Logger, config ...RateLimitConfig) *RateLimitMiddleware {
	cfg := DefaultRateLimitConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		config:  cfg,
		logger:  logger,
	}
}

// Handler returns the rate limit handler. Limiter failures let the request
// through.
func (m *RateLimitMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.config.Skip != nil && m.config.Skip(c) {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), m.config.Timeout)
		defer cancel()

		key := "ratelimit:" + m.config.KeyGenerator(c)
		res, err := m.limiter.SlidingWindow(ctx, key, int64(m.config.Max), m.config.Window)
		if err != nil {
			m.logger.Warn("rate limiter unavailable", zap.Error(err), zap.String("request_id", GetRequestID(c)))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(m.config.Max))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			rateLimitRejections.Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(m.config.Window.Seconds())))

			appErr := apperrors.RateLimited()
			return c.Status(appErr.StatusCode).JSON(fiber.Map{
				"error":   "Too Many Requests",
				"message": appErr.Message,
				"code":    appErr.Code,
			})
		}

		return c.Next()
	}
}
