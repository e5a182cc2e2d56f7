package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/pkg/circuitbreaker"
)

// Guarded protects a gateway with a local token bucket and a circuit
// breaker. A drained bucket yields rate_limited without calling through;
// an open circuit yields unavailable.
type Guarded struct {
	next    Gateway
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewGuarded wraps next. A non-positive RequestsPerSecond disables the bucket.
func NewGuarded(next Gateway, cfg config.AIConfig, logger *zap.Logger) *Guarded {
	g := &Guarded{next: next, logger: logger}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	g.breaker = circuitbreaker.New(circuitbreaker.Config{
		Name:        "ai-" + next.Name(),
		MaxFailures: cfg.BreakerFailures,
		Cooldown:    cfg.BreakerCooldown,
		IsFailure: func(err error) bool {
			var f Failure
			return errors.As(err, &f) && f.upstream()
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn("AI circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return g
}

func (g *Guarded) Name() string { return g.next.Name() }

// BreakerState exposes the circuit state for health reporting
func (g *Guarded) BreakerState() circuitbreaker.State {
	return g.breaker.State()
}

func (g *Guarded) Enhance(ctx context.Context, req Request) Result {
	if g.limiter != nil && !g.limiter.Allow() {
		return Failed(g.Name(), FailureRateLimited)
	}

	res, err := circuitbreaker.Do(g.breaker, ctx, func() (Result, error) {
		r := g.next.Enhance(ctx, req)
		// Caller cancellation says nothing about the backend.
		if r.OK() || errors.Is(ctx.Err(), context.Canceled) {
			return r, nil
		}
		return r, r.Failure
	})

	switch {
	case err == nil:
		return res
	case errors.Is(err, circuitbreaker.ErrOpen):
		return Failed(g.Name(), FailureUnavailable)
	case ctx.Err() != nil && res.Failure == "":
		return Failed(g.Name(), contextFailure(ctx.Err()))
	default:
		return res
	}
}
