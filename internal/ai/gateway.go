package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/domain"
)

// Failure classifies why an enhancement produced no text
type Failure string

const (
	FailureTimeout     Failure = "timeout"
	FailureDisabled    Failure = "disabled"
	FailureRateLimited Failure = "rate_limited"
	FailureMalformed   Failure = "malformed_response"
	FailureUnavailable Failure = "unavailable"
)

// Error lets a Failure travel through error-returning helpers
func (f Failure) Error() string {
	return "ai enhancement failed: " + string(f)
}

// upstream reports whether the failure says something about the backend's
// health, as opposed to local policy.
func (f Failure) upstream() bool {
	switch f {
	case FailureTimeout, FailureMalformed, FailureUnavailable, FailureRateLimited:
		return true
	}
	return false
}

// Gateway sources
const (
	SourceMock     = "mock"
	SourceOpenAI   = "openai"
	SourceDisabled = "disabled"
)

// Request is one enhancement call
type Request struct {
	Intent domain.IntentKind
	// Prompt is the full user prompt sent to a model.
	Prompt string
	// Summary is the deterministic narrative of the baseline. The mock
	// gateway echoes it.
	Summary string
	Timeout time.Duration
}

// Result is the outcome of an enhancement call. Exactly one of Text and
// Failure is set.
type Result struct {
	Text    string
	Source  string
	Failure Failure
}

// OK reports whether the call produced usable text
func (r Result) OK() bool {
	return r.Failure == ""
}

// Failed builds a failed result
func Failed(source string, f Failure) Result {
	return Result{Source: source, Failure: f}
}

// Gateway produces optional narrative text. Implementations never panic
// into callers and never block past Request.Timeout.
type Gateway interface {
	Name() string
	Enhance(ctx context.Context, req Request) Result
}

// New builds the gateway selected by configuration
func New(cfg config.AIConfig, logger *zap.Logger) Gateway {
	switch {
	case cfg.UseMock:
		logger.Info("AI gateway in mock mode")
		return NewMockGateway()
	case !cfg.Enabled:
		logger.Info("AI gateway disabled")
		return DisabledGateway{}
	default:
		logger.Info("AI gateway enabled",
			zap.String("base_url", cfg.BaseURL),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout()),
		)
		return NewGuarded(NewOpenAIGateway(cfg, logger), cfg, logger)
	}
}

// Bounded calls g and stops waiting at req.Timeout even when g itself does
// not honour its deadline.
func Bounded(ctx context.Context, g Gateway, req Request) Result {
	return callWithTimeout(ctx, req.Timeout, g.Name(), func(ctx context.Context) Result {
		return g.Enhance(ctx, req)
	})
}

// callWithTimeout runs fn under a deadline and stops waiting when the
// deadline passes or the caller cancels. A late result is dropped.
func callWithTimeout(ctx context.Context, timeout time.Duration, source string, fn func(ctx context.Context) Result) Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Failed(source, FailureUnavailable)
			}
		}()
		done <- fn(ctx)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return Failed(source, contextFailure(ctx.Err()))
	}
}

func contextFailure(err error) Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	return FailureUnavailable
}

// DisabledGateway refuses every call
type DisabledGateway struct{}

func (DisabledGateway) Name() string { return SourceDisabled }

func (DisabledGateway) Enhance(context.Context, Request) Result {
	return Failed(SourceDisabled, FailureDisabled)
}

// MockGateway answers instantly with deterministic text and never calls
// the network.
type MockGateway struct{}

// NewMockGateway creates a mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Name() string { return SourceMock }

func (m *MockGateway) Enhance(ctx context.Context, req Request) Result {
	if err := ctx.Err(); err != nil {
		return Failed(SourceMock, contextFailure(err))
	}
	if req.Summary != "" {
		return Result{Text: req.Summary, Source: SourceMock}
	}
	return Result{
		Text:   fmt.Sprintf("This %s answer was assembled from the course catalog.", humanIntent(req.Intent)),
		Source: SourceMock,
	}
}

func humanIntent(k domain.IntentKind) string {
	switch k {
	case domain.IntentCourseLookup:
		return "course lookup"
	case domain.IntentCareerPathway:
		return "career pathway"
	case domain.IntentSemesterPlanning:
		return "semester plan"
	case domain.IntentPrerequisiteCheck:
		return "prerequisite check"
	}
	return "advising"
}
