package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream failed")

func newTestBreaker(maxFailures int) (*CircuitBreaker, *time.Time) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := New(Config{Name: "test", MaxFailures: maxFailures, Cooldown: time.Minute})
	cb.now = func() time.Time { return clock }
	return cb, &clock
}

func fail() (int, error) { return 0, errUpstream }
func succeed() (int, error) { return 1, nil }

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb, _ := newTestBreaker(2)
	ctx := context.Background()

	_, _ = Do(cb, ctx, fail)
	assert.Equal(t, StateClosed, cb.State())
	_, err := Do(cb, ctx, fail)
	assert.ErrorIs(t, err, errUpstream)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	_, err = Do(cb, ctx, func() (int, error) { called = true; return 0, nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(2)
	ctx := context.Background()

	_, _ = Do(cb, ctx, fail)
	_, err := Do(cb, ctx, succeed)
	require.NoError(t, err)
	_, _ = Do(cb, ctx, fail)

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	t.Run("success closes the circuit", func(t *testing.T) {
		cb, clock := newTestBreaker(1)
		ctx := context.Background()

		_, _ = Do(cb, ctx, fail)
		require.Equal(t, StateOpen, cb.State())

		*clock = clock.Add(time.Minute)
		v, err := Do(cb, ctx, succeed)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("failure reopens the circuit", func(t *testing.T) {
		cb, clock := newTestBreaker(3)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, _ = Do(cb, ctx, fail)
		}
		*clock = clock.Add(time.Minute)

		_, _ = Do(cb, ctx, fail)
		assert.Equal(t, StateOpen, cb.State())
	})

	t.Run("only one probe at a time", func(t *testing.T) {
		cb, clock := newTestBreaker(1)
		ctx := context.Background()

		_, _ = Do(cb, ctx, fail)
		*clock = clock.Add(time.Minute)

		_, err := Do(cb, ctx, func() (int, error) {
			_, inner := Do(cb, ctx, succeed)
			return 0, inner
		})
		assert.ErrorIs(t, err, ErrOpen)
	})

	t.Run("cancelled probe gives back its slot", func(t *testing.T) {
		cb, clock := newTestBreaker(1)
		_, _ = Do(cb, context.Background(), fail)
		*clock = clock.Add(time.Minute)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Do(cb, ctx, succeed)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StateHalfOpen, cb.State())

		_, err = Do(cb, context.Background(), succeed)
		require.NoError(t, err)
		assert.Equal(t, StateClosed, cb.State())
	})
}

func TestCircuitBreaker_IsFailure(t *testing.T) {
	ignored := errors.New("caller gave up")
	cb := New(Config{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return !errors.Is(err, ignored) },
	})

	_, _ = Do(cb, context.Background(), func() (int, error) { return 0, ignored })
	assert.Equal(t, StateClosed, cb.State())

	_, _ = Do(cb, context.Background(), fail)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	changes := make(chan State, 1)
	cb := New(Config{
		Name:          "ai-test",
		MaxFailures:   1,
		OnStateChange: func(_ string, _, to State) { changes <- to },
	})

	_, _ = Do(cb, context.Background(), fail)

	select {
	case to := <-changes:
		assert.Equal(t, StateOpen, to)
	case <-time.After(time.Second):
		t.Fatal("state change not reported")
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
