package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

func newTestBreaker(clock *time.Time) *CircuitBreaker {
	cb := New("test", Config{FailureThreshold: 2, Timeout: 10 * time.Second})
	cb.now = func() time.Time { return *clock }
	return cb
}

func TestBreaker_OpensAndRecovers(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&clock)

	var transitions []string
	cb.onStateChange = func(_ string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}

	fail := func() error { return errDown }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.Equal(t, StateOpen, cb.State())

	calls := 0
	err := cb.Execute(ctx, func() error { calls++; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)

	clock = clock.Add(11 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&clock)

	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func() error { return errDown })
	}
	clock = clock.Add(11 * time.Second)

	assert.ErrorIs(t, cb.Execute(ctx, func() error { return errDown }), errDown)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	ctx := context.Background()
	clock := time.Now()
	cb := newTestBreaker(&clock)

	_ = cb.Execute(ctx, func() error { return errDown })
	require.NoError(t, cb.Execute(ctx, func() error { return nil }))
	_ = cb.Execute(ctx, func() error { return errDown })

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(1), cb.Counts().ConsecutiveFailures)
}

func TestBreaker_CancelledContext(t *testing.T) {
	clock := time.Now()
	cb := newTestBreaker(&clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := cb.Execute(ctx, func() error { calls++; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
	assert.Zero(t, cb.Counts().Requests)
}
