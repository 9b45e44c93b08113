package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fail(context.Context) error { return errBoom }
func ok(context.Context) error   { return nil }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Do(ctx, fail), errBoom)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b := NewBreaker(2, time.Minute)
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	require.NoError(t, b.Do(ctx, ok))
	_ = b.Do(ctx, fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var transitions []string
	b := NewBreaker(1, 10*time.Second,
		WithClock(clk.now),
		WithStateChange(func(from, to State) { transitions = append(transitions, from.String()+"->"+to.String()) }),
	)
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	assert.Equal(t, StateOpen, b.State())

	clk.advance(11 * time.Second)
	require.NoError(t, b.Do(ctx, ok))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker(1, 10*time.Second, WithClock(clk.now))
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	clk.advance(11 * time.Second)
	assert.ErrorIs(t, b.Do(ctx, fail), errBoom)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Do(ctx, ok), ErrOpen)
}

func TestBreaker_Defaults(t *testing.T) {
	b := NewBreaker(0, 0)
	assert.Equal(t, 5, b.threshold)
	assert.Equal(t, 30*time.Second, b.cooldown)
	assert.Equal(t, "closed", b.State().String())
	assert.Equal(t, "unknown", State(9).String())
}
