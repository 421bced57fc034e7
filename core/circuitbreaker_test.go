package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(t *testing.T, maxFailures uint32) (*CircuitBreaker, *fakeClock) {
	cb, err := NewCircuitBreaker(BreakerConfig{MaxFailures: maxFailures, Cooldown: time.Minute})
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb.now = clock.now
	return cb, clock
}

func TestBreakerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultBreakerConfig().Validate())
	assert.Error(t, BreakerConfig{Cooldown: time.Second}.Validate())
	assert.Error(t, BreakerConfig{MaxFailures: 1}.Validate())

	_, err := NewCircuitBreaker(BreakerConfig{})
	assert.Error(t, err)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(t, 3)
	boom := errors.New("boom")

	cb.Record(boom)
	cb.Record(boom)
	cb.Record(nil)
	assert.Equal(t, BreakerClosed, cb.State(), "a success resets the failure run")

	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Allow())
		cb.Record(boom)
	}
	assert.Equal(t, BreakerOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrBreakerOpen)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, clock := newTestBreaker(t, 1)
	cb.Record(errors.New("down"))
	require.Equal(t, BreakerOpen, cb.State())

	clock.advance(30 * time.Second)
	assert.ErrorIs(t, cb.Allow(), ErrBreakerOpen, "cooldown not elapsed")

	clock.advance(31 * time.Second)
	require.NoError(t, cb.Allow(), "first call after cooldown is the probe")
	assert.Equal(t, BreakerHalfOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrBreakerOpen, "only one probe at a time")

	cb.Record(errors.New("still down"))
	assert.Equal(t, BreakerOpen, cb.State())

	clock.advance(2 * time.Minute)
	require.NoError(t, cb.Allow())
	cb.Record(nil)
	assert.Equal(t, BreakerClosed, cb.State())
	assert.NoError(t, cb.Allow())
}

func TestBreakerTier_SkipsFailingTier(t *testing.T) {
	ctx := context.Background()
	down := errors.New("connection refused")
	bt, err := NewBreakerTier(failingTier{err: down}, BreakerConfig{MaxFailures: 2, Cooldown: time.Minute})
	require.NoError(t, err)

	var dest cachedPage
	_, err = bt.Get(ctx, "k", &dest)
	assert.ErrorIs(t, err, down)
	err = bt.Set(ctx, "k", cachedPage{}, time.Minute)
	assert.ErrorIs(t, err, down)
	assert.Equal(t, BreakerOpen, bt.State())

	found, err := bt.Get(ctx, "k", &dest)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.ErrorIs(t, bt.Set(ctx, "k", cachedPage{}, time.Minute), ErrBreakerOpen)
	assert.ErrorIs(t, bt.Invalidate(ctx), down, "invalidation is never short-circuited")
}

func TestBreakerTier_PassesThroughHealthyTier(t *testing.T) {
	ctx := context.Background()
	shared, _ := newTestRedisCache(t)
	bt, err := NewBreakerTier(shared, DefaultBreakerConfig())
	require.NoError(t, err)

	require.NoError(t, bt.Set(ctx, "k", cachedPage{Total: 3}, time.Minute))
	var out cachedPage
	found, err := bt.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(3), out.Total)

	found, err = bt.Get(ctx, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, BreakerClosed, bt.State())
}
