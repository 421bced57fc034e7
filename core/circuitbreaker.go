package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// BreakerState is the state of a cache tier circuit breaker
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// ErrBreakerOpen is returned by a guarded tier while its breaker is open
var ErrBreakerOpen = errors.New("cache tier circuit breaker is open")

// BreakerConfig controls when a guarded tier is skipped
type BreakerConfig struct {
	// MaxFailures consecutive failures open the breaker
	MaxFailures uint32
	// Cooldown is how long the breaker stays open before a probe is allowed
	Cooldown time.Duration
}

// Validate checks the breaker configuration
func (c BreakerConfig) Validate() error {
	if c.MaxFailures == 0 {
		return errors.New("MaxFailures must be greater than 0")
	}
	if c.Cooldown <= 0 {
		return errors.New("Cooldown must be greater than 0")
	}
	return nil
}

// DefaultBreakerConfig opens after 5 failures and probes again after 30s
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 5, Cooldown: 30 * time.Second}
}

// CircuitBreaker tracks consecutive failures of a dependency. Only one
// probe request is let through while half-open.
type CircuitBreaker struct {
	cfg      BreakerConfig
	now      func() time.Time
	mu       sync.Mutex
	state    BreakerState
	failures uint32
	openedAt time.Time
	probing  bool
}

// NewCircuitBreaker creates a closed breaker
func NewCircuitBreaker(cfg BreakerConfig) (*CircuitBreaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid circuit breaker configuration: %w", err)
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now, state: BreakerClosed}, nil
}

// Allow reports whether a call may proceed
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.Cooldown {
			return ErrBreakerOpen
		}
		cb.state = BreakerHalfOpen
		cb.probing = true
		return nil
	case BreakerHalfOpen:
		if cb.probing {
			return ErrBreakerOpen
		}
		cb.probing = true
		return nil
	default:
		return nil
	}
}

// Record reports the outcome of an allowed call
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false
	if err == nil {
		cb.state = BreakerClosed
		cb.failures = 0
		return
	}

	cb.failures++
	if cb.state == BreakerHalfOpen || cb.failures >= cb.cfg.MaxFailures {
		cb.state = BreakerOpen
		cb.openedAt = cb.now()
	}
}

// State returns the current breaker state
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// BreakerTier guards a cache tier so that an unreachable backend is
// skipped instead of adding its timeout to every search.
type BreakerTier struct {
	tier    CacheTier
	breaker *CircuitBreaker
}

// NewBreakerTier wraps tier with a circuit breaker
func NewBreakerTier(tier CacheTier, cfg BreakerConfig) (*BreakerTier, error) {
	cb, err := NewCircuitBreaker(cfg)
	if err != nil {
		return nil, err
	}
	return &BreakerTier{tier: tier, breaker: cb}, nil
}

// Get reads through the breaker. Open breakers report a miss with ErrBreakerOpen.
func (bt *BreakerTier) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if err := bt.breaker.Allow(); err != nil {
		return false, err
	}
	found, err := bt.tier.Get(ctx, key, dest)
	bt.breaker.Record(err)
	return found, err
}

// Set writes through the breaker
func (bt *BreakerTier) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := bt.breaker.Allow(); err != nil {
		return err
	}
	err := bt.tier.Set(ctx, key, value, ttl)
	bt.breaker.Record(err)
	return err
}

// Invalidate always reaches the tier so stale results cannot outlive a recovery
func (bt *BreakerTier) Invalidate(ctx context.Context) error {
	err := bt.tier.Invalidate(ctx)
	bt.breaker.Record(err)
	return err
}

// State returns the state of the underlying breaker
func (bt *BreakerTier) State() BreakerState {
	return bt.breaker.State()
}
