package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/logger"
)

// Default retry policy values.
const (
	// DefaultMaxAttempts bounds retries of a transient upstream failure.
	DefaultMaxAttempts = 4

	// DefaultInitialInterval is the first backoff delay.
	DefaultInitialInterval = 500 * time.Millisecond
)

// Retrier wraps fallible provider operations with exponential backoff.
// Only transient upstream errors are retried; domain errors (not found,
// disabled, validation, configuration) propagate immediately.
type Retrier struct {
	maxAttempts     uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

// RetrierOption customises a Retrier.
type RetrierOption func(*Retrier)

// WithMaxAttempts sets the total attempt count (first try included).
func WithMaxAttempts(n int) RetrierOption {
	return func(r *Retrier) {
		if n > 0 {
			r.maxAttempts = uint64(n)
		}
	}
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) RetrierOption {
	return func(r *Retrier) {
		if d > 0 {
			r.initialInterval = d
		}
	}
}

// NewRetrier creates a retrier with the default policy.
func NewRetrier(opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxAttempts:     DefaultMaxAttempts,
		initialInterval: DefaultInitialInterval,
		maxInterval:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs op, retrying transient failures with exponential backoff.
// Exhausting the attempt budget returns the last error unchanged.
// The op name is used for logging only.
func (r *Retrier) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval
	policy.MaxInterval = r.maxInterval

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !domain.IsTransient(err) {
			return backoff.Permanent(err)
		}
		logger.Warn("%s: attempt %d failed: %v", name, attempt, err)
		return err
	}

	// backoff.Retry unwraps Permanent errors, so callers can still
	// match the original with errors.Is/As.
	return backoff.Retry(
		wrapped,
		backoff.WithContext(backoff.WithMaxRetries(policy, r.maxAttempts-1), ctx),
	)
}
