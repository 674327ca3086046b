// Package retry provides the bounded retry policy applied at the
// external collaborator boundaries (market-data fetch, output sinks).
// Pure computation is never wrapped.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TransientError marks a failure worth retrying: rate limiting,
// momentary unavailability, or a just-created destination that is not
// visible yet. Anything else fails fast.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err carries a TransientError anywhere in
// its chain.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Policy is a bounded retry with linearly increasing delay:
// attempt n sleeps Delay + (n-1)*Backoff before retrying.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     time.Duration

	// OnRetry, if set, is called before each re-attempt (for logging
	// and metrics).
	OnRetry func(attempt int, err error)
}

// DefaultPolicy matches the historical behavior: up to 3 attempts,
// 2 seconds apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Do runs fn, retrying transient failures up to MaxAttempts times.
// Non-transient errors and context cancellation propagate immediately.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		if attempt == attempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		wait := p.Delay + time.Duration(attempt-1)*p.Backoff
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", op, attempts, err)
}
