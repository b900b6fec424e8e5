package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	defaultBaseDelay = 1 * time.Second
	defaultMaxDelay  = 30 * time.Second
	defaultGrowth    = 2.0
)

// Retryable is implemented by errors that know whether another attempt could
// succeed. Errors without the method are treated as fatal.
type Retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err advertises itself as worth retrying.
func IsRetryable(err error) bool {
	var r Retryable
	return errors.As(err, &r) && r.Retryable()
}

// Policy bounds how a failing operation is reattempted. The delay fields
// fall back to package defaults when unset.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt, so an
	// operation runs at most MaxRetries+1 times. Zero disables retries.
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Growth     float64

	// OnRetry is invoked before each backoff sleep. attempt is the 1-based
	// attempt that just failed.
	OnRetry func(attempt int, delay time.Duration, err error)

	sleeper func(ctx context.Context, d time.Duration) error
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func (p Policy) WithSleeper(sleeper func(ctx context.Context, d time.Duration) error) Policy {
	p.sleeper = sleeper
	return p
}

func (p Policy) maxRetries() int {
	if p.MaxRetries < 0 {
		return 0
	}
	return p.MaxRetries
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return defaultBaseDelay
	}
	return p.BaseDelay
}

func (p Policy) maxDelay() time.Duration {
	if p.MaxDelay <= 0 {
		return defaultMaxDelay
	}
	return p.MaxDelay
}

func (p Policy) growth() float64 {
	if p.Growth <= 1 {
		return defaultGrowth
	}
	return p.Growth
}

// Delay returns the backoff before retry number retryIndex (0-based):
// base for the first retry, then multiplied by the growth factor and capped.
func (p Policy) Delay(retryIndex int) time.Duration {
	base := p.baseDelay()
	maxDelay := p.maxDelay()
	growth := p.growth()

	delay := float64(base)
	for i := 0; i < retryIndex; i++ {
		delay *= growth
		if delay >= float64(maxDelay) {
			return maxDelay
		}
	}
	if delay >= float64(maxDelay) {
		return maxDelay
	}
	return time.Duration(delay)
}

// Run invokes fn until it succeeds, returns a fatal error, the retry budget
// is exhausted, or the context is canceled. Fatal errors are returned as-is;
// exhaustion wraps the last retryable error.
func (p Policy) Run(ctx context.Context, fn func(context.Context) error) error {
	retries := p.maxRetries()
	attempts := retries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		delay := p.Delay(attempt - 1)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.sleeper != nil {
		return p.sleeper(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
