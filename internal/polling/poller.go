package polling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lessonforge/internal/retry"
	"lessonforge/internal/services"
)

// State is the lifecycle position a provider job reports.
type State string

const (
	StatePending  State = "pending"
	StateComplete State = "complete"
	StateFailed   State = "failed"
	StateNotFound State = "not_found"
)

// Status is the payload of one status check.
type Status struct {
	State     State
	ResultURL string
	Progress  float64
	Detail    string
}

// StatusFunc performs one status check. attempt is 1-based. Returning an
// error classified as retryable delays the next check instead of aborting the
// poll; any other error aborts immediately.
type StatusFunc func(ctx context.Context, attempt int) (Status, error)

// Schedule bounds a polling loop.
type Schedule struct {
	// Interval is the base delay between checks.
	Interval time.Duration
	// Growth multiplies the interval every GrowthEvery attempts. Values at or
	// below 1 keep the interval fixed.
	Growth      float64
	GrowthEvery int
	// MaxInterval caps interval growth. Zero means uncapped.
	MaxInterval time.Duration
	// MaxAttempts bounds the total number of checks before giving up.
	MaxAttempts int
	// InitialWait delays the first check, for jobs that are never ready
	// immediately after submission.
	InitialWait time.Duration
	// TransientDelay replaces the regular interval after a retryable check
	// failure. Zero falls back to the regular interval.
	TransientDelay time.Duration

	sleeper func(ctx context.Context, d time.Duration) error
}

// WithSleeper overrides how poll delays are performed (useful for tests).
func (s Schedule) WithSleeper(sleeper func(ctx context.Context, d time.Duration) error) Schedule {
	s.sleeper = sleeper
	return s
}

// IntervalFor returns the delay after check number attempt (1-based).
func (s Schedule) IntervalFor(attempt int) time.Duration {
	interval := s.Interval
	if s.Growth > 1 && s.GrowthEvery > 0 && attempt > 0 {
		scaled := float64(interval)
		steps := (attempt - 1) / s.GrowthEvery
		for i := 0; i < steps; i++ {
			scaled *= s.Growth
			if s.MaxInterval > 0 && scaled >= float64(s.MaxInterval) {
				return s.MaxInterval
			}
		}
		interval = time.Duration(scaled)
	}
	if s.MaxInterval > 0 && interval > s.MaxInterval {
		return s.MaxInterval
	}
	return interval
}

// WaitForCompletion runs check until the job completes, fails, disappears,
// exhausts the attempt budget, or the context is canceled. On completion the
// final status payload is returned.
func (s Schedule) WaitForCompletion(ctx context.Context, check StatusFunc) (Status, error) {
	if check == nil {
		return Status{}, errors.New("status function is required")
	}
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	if s.InitialWait > 0 {
		if err := s.sleep(ctx, s.InitialWait); err != nil {
			return Status{}, err
		}
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		status, err := check(ctx, attempt)
		if err != nil {
			if !retry.IsRetryable(err) {
				return status, err
			}
			if attempt == attempts {
				break
			}
			delay := s.TransientDelay
			if delay <= 0 {
				delay = s.IntervalFor(attempt)
			}
			if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
				return status, sleepErr
			}
			continue
		}

		switch status.State {
		case StateComplete:
			return status, nil
		case StateFailed:
			detail := status.Detail
			if detail == "" {
				detail = "no detail provided"
			}
			return status, fmt.Errorf("job reported failure on attempt %d: %s", attempt, detail)
		case StateNotFound:
			return status, fmt.Errorf("job disappeared on attempt %d: %w", attempt, services.ErrJobNotFound)
		case StatePending:
		default:
			return status, fmt.Errorf("unknown poll state %q", status.State)
		}

		if attempt == attempts {
			break
		}
		if err := s.sleep(ctx, s.IntervalFor(attempt)); err != nil {
			return status, err
		}
	}

	return Status{}, fmt.Errorf("job did not complete within %d checks: %w", attempts, services.ErrTimeout)
}

func (s Schedule) sleep(ctx context.Context, d time.Duration) error {
	if s.sleeper != nil {
		return s.sleeper(ctx, d)
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
