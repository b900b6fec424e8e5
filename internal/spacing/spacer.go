package spacing

import (
	"context"
	"sync"
	"time"
)

// Spacer tracks the last reserved send time per provider and delays callers
// so consecutive requests to the same provider stay at least the configured
// interval apart. Distinct providers never delay each other.
type Spacer struct {
	mu       sync.Mutex
	reserved map[string]time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSpacer returns a Spacer backed by the wall clock.
func NewSpacer() *Spacer {
	return &Spacer{
		reserved: make(map[string]time.Time),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// NewSpacerWithClock returns a Spacer with injected time functions for tests.
func NewSpacerWithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *Spacer {
	return &Spacer{
		reserved: make(map[string]time.Time),
		now:      now,
		sleep:    sleep,
	}
}

// Wait blocks until the caller may send to provider, honoring minInterval
// since the previous reservation. The slot is reserved before sleeping, so
// concurrent callers queue up rather than racing for the same slot.
func (s *Spacer) Wait(ctx context.Context, provider string, minInterval time.Duration) error {
	if minInterval <= 0 {
		return ctx.Err()
	}

	s.mu.Lock()
	now := s.now()
	sendAt := now
	prev, had := s.reserved[provider]
	if had {
		if earliest := prev.Add(minInterval); earliest.After(now) {
			sendAt = earliest
		}
	}
	s.reserved[provider] = sendAt
	s.mu.Unlock()

	if wait := sendAt.Sub(now); wait > 0 {
		if err := s.sleep(ctx, wait); err != nil {
			s.rollback(provider, sendAt, prev, had)
			return err
		}
	}
	return ctx.Err()
}

// rollback releases an abandoned reservation so a canceled waiter does not
// delay the next caller. The slot is restored only while it is still ours.
func (s *Spacer) rollback(provider string, sendAt, prev time.Time, had bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.reserved[provider].Equal(sendAt) {
		return
	}
	if had {
		s.reserved[provider] = prev
	} else {
		delete(s.reserved, provider)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
