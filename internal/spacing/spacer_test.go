package spacing_test

import (
	"context"
	"testing"
	"time"

	"lessonforge/internal/spacing"
)

type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	return nil
}

func newTestSpacer() (*spacing.Spacer, *fakeClock) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	return spacing.NewSpacerWithClock(clock.now, clock.sleep), clock
}

func TestWaitDelaysBackToBackCalls(t *testing.T) {
	spacer, clock := newTestSpacer()
	ctx := context.Background()

	if err := spacer.Wait(ctx, "content", 5*time.Second); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Fatalf("first call must not sleep, got %v", clock.slept)
	}

	clock.current = clock.current.Add(3 * time.Second)
	if err := spacer.Wait(ctx, "content", 5*time.Second); err != nil {
		t.Fatalf("second Wait failed: %v", err)
	}
	if len(clock.slept) != 1 || clock.slept[0] != 2*time.Second {
		t.Fatalf("expected a single 2s sleep, got %v", clock.slept)
	}
}

func TestWaitSkipsDelayAfterInterval(t *testing.T) {
	spacer, clock := newTestSpacer()
	ctx := context.Background()

	if err := spacer.Wait(ctx, "content", 5*time.Second); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}
	clock.current = clock.current.Add(7 * time.Second)
	if err := spacer.Wait(ctx, "content", 5*time.Second); err != nil {
		t.Fatalf("second Wait failed: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Fatalf("expected no sleeps once interval elapsed, got %v", clock.slept)
	}
}

func TestWaitIsPerProvider(t *testing.T) {
	spacer, clock := newTestSpacer()
	ctx := context.Background()

	if err := spacer.Wait(ctx, "content", 5*time.Second); err != nil {
		t.Fatalf("content Wait failed: %v", err)
	}
	if err := spacer.Wait(ctx, "speech", 5*time.Second); err != nil {
		t.Fatalf("speech Wait failed: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Fatalf("distinct providers must not delay each other, got %v", clock.slept)
	}
}

func TestWaitReservesSlotsForQueuedCallers(t *testing.T) {
	spacer, clock := newTestSpacer()
	ctx := context.Background()

	// Three immediate callers: the first sends now, the next two are
	// spaced one interval apart off the reservation chain.
	for i := 0; i < 3; i++ {
		if err := spacer.Wait(ctx, "avatar", 2*time.Second); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
	}
	if len(clock.slept) != 2 {
		t.Fatalf("expected two sleeps, got %v", clock.slept)
	}
	for i, d := range clock.slept {
		if d != 2*time.Second {
			t.Fatalf("sleep %d: expected 2s, got %s", i, d)
		}
	}
}

func TestWaitRollsBackCanceledReservation(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	canceled := false
	sleep := func(ctx context.Context, d time.Duration) error {
		if canceled {
			return context.Canceled
		}
		return clock.sleep(ctx, d)
	}
	spacer := spacing.NewSpacerWithClock(clock.now, sleep)
	ctx := context.Background()

	if err := spacer.Wait(ctx, "content", 5*time.Second); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	// A canceled waiter must give its slot back instead of pushing the
	// next caller out by another interval.
	canceled = true
	if err := spacer.Wait(ctx, "content", 5*time.Second); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	canceled = false
	clock.current = clock.current.Add(3 * time.Second)
	if err := spacer.Wait(ctx, "content", 5*time.Second); err != nil {
		t.Fatalf("third Wait failed: %v", err)
	}
	if len(clock.slept) != 1 || clock.slept[0] != 2*time.Second {
		t.Fatalf("expected a single 2s sleep off the original slot, got %v", clock.slept)
	}
}

func TestWaitZeroIntervalNeverBlocks(t *testing.T) {
	spacer, clock := newTestSpacer()
	for i := 0; i < 5; i++ {
		if err := spacer.Wait(context.Background(), "render", 0); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if len(clock.slept) != 0 {
		t.Fatalf("zero interval must not sleep, got %v", clock.slept)
	}
}
