package polling_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lessonforge/internal/polling"
	"lessonforge/internal/services"
)

type transientError struct{ msg string }

func (e *transientError) Error() string   { return e.msg }
func (e *transientError) Retryable() bool { return true }

func recordSleeps(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func avatarSchedule() polling.Schedule {
	return polling.Schedule{
		Interval:    5 * time.Second,
		Growth:      1.2,
		GrowthEvery: 3,
		MaxInterval: 20 * time.Second,
		MaxAttempts: 40,
	}
}

func renderSchedule() polling.Schedule {
	return polling.Schedule{
		Interval:       10 * time.Second,
		MaxAttempts:    120,
		InitialWait:    10 * time.Second,
		TransientDelay: 15 * time.Second,
	}
}

func TestIntervalGrowsEveryNAttempts(t *testing.T) {
	sched := avatarSchedule()
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 5 * time.Second},
		{3, 5 * time.Second},
		{4, 6 * time.Second},
		{6, 6 * time.Second},
		{7, 7200 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := sched.IntervalFor(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: expected %s, got %s", tc.attempt, tc.want, got)
		}
	}
	// Far enough out the interval pins at the cap.
	if got := sched.IntervalFor(40); got != 20*time.Second {
		t.Fatalf("attempt 40: expected cap 20s, got %s", got)
	}
}

func TestIntervalFixedWithoutGrowth(t *testing.T) {
	sched := renderSchedule()
	for _, attempt := range []int{1, 50, 120} {
		if got := sched.IntervalFor(attempt); got != 10*time.Second {
			t.Fatalf("attempt %d: expected fixed 10s, got %s", attempt, got)
		}
	}
}

func TestWaitForCompletionReturnsFinalStatus(t *testing.T) {
	var delays []time.Duration
	sched := avatarSchedule().WithSleeper(recordSleeps(&delays))

	checks := 0
	status, err := sched.WaitForCompletion(context.Background(), func(_ context.Context, attempt int) (polling.Status, error) {
		checks++
		if attempt < 4 {
			return polling.Status{State: polling.StatePending, Progress: float64(attempt) * 0.2}, nil
		}
		return polling.Status{State: polling.StateComplete, ResultURL: "https://cdn.example/avatar.mp4"}, nil
	})
	if err != nil {
		t.Fatalf("WaitForCompletion failed: %v", err)
	}
	if checks != 4 {
		t.Fatalf("expected 4 checks, got %d", checks)
	}
	if status.ResultURL != "https://cdn.example/avatar.mp4" {
		t.Fatalf("expected final status payload, got %#v", status)
	}
	if len(delays) != 3 {
		t.Fatalf("expected 3 sleeps between checks, got %v", delays)
	}
}

func TestWaitForCompletionTimesOut(t *testing.T) {
	var delays []time.Duration
	sched := polling.Schedule{Interval: time.Second, MaxAttempts: 5}.WithSleeper(recordSleeps(&delays))

	checks := 0
	_, err := sched.WaitForCompletion(context.Background(), func(context.Context, int) (polling.Status, error) {
		checks++
		return polling.Status{State: polling.StatePending}, nil
	})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if checks != 5 {
		t.Fatalf("expected 5 checks, got %d", checks)
	}
	if len(delays) != 4 {
		t.Fatalf("expected 4 sleeps, got %v", delays)
	}
}

func TestWaitForCompletionNotFoundIsTerminal(t *testing.T) {
	sched := polling.Schedule{Interval: time.Second, MaxAttempts: 10}.WithSleeper(func(context.Context, time.Duration) error {
		t.Fatal("not_found must not schedule another check")
		return nil
	})

	_, err := sched.WaitForCompletion(context.Background(), func(context.Context, int) (polling.Status, error) {
		return polling.Status{State: polling.StateNotFound}, nil
	})
	if !errors.Is(err, services.ErrJobNotFound) {
		t.Fatalf("expected job-not-found error, got %v", err)
	}
}

func TestWaitForCompletionFailureIsTerminal(t *testing.T) {
	sched := polling.Schedule{Interval: time.Second, MaxAttempts: 10}.WithSleeper(func(context.Context, time.Duration) error {
		return nil
	})

	_, err := sched.WaitForCompletion(context.Background(), func(context.Context, int) (polling.Status, error) {
		return polling.Status{State: polling.StateFailed, Detail: "compositor crashed"}, nil
	})
	if err == nil || errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected failure error, got %v", err)
	}
	if !strings.Contains(err.Error(), "compositor crashed") {
		t.Fatalf("expected failure detail in error, got %v", err)
	}
}

func TestWaitForCompletionTransientErrorsDelay(t *testing.T) {
	var delays []time.Duration
	sched := renderSchedule().WithSleeper(recordSleeps(&delays))

	checks := 0
	status, err := sched.WaitForCompletion(context.Background(), func(_ context.Context, attempt int) (polling.Status, error) {
		checks++
		switch attempt {
		case 1:
			return polling.Status{State: polling.StatePending}, nil
		case 2:
			return polling.Status{}, &transientError{msg: "status endpoint hiccup"}
		default:
			return polling.Status{State: polling.StateComplete, ResultURL: "https://cdn.example/final.mp4"}, nil
		}
	})
	if err != nil {
		t.Fatalf("WaitForCompletion failed: %v", err)
	}
	if checks != 3 {
		t.Fatalf("expected 3 checks, got %d", checks)
	}
	if status.ResultURL == "" {
		t.Fatal("expected final status payload to survive the transient error")
	}
	// initial wait, regular interval, then the transient backoff.
	want := []time.Duration{10 * time.Second, 10 * time.Second, 15 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), delays)
	}
	for i, d := range want {
		if delays[i] != d {
			t.Fatalf("sleep %d: expected %s, got %s", i, d, delays[i])
		}
	}
}

func TestWaitForCompletionFatalErrorAborts(t *testing.T) {
	sched := renderSchedule().WithSleeper(func(context.Context, time.Duration) error { return nil })

	fatal := errors.New("credentials rejected")
	checks := 0
	_, err := sched.WaitForCompletion(context.Background(), func(context.Context, int) (polling.Status, error) {
		checks++
		return polling.Status{}, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if checks != 1 {
		t.Fatalf("expected single check, got %d", checks)
	}
}
