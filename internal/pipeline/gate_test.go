package pipeline

import "testing"

func TestGateSingleFlight(t *testing.T) {
	gate := &Gate{}
	if !gate.TryAcquire() {
		t.Fatal("expected first acquire to succeed")
	}
	if gate.TryAcquire() {
		t.Fatal("expected second acquire to fail while held")
	}
	gate.Release()
	if !gate.TryAcquire() {
		t.Fatal("expected acquire to succeed after release")
	}
}
