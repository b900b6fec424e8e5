package pipeline

import "sync"

// Gate is the process-wide admission control: at most one stage, across all
// projects, runs at a time. There is no queue and no fairness; callers that
// lose simply try again later.
type Gate struct {
	mu   sync.Mutex
	held bool
}

// TryAcquire claims the gate. Returns false when another stage holds it.
func (g *Gate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return false
	}
	g.held = true
	return true
}

// Release frees the gate for the next caller.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}
