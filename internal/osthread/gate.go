// Package osthread provides the blocking primitives the scheduler needs from
// the platform: a per-task gate and a joinable task thread.
package osthread

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate is a binary permit. A thread blocks on Wait until some other thread
// calls Open. An Open that happens first is remembered, so the order of the
// two calls does not matter.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate returns a closed gate.
func NewGate() *Gate {
	sem := semaphore.NewWeighted(1)
	// fresh semaphore, cannot fail
	sem.TryAcquire(1)
	return &Gate{sem: sem}
}

// Wait blocks until the gate is opened and closes it again.
func (g *Gate) Wait() {
	// Acquire only fails when the context is done.
	_ = g.sem.Acquire(context.Background(), 1)
}

// Open lets one Wait through. Opening an already open gate panics.
func (g *Gate) Open() {
	g.sem.Release(1)
}
