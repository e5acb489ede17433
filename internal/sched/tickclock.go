// internal/sched/tickclock.go

package sched

import "sync/atomic"

// TickClock is the scheduler's logical clock. Each time a task becomes ready
// it is stamped with a fresh tick; among equal priorities the older stamp
// runs first.
type TickClock struct {
	count atomic.Uint64
}

// Tick advances the clock and returns the new value.
func (c *TickClock) Tick() uint64 {
	return c.count.Add(1)
}

// Count returns the current tick without advancing.
func (c *TickClock) Count() uint64 {
	return c.count.Load()
}

// Reset puts the clock back to zero.
func (c *TickClock) Reset() {
	c.count.Store(0)
}
