package engine

import "sync/atomic"

// Clock is the monotonic logical tick counter for a registry.
//
// Every FlushAll advances the clock by one, and all descriptors and flush
// records produced in that flush carry the resulting tick. Ordering is
// always by tick, never by wall-clock time, so traces replay identically.
//
// Thread-safety: Clock is safe for concurrent reads (atomic operations),
// though the registry's single-writer design means only FlushAll calls Next().
type Clock struct {
	tick atomic.Uint64
}

// NewClock creates a clock starting at 0.
// Tick 0 means "before the first flush".
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific tick.
// Used when resuming a recorded run in tooling.
func NewClockAt(start uint64) *Clock {
	c := &Clock{}
	c.tick.Store(start)
	return c
}

// Next advances the clock and returns the new tick.
func (c *Clock) Next() uint64 {
	return c.tick.Add(1)
}

// Current returns the current tick without advancing.
func (c *Clock) Current() uint64 {
	return c.tick.Load()
}
