package curvetest

import "sync/atomic"

// DefaultStart is the initial clock reading in seconds.
const DefaultStart uint64 = 1_571_797_419

// Clock is a manually advanced clock in whole seconds.
type Clock struct {
	now atomic.Uint64
}

// NewClock returns a clock reading start.
func NewClock(start uint64) *Clock {
	c := &Clock{}
	c.now.Store(start)
	return c
}

// Now returns the current reading.
func (c *Clock) Now() uint64 { return c.now.Load() }

// Advance moves the clock forward by seconds.
func (c *Clock) Advance(seconds uint64) { c.now.Add(seconds) }

// Set moves the clock to t.
func (c *Clock) Set(t uint64) { c.now.Store(t) }
