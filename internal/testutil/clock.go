package testutil

import (
	"sync"
	"time"
)

// DefaultClockBase is the first instant returned by a DeterministicClock
// created with a zero base.
var DefaultClockBase = time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

// DeterministicClock is a fake wall clock for golden tests.
//
// Each call to Now returns base + n*step, where n counts previous calls.
// A zero step freezes the clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	base  time.Time
	step  time.Duration
	calls int64
}

// NewDeterministicClock creates a clock starting at base. A zero base means
// DefaultClockBase.
func NewDeterministicClock(base time.Time, step time.Duration) *DeterministicClock {
	if base.IsZero() {
		base = DefaultClockBase
	}
	return &DeterministicClock{base: base, step: step}
}

// Now returns the current fake time and advances the clock by one step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Calls returns how many times Now has been called.
func (c *DeterministicClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock to its base.
//
// Used for test reuse. After Reset(), the next call to Now() returns base.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
