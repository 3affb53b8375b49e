package clock

import (
	"sync"
	"time"
)

// Clock abstracts time reads so the scheduler's minute gate can be
// driven deterministically in tests. Production code injects Real().
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Real returns a Clock backed by the system clock.
func Real() Clock { return realClock{} }

// FakeClock is a deterministic Clock for tests. Time stands still until
// Advance or Set is called. Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// Fake returns a FakeClock initialized to the given time.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set jumps the fake time to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
