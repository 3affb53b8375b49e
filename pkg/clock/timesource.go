package clock

import (
	"sync"
	"time"
)

// TimeSource supplies the wall clock consumed by the scheduler.
type TimeSource interface {
	// WallClock returns the current hour, minute, and weekday, where
	// weekday is 0=Sunday .. 6=Saturday.
	WallClock() (hour, minute, weekday int)

	// Synchronized reports whether the wall clock has been set. Once
	// true it stays true until restart.
	Synchronized() bool
}

// ManualTimeSource is a TimeSource whose wall clock is set explicitly,
// either from the companion app's time-set request or from the host
// clock at boot. The wall clock is kept as an offset from the injected
// Clock, so it keeps advancing between sets.
type ManualTimeSource struct {
	mu     sync.Mutex
	clock  Clock
	loc    *time.Location
	offset time.Duration
	synced bool
}

// NewManualTimeSource creates an unsynchronized time source. A nil
// location defaults to UTC.
func NewManualTimeSource(clk Clock, loc *time.Location) *ManualTimeSource {
	if loc == nil {
		loc = time.UTC
	}
	return &ManualTimeSource{clock: clk, loc: loc}
}

// SetUnix sets the wall clock from a unix-seconds timestamp and marks
// the source synchronized.
func (ts *ManualTimeSource) SetUnix(timestamp int64) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.offset = time.Unix(timestamp, 0).Sub(ts.clock.Now())
	ts.synced = true
}

// TrustSystem marks the source synchronized without adjusting the
// offset, trusting the host clock as-is.
func (ts *ManualTimeSource) TrustSystem() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.synced = true
}

// Now returns the current wall-clock time in the configured location.
func (ts *ManualTimeSource) Now() time.Time {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.clock.Now().Add(ts.offset).In(ts.loc)
}

// WallClock implements TimeSource.
func (ts *ManualTimeSource) WallClock() (int, int, int) {
	now := ts.Now()
	return now.Hour(), now.Minute(), int(now.Weekday())
}

// Synchronized implements TimeSource.
func (ts *ManualTimeSource) Synchronized() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.synced
}
