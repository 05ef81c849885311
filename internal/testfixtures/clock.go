package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manual time source. It starts at ReferenceTime unless told
// otherwise and only moves when a test advances it or something sleeps on it.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	pauses []time.Duration
}

func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc returns time.Now for a nil clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Advance moves the clock forward and reports the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Sleep records the pause and advances the clock instead of blocking.
// It matches the pacing hook taken by the reminder sender.
func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.pauses = append(c.pauses, d)
	c.mu.Unlock()
	c.Advance(d)
}

// Pauses lists every duration passed to Sleep.
func (c *Clock) Pauses() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.pauses...)
}

// MinutesBefore parks the clock the given number of minutes ahead of start,
// which is how tests place "now" inside or outside a reminder window.
func (c *Clock) MinutesBefore(start time.Time, minutes int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = start.Add(-time.Duration(minutes) * time.Minute)
	return c.now
}
