// Package clock provides the wall clock used in production and a settable clock for tests.
package clock

import (
	"sync"
	"time"
)

// System reads the wall clock in a fixed location so that calendar dates
// (scheduled delivery days) follow the business timezone.
type System struct {
	Location *time.Location
}

func (c System) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Fixed is a manually advanced clock.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (c *Fixed) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fixed) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
