package ledger

import (
	"sync"
	"time"
)

// Clock supplies append timestamps.
type Clock interface {
	Now() time.Time
}

// MonotonicClock never goes backwards within a process, even if the wall
// clock does. Readings are UTC and truncated to microseconds, the finest
// precision every supported database keeps.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{now: time.Now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
