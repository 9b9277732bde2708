package tripsync

import (
	"sync"
	"time"
)

// IDSource hands out ids for new trips.
type IDSource interface {
	NextID() int64
}

// ClockIDs derives ids from the wall clock in milliseconds and never
// returns the same or a smaller id twice.
type ClockIDs struct {
	now func() time.Time

	mu   sync.Mutex
	last int64
}

// NewClockIDs returns a ClockIDs reading time.Now.
func NewClockIDs() *ClockIDs {
	return &ClockIDs{now: time.Now}
}

func (c *ClockIDs) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}
