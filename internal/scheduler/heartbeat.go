package scheduler

import (
	"sync/atomic"
	"time"
)

// Heartbeat records the time of the last fetch attempt or completed cycle.
// It is written from the scheduler goroutine and read by the watchdog.
type Heartbeat struct {
	last atomic.Int64
}

func NewHeartbeat() *Heartbeat {
	return &Heartbeat{}
}

func (h *Heartbeat) Beat(at time.Time) {
	h.last.Store(at.UnixNano())
}

// Last returns the zero time until the first beat.
func (h *Heartbeat) Last() time.Time {
	nanos := h.last.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}
