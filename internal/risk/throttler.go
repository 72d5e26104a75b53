package risk

import (
	"time"

	"tradecore/internal/clock"
)

// Throttler is a sliding-window rate gate: at most limit sends within any
// window. Timestamps of recent sends are kept in a deque and expired lazily.
type Throttler struct {
	limit  int
	window time.Duration
	clock  clock.Clock

	stamps  []int64
	sent    uint64
	dropped uint64
}

// NewThrottler creates a throttler allowing limit sends per window. A zero
// limit or window disables the gate.
func NewThrottler(limit int, window time.Duration, cl clock.Clock) *Throttler {
	return &Throttler{limit: limit, window: window, clock: cl}
}

// Allow records a send attempt and reports whether it is within the rate.
func (t *Throttler) Allow() bool {
	if t.limit <= 0 || t.window <= 0 {
		t.sent++
		return true
	}
	now := t.clock.TimestampNs()
	t.expire(now)
	if len(t.stamps) >= t.limit {
		t.dropped++
		return false
	}
	t.stamps = append(t.stamps, now)
	t.sent++
	return true
}

func (t *Throttler) expire(nowNs int64) {
	cutoff := nowNs - int64(t.window)
	i := 0
	for i < len(t.stamps) && t.stamps[i] <= cutoff {
		i++
	}
	if i > 0 {
		t.stamps = append(t.stamps[:0], t.stamps[i:]...)
	}
}

// Used returns how many sends currently count against the window.
func (t *Throttler) Used() int {
	t.expire(t.clock.TimestampNs())
	return len(t.stamps)
}

// SentCount returns the total allowed sends.
func (t *Throttler) SentCount() uint64 { return t.sent }

// DroppedCount returns the total throttled sends.
func (t *Throttler) DroppedCount() uint64 { return t.dropped }
