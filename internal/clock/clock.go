package clock

import (
	"sort"
	"time"
)

// Clock supplies timestamps and named one-shot time alerts. The test clock
// drives deterministic backtests; the real clock drives live nodes.
type Clock interface {
	Now() time.Time
	TimestampNs() int64
	SetTimeAlert(name string, alertNs int64, fn func(name string, tsNs int64))
	CancelTimer(name string)
}

// RealClock reads the wall clock. Alerts fire from a time.AfterFunc.
type RealClock struct {
	timers map[string]*time.Timer
}

// NewRealClock creates a wall clock.
func NewRealClock() *RealClock {
	return &RealClock{timers: make(map[string]*time.Timer)}
}

func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

func (c *RealClock) TimestampNs() int64 {
	return time.Now().UTC().UnixNano()
}

func (c *RealClock) SetTimeAlert(name string, alertNs int64, fn func(string, int64)) {
	c.CancelTimer(name)
	delay := time.Duration(alertNs - c.TimestampNs())
	if delay < 0 {
		delay = 0
	}
	c.timers[name] = time.AfterFunc(delay, func() { fn(name, alertNs) })
}

func (c *RealClock) CancelTimer(name string) {
	if t, ok := c.timers[name]; ok {
		t.Stop()
		delete(c.timers, name)
	}
}

type alert struct {
	name    string
	alertNs int64
	fn      func(string, int64)
}

// TestClock is a manually advanced clock. Advancing time fires due alerts
// in timestamp order, each observed at its own alert time.
type TestClock struct {
	timeNs int64
	alerts []alert
}

// NewTestClock creates a test clock at the given epoch nanoseconds.
func NewTestClock(startNs int64) *TestClock {
	return &TestClock{timeNs: startNs}
}

func (c *TestClock) Now() time.Time {
	return time.Unix(0, c.timeNs).UTC()
}

func (c *TestClock) TimestampNs() int64 {
	return c.timeNs
}

// SetTimeNs moves the clock without firing alerts.
func (c *TestClock) SetTimeNs(tsNs int64) {
	c.timeNs = tsNs
}

func (c *TestClock) SetTimeAlert(name string, alertNs int64, fn func(string, int64)) {
	c.CancelTimer(name)
	c.alerts = append(c.alerts, alert{name: name, alertNs: alertNs, fn: fn})
}

func (c *TestClock) CancelTimer(name string) {
	for i, a := range c.alerts {
		if a.name == name {
			c.alerts = append(c.alerts[:i], c.alerts[i+1:]...)
			return
		}
	}
}

// AdvanceTimeNs moves the clock forward, firing every alert due at or
// before the target time.
func (c *TestClock) AdvanceTimeNs(toNs int64) {
	if toNs < c.timeNs {
		return
	}
	var due []alert
	remaining := c.alerts[:0]
	for _, a := range c.alerts {
		if a.alertNs <= toNs {
			due = append(due, a)
		} else {
			remaining = append(remaining, a)
		}
	}
	c.alerts = remaining
	sort.SliceStable(due, func(i, j int) bool { return due[i].alertNs < due[j].alertNs })
	for _, a := range due {
		if a.alertNs > c.timeNs {
			c.timeNs = a.alertNs
		}
		a.fn(a.name, a.alertNs)
	}
	c.timeNs = toNs
}

// TimerCount returns the number of pending alerts.
func (c *TestClock) TimerCount() int {
	return len(c.alerts)
}
