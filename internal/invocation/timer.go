package invocation

import "time"

// Clock returns the current time. time.Now in production.
type Clock func() time.Time

// Timer records when a transfer started and ended.
// Start and Stop only take effect the first time they are called.
type Timer struct {
	clock Clock
	start time.Time
	end   time.Time
}

// NewTimer creates a Timer reading from clock, or time.Now when clock is nil.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = time.Now
	}
	return &Timer{clock: clock}
}

// Start records the start time.
func (t *Timer) Start() time.Time {
	if t.start.IsZero() {
		t.start = t.clock()
	}
	return t.start
}

// Stop records the end time. Stopping a timer that was never started
// starts it at the same instant, giving a zero duration.
func (t *Timer) Stop() time.Time {
	if t.end.IsZero() {
		t.end = t.clock()
		if t.start.IsZero() {
			t.start = t.end
		}
	}
	return t.end
}

// Started returns the recorded start time.
func (t *Timer) Started() time.Time {
	return t.start
}

// Stopped returns the recorded end time.
func (t *Timer) Stopped() time.Time {
	return t.end
}

// Duration returns the elapsed time between Start and Stop, or zero if the
// timer has not been stopped.
func (t *Timer) Duration() time.Duration {
	if t.end.IsZero() {
		return 0
	}
	return t.end.Sub(t.start)
}
