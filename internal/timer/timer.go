// Package timer implements the run/pause state machine that accumulates
// elapsed review time.
package timer

import "time"

// State represents the current timer mode.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// Timer accumulates running time across any number of start/stop cycles.
// It is not safe for concurrent use; the owning session serializes access.
type Timer struct {
	state       State
	accumulated time.Duration
	// resumeEpoch is non-zero exactly while state == StateRunning.
	resumeEpoch time.Time
}

// New returns an idle timer with nothing accumulated.
func New() *Timer {
	return &Timer{state: StateIdle}
}

// State reports the current mode.
func (t *Timer) State() State {
	return t.state
}

// Running reports whether the timer is accumulating.
func (t *Timer) Running() bool {
	return t.state == StateRunning
}

// Start moves Idle or Stopped to Running. It reports false and changes
// nothing when the timer is already running.
func (t *Timer) Start(now time.Time) bool {
	if t.state == StateRunning {
		return false
	}
	t.state = StateRunning
	t.resumeEpoch = now
	return true
}

// Stop folds the current running interval into the accumulated total and
// moves to Stopped. It reports false when the timer is not running.
func (t *Timer) Stop(now time.Time) bool {
	if t.state != StateRunning {
		return false
	}
	t.accumulated += interval(t.resumeEpoch, now)
	t.resumeEpoch = time.Time{}
	t.state = StateStopped
	return true
}

// Reset returns the timer to Idle with zero accumulated time. A running
// timer cannot be reset; Reset then reports false and changes nothing.
func (t *Timer) Reset() bool {
	if t.state == StateRunning {
		return false
	}
	t.state = StateIdle
	t.accumulated = 0
	t.resumeEpoch = time.Time{}
	return true
}

// Elapsed returns total running time as of now without mutating the timer.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	if t.state != StateRunning {
		return t.accumulated
	}
	return t.accumulated + interval(t.resumeEpoch, now)
}

// interval is to.Sub(from), clamped at zero for clocks that step backwards.
func interval(from, to time.Time) time.Duration {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return d
}
