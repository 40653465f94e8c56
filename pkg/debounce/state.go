package debounce

import "time"

// State is the phase of a debouncer.
type State int

const (
	// Idle means no timer is armed.
	Idle State = iota
	// Pending means a timer is armed for the current burst.
	Pending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	}
	return "unknown"
}

// machine holds the timing decisions of a debouncer, free of timers and
// locks.
type machine struct {
	state     State
	wait      time.Duration
	immediate bool
	last      time.Time
}

// call records a call at now. It reports whether the function runs
// synchronously and whether a timer must be armed for wait.
func (m *machine) call(now time.Time) (invokeNow, arm bool) {
	m.last = now
	if m.state == Pending {
		return false, false
	}
	m.state = Pending
	return m.immediate, true
}

// fire handles timer expiry at now. A positive rearm asks for a new timer
// of that length; otherwise the machine is Idle again and invoke reports
// whether the trailing call runs.
func (m *machine) fire(now time.Time) (rearm time.Duration, invoke bool) {
	elapsed := now.Sub(m.last)
	if elapsed < m.wait && elapsed >= 0 {
		return m.wait - elapsed, false
	}
	m.state = Idle
	return 0, !m.immediate
}
