package debounce

import (
	"sync"
	"time"
)

// Option configures a [Debouncer].
type Option func(*config)

type config struct {
	clock Clock
}

// WithClock schedules against c instead of the wall clock.
func WithClock(c Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// Debouncer wraps fn so that bursts of calls collapse into one invocation.
// The zero value is not usable; create one with [New].
type Debouncer[A, R any] struct {
	fn    func(A) R
	clock Clock

	mu      sync.Mutex
	m       machine
	args    A
	hasArgs bool
	result  R
}

// New returns a debouncer for fn with the given quiet period. With
// immediate set, fn runs on the leading edge of each burst instead of the
// trailing edge.
func New[A, R any](fn func(A) R, wait time.Duration, immediate bool, opts ...Option) *Debouncer[A, R] {
	cfg := config{clock: RealClock()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Debouncer[A, R]{
		fn:    fn,
		clock: cfg.clock,
		m:     machine{wait: wait, immediate: immediate},
	}
}

// Func debounces a function without arguments or result.
func Func(fn func(), wait time.Duration, immediate bool, opts ...Option) func() {
	d := New(func(struct{}) struct{} {
		fn()
		return struct{}{}
	}, wait, immediate, opts...)
	return func() { d.Call(struct{}{}) }
}

// Call records a call with args and returns the latest known result.
func (d *Debouncer[A, R]) Call(args A) R {
	d.mu.Lock()
	d.args, d.hasArgs = args, true
	invokeNow, arm := d.m.call(d.clock.Now())
	if arm {
		d.clock.AfterFunc(d.m.wait, d.fire)
	}
	if !invokeNow {
		r := d.result
		d.mu.Unlock()
		return r
	}
	d.clearArgs()
	d.mu.Unlock()

	r := d.fn(args)

	d.mu.Lock()
	d.result = r
	d.mu.Unlock()
	return r
}

// State reports whether a burst is in progress.
func (d *Debouncer[A, R]) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.m.state
}

// Result returns the most recent result without recording a call.
func (d *Debouncer[A, R]) Result() R {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result
}

func (d *Debouncer[A, R]) fire() {
	d.mu.Lock()
	rearm, invoke := d.m.fire(d.clock.Now())
	if rearm > 0 {
		d.clock.AfterFunc(rearm, d.fire)
		d.mu.Unlock()
		return
	}
	if !invoke || !d.hasArgs {
		d.mu.Unlock()
		return
	}
	args := d.args
	d.mu.Unlock()

	r := d.fn(args)

	d.mu.Lock()
	d.result = r
	if d.m.state == Idle {
		d.clearArgs()
	}
	d.mu.Unlock()
}

func (d *Debouncer[A, R]) clearArgs() {
	var zero A
	d.args, d.hasArgs = zero, false
}
