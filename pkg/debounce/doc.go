// Package debounce coalesces bursts of calls into a single invocation.
//
// A [Debouncer] wraps a function and a quiet period. The first call of a
// burst arms a timer; later calls only record their arguments and the time
// they happened. When the timer fires it checks how long ago the most recent
// call was: if that is less than the quiet period it re-arms for the
// remainder, otherwise the burst is over and the wrapped function runs once
// with the arguments of the last call (trailing edge).
//
// With immediate set the function instead runs synchronously on the first
// call of a burst (leading edge) and the trailing invocation is skipped.
//
// Call always returns the most recent result available at the time of the
// call. In trailing mode that is the result of the previous burst, or the
// zero value before the first invocation completes.
//
// # State machine
//
// Each debouncer is either Idle or Pending:
//
//	Idle    --call-->            Pending  (arm timer; run now if immediate)
//	Pending --call-->            Pending  (record args and time)
//	Pending --fire, quiet < wait--> Pending  (re-arm for the remainder)
//	Pending --fire, quiet >= wait--> Idle  (run with last args unless immediate)
//
// There is no flush or cancel operation.
//
// # Concurrency
//
// A Debouncer may be called from multiple goroutines; timers fire on their
// own goroutine. The wrapped function is never called while the internal
// lock is held, so it may call back into the debouncer.
package debounce
