package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Timer is the subset of time.Timer the session guard relies on, so tests can
// substitute a fake that never fires (or fires on demand).
type Timer interface {
	Stop() bool
}

// AfterFuncFunc schedules f after d. Override in tests to capture the
// callback instead of waiting for real time to pass.
var AfterFuncFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// AfterFunc is a thin wrapper around AfterFuncFunc.
func AfterFunc(d time.Duration, f func()) Timer { return AfterFuncFunc(d, f) }
