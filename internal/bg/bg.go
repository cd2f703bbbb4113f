// Package bg decides whether kiosk work runs on its own goroutine or inline.
package bg

// Runner executes fn, either inline or in the background.
type Runner interface {
	Do(fn func())
}

// Async runs each function on a new goroutine.
type Async struct{}

// Do starts fn and returns immediately.
func (Async) Do(fn func()) {
	go fn()
}

// Sync runs each function on the caller's goroutine. Tests use it to keep the
// scan loop deterministic.
type Sync struct{}

func (Sync) Do(fn func()) {
	fn()
}
