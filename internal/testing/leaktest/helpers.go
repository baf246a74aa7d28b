// Package leaktest verifies that components with background goroutines,
// the outbox dispatcher and its worker pool in particular, shut down
// without leaving anything running.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const (
	settleDelay  = 10 * time.Millisecond
	pollInterval = 10 * time.Millisecond
	gracePeriod  = 500 * time.Millisecond
)

// GoroutineChecker snapshots the goroutine count at construction and
// compares against it later.
type GoroutineChecker struct {
	t        testing.TB
	baseline int
}

func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()

	runtime.Gosched()
	time.Sleep(settleDelay)

	return &GoroutineChecker{t: t, baseline: runtime.NumGoroutine()}
}

// Check fails the test if more than tolerance goroutines outlive the
// baseline. Shutdown is asynchronous, so the count is polled for a
// grace period before a leak is declared.
func (c *GoroutineChecker) Check(tolerance int) {
	c.t.Helper()

	deadline := time.Now().Add(gracePeriod)
	leaked := runtime.NumGoroutine() - c.baseline
	for leaked > tolerance && time.Now().Before(deadline) {
		runtime.Gosched()
		time.Sleep(pollInterval)
		leaked = runtime.NumGoroutine() - c.baseline
	}

	if leaked > tolerance {
		c.t.Errorf("goroutine leak: baseline=%d now=%d leaked=%d tolerance=%d",
			c.baseline, c.baseline+leaked, leaked, tolerance)
	}
}

// CheckAfter runs fn and fails the test if it leaves goroutines behind.
func CheckAfter(t *testing.T, fn func()) {
	t.Helper()

	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}
