// Package guard implements the invariant-violation policy: fail loudly while
// developing, degrade to a logged no-op in production so one bad frame never
// tears down the session.
package guard

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// Enabled panics on violations when true. Tests and dev builds flip it on;
// production leaves it off.
var Enabled atomic.Bool

var fallback = log.New(os.Stderr, "[guard] ", log.LstdFlags)

func init() {
	if os.Getenv("EMBERVEIL_GUARD") == "1" {
		Enabled.Store(true)
	}
}

// Failf records an invariant violation. Returns false so call sites can
// `return guard.Failf(...)` out of boolean entry points.
func Failf(format string, args ...any) bool {
	msg := fmt.Sprintf(format, args...)
	if Enabled.Load() {
		panic("invariant violation: " + msg)
	}
	fallback.Printf("invariant violation: %s", msg)
	return false
}

// Check is a convenience wrapper: a false condition is a violation.
func Check(cond bool, format string, args ...any) bool {
	if cond {
		return true
	}
	Failf(format, args...)
	return false
}
