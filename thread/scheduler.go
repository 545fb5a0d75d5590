// Package thread implements the cooperative single-GIL scheduler: one
// thread runs interpreter or GC code at a time, threads
// yield the lock at a fixed instruction cadence, and generator-style
// producers park on YIELD until a consumer calls `next`. It is the only
// package that imports both object and interp, closing the dependency-
// inversion seams each of those installs (SetCurrentGroupFn,
// SetThreadInvoker, SetClosureInvoker's fallback context).
package thread

import (
	"sync"
	"sync/atomic"

	"github.com/rhelmot/objectively/interp"
	"github.com/rhelmot/objectively/object"
)

// gil is the single global interpreter lock: every thread's run loop holds
// it while executing bytecode or touching the object model, and releases it
// around YIELD parks, the next-protocol handoff, and host blocking calls.
var gil sync.Mutex

// current is the thread presently holding gil, or nil between handoffs.
// object.CheckGroupWrite and the cross-group guard read it indirectly via
// CurrentGroup.
var current atomic.Pointer[Thread]

// acquireGIL blocks until the lock is free, then marks t as the running
// thread and installs its context as interp's ambient fallback so closures
// invoked through object.Call (GET_ATTR/__eq__/__hash__ dispatch, nested
// CALL opcodes) reuse the same frame stack for GC rooting.
func acquireGIL(t *Thread) {
	gil.Lock()
	current.Store(t)
	interp.SetFallbackContext(t.ctx)
}

// releaseGIL is acquireGIL's inverse, called before any point where this
// thread stops being the one making progress: a YIELD park, the next-
// protocol wait, or a host blocking call.
func releaseGIL() {
	current.Store(nil)
	interp.SetFallbackContext(nil)
	gil.Unlock()
}

// CurrentGroup reports the thread group of whichever thread currently holds
// the GIL, or nil if none does. Installed as object's SetCurrentGroupFn.
func CurrentGroup() *object.Group {
	t := current.Load()
	if t == nil {
		return nil
	}
	return t.group
}

// WithReleasedGIL runs fn without holding the lock -- a scoped
// yield-while-doing wrapper: release, run callback, reacquire -- for host
// operations genuinely outside interpreter control (blocking I/O, sleeps).
// The caller must already hold the lock via a running thread.
func WithReleasedGIL(fn func() error) error {
	t := current.Load()
	if t == nil {
		return object.NewRuntimeErrorf("WithReleasedGIL called without a running thread")
	}
	releaseGIL()
	err := fn()
	acquireGIL(t)
	return err
}

// Install wires this package's scheduler into the object model's hook
// seams. Called once, by cmd/objectively's startup sequence, after
// package builtin's Install so thread/group methods and the arithmetic
// dunders both exist before any bytecode runs.
func Install() {
	object.SetCurrentGroupFn(CurrentGroup)
	object.SetThreadInvoker(next)
	installGroupMethods()
}
