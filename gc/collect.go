// Package gc implements the tracing mark-sweep collector over the object
// package's registry: a four-phase pass (clear marks, mark from roots,
// finalize the unreached, sweep the unreached), driven by the
// allocation-count heuristic object.Register flags and object.CollectIfDue
// fires, from the scheduler's between-instructions probe.
package gc

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rhelmot/objectively/object"
)

var (
	installOnce sync.Once
	collectMu   sync.Mutex

	collections  uint64
	lastReleased uint64
)

// Install wires this package's Collect as object's allocation-triggered
// collector. Safe to call more than once; only the first call takes effect.
func Install() {
	installOnce.Do(func() {
		object.SetCollectHook(func() { Collect() })
	})
}

// Collect runs one full mark-sweep pass: clear every mark bit, depth-first
// mark everything reachable from the roots set via each object's Trace,
// finalize everything left unmarked, then sweep (release its quota and drop
// it from the registry). Safe to call concurrently with itself (serialized
// internally) but callers running a cooperative scheduler must still only
// invoke it while holding the single GIL -- Collect does not itself
// coordinate with running threads.
func Collect() {
	collectMu.Lock()
	defer collectMu.Unlock()

	all := object.AllObjects()
	for _, o := range all {
		object.ClearMark(o)
	}

	var stack []object.Object
	roots := append(object.RootsSnapshot(), object.ProvidedRoots()...)
	for _, r := range roots {
		if r != nil && !object.IsMarked(r) {
			object.Mark(r)
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		object.Trace(o, func(child object.Object) bool {
			if child != nil && !object.IsMarked(child) {
				object.Mark(child)
				stack = append(stack, child)
			}
			return true
		})
	}

	var unreached []object.Object
	for _, o := range all {
		if !object.IsMarked(o) {
			unreached = append(unreached, o)
		}
	}

	// Sizes are taken before finalizing: Finalize empties list, dict and
	// bytearray storage, which would shrink SizeOf below the billed amount.
	sizes := make([]uintptr, len(unreached))
	for i, o := range unreached {
		sizes[i] = object.SizeOf(o)
	}
	for _, o := range unreached {
		object.Finalize(o)
	}

	var released uintptr
	for i, o := range unreached {
		size := sizes[i]
		if g := o.Hdr().Group; g != nil {
			g.Release(size)
		}
		released += size
		object.Unregister(o)
	}

	atomic.AddUint64(&collections, 1)
	atomic.AddUint64(&lastReleased, uint64(released))

	if writer := activeWriter(); writer != nil {
		if err := writer.record(all, unreached); err != nil {
			// A census-write failure never aborts collection: the sweep has
			// already happened by the time we'd notice.
			_ = errors.WithStack(err)
		}
	}
}

// Stats reports cumulative collector activity: the number of collections
// run and the total bytes released across all of them.
func Stats() (collections uint64, lastReleasedBytes uint64) {
	return atomic.LoadUint64(&collections), atomic.LoadUint64(&lastReleased)
}
