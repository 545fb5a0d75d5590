package object

import "sync"

// registry is the process-wide "all objects" set the GC sweeps and the
// "roots" set it marks from. Both are guarded by the same
// mutex the interpreter's GIL also serialises against (see package thread);
// the registry itself stays independently lockable so package-level tests
// in this package don't need a scheduler.
var (
	registryMu sync.Mutex
	allObjects = map[Object]struct{}{}
	roots      = map[Object]struct{}{}

	allocCounter   int64
	allocThreshold int64 = 4096
	pendingCollect bool

	collectHook func()
)

// SetCollectHook installs the function CollectIfDue calls once Register has
// flagged that the allocation counter crossed allocThreshold. Installed once, by gc.Install,
// at process start; nil by default so tests that only exercise the object
// package don't need a collector wired up.
func SetCollectHook(f func()) {
	registryMu.Lock()
	defer registryMu.Unlock()
	collectHook = f
}

// SetGCThreshold configures how many allocations elapse between automatic
// collections. It is a tunable, not a correctness knob.
func SetGCThreshold(n int64) {
	registryMu.Lock()
	defer registryMu.Unlock()
	allocThreshold = n
}

// Register adds obj to the all-objects set and bumps the allocation
// counter, flagging a collection as due once the threshold is crossed.
// Static objects are never registered.
//
// Register never invokes the collection hook itself: obj is reachable only
// through the caller's local variable at this point, not through any frame
// stack or provided root, so collecting here would mark it unreached and
// sweep it out from under its own constructor. The due flag is instead
// picked up by CollectIfDue, which callers only invoke between bytecode
// instructions, after the previous instruction has rooted everything it
// built.
func Register(obj Object) {
	if obj.Hdr().static {
		return
	}
	registryMu.Lock()
	allObjects[obj] = struct{}{}
	allocCounter++
	if allocCounter >= allocThreshold {
		allocCounter = 0
		pendingCollect = true
	}
	registryMu.Unlock()
}

// CollectIfDue runs the installed collection hook if an allocation has
// crossed the threshold since the last collection, and otherwise does
// nothing. Callers must only invoke this between instructions, when every
// live value is already reachable through a frame's operand stack, locals,
// closure, or a provided root -- never from inside an allocator, where the
// object under construction has no root yet.
func CollectIfDue() {
	registryMu.Lock()
	due := pendingCollect
	pendingCollect = false
	hook := collectHook
	registryMu.Unlock()
	if due && hook != nil {
		hook()
	}
}

// Unregister removes obj from the all-objects set. Called only by the GC
// sweep phase after finalizing and billing it back to its group.
func Unregister(obj Object) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(allObjects, obj)
}

// rootProviders supplies additional roots the static "roots" set can't
// hold directly -- the interpreter's live frames (operand stack, locals,
// temp-root list), which aren't heap objects themselves. Package thread
// registers one provider per running goroutine's frame stack.
var rootProviders = map[string]func() []Object{}

// AddRootProvider installs a function returning a snapshot of additional
// live roots, keyed by id so it can later be removed. Called by package
// thread when a thread starts running and removed when it exits.
func AddRootProvider(id string, f func() []Object) {
	registryMu.Lock()
	defer registryMu.Unlock()
	rootProviders[id] = f
}

// RemoveRootProvider undoes AddRootProvider.
func RemoveRootProvider(id string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(rootProviders, id)
}

// ProvidedRoots returns the concatenation of every registered root
// provider's current snapshot, called by the collector alongside
// RootsSnapshot.
func ProvidedRoots() []Object {
	registryMu.Lock()
	providers := make([]func() []Object, 0, len(rootProviders))
	for _, f := range rootProviders {
		providers = append(providers, f)
	}
	registryMu.Unlock()
	var result []Object
	for _, f := range providers {
		result = append(result, f()...)
	}
	return result
}

// AddRoot marks obj as reachable regardless of what the machine stack holds.
// Adding the same root twice is a
// no-op; AddRoot/RemoveRoot calls must be balanced by the caller.
func AddRoot(obj Object) {
	if obj == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	roots[obj] = struct{}{}
}

// RemoveRoot undoes a single AddRoot.
func RemoveRoot(obj Object) {
	if obj == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(roots, obj)
}

// AllObjects returns a snapshot of every tracked (non-static) object. The
// snapshot is taken under the registry lock but iterated without it, which
// is safe because the GC only ever runs while the GIL is held -- no
// allocation can race a collection in progress.
func AllObjects() []Object {
	registryMu.Lock()
	defer registryMu.Unlock()
	result := make([]Object, 0, len(allObjects))
	for o := range allObjects {
		result = append(result, o)
	}
	return result
}

// RootsSnapshot returns every currently rooted object, including static
// singletons (callers add those once at startup via AddRoot as well).
func RootsSnapshot() []Object {
	registryMu.Lock()
	defer registryMu.Unlock()
	result := make([]Object, 0, len(roots))
	for o := range roots {
		result = append(result, o)
	}
	return result
}

// Count returns the number of tracked objects, used by tests.
func Count() int {
	registryMu.Lock()
	defer registryMu.Unlock()
	return len(allObjects)
}

// ClearMark, Mark, and IsMarked manipulate the GC mark bit. They live here,
// not in package gc, because Header.marked is unexported: only this package
// touches it directly, keeping the mark bit an implementation detail of the
// registry rather than part of the public Header API.
func ClearMark(obj Object) { obj.Hdr().marked = false }
func Mark(obj Object)      { obj.Hdr().marked = true }
func IsMarked(obj Object) bool {
	return obj.Hdr().marked
}
