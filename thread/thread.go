package thread

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rhelmot/objectively/interp"
	"github.com/rhelmot/objectively/object"
)

// State is one of the four thread states a Thread can be in.
type State int32

const (
	Running State = iota
	Yielded
	Returned
	Excepted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Yielded:
		return "yielded"
	case Returned:
		return "returned"
	case Excepted:
		return "excepted"
	}
	return "unknown"
}

// reportKind tags what a producer thread's run loop handed back to whoever
// is waiting on it via the next-protocol.
type reportKind int

const (
	reportYielded reportKind = iota
	reportReturned
	reportExcepted
)

type report struct {
	kind  reportKind
	value object.Object
	err   error
}

// Thread is the scheduler-side state for one interpreter thread: its
// group, its interp.Context (carrying the live frame stack GC roots come
// from), and the generator-protocol plumbing `next` drives.
type Thread struct {
	id      string
	group   *object.Group
	closure *object.Closure
	args    *object.Tuple
	handle  *object.ThreadHandle
	ctx     *interp.Context

	mu       sync.Mutex
	state    State
	result   object.Object
	err      error
	injected   *object.Exception
	instrCount uint64

	reportCh chan report
	resumeCh chan struct{}
}

var (
	registryMu sync.Mutex
	registry   = map[string]*Thread{}
)

func newThread(group *object.Group, closure *object.Closure, args *object.Tuple) (*Thread, error) {
	id := uuid.NewString()
	handle, err := object.NewThreadHandle(group, id)
	if err != nil {
		return nil, err
	}
	t := &Thread{
		id:       id,
		group:    group,
		closure:  closure,
		args:     args,
		handle:   handle,
		reportCh: make(chan report),
		resumeCh: make(chan struct{}),
	}
	t.ctx = &interp.Context{
		Group: group,
		Probe: t,
		Spawn: spawnAdapter,
		Yield: t.yield,
	}
	registryMu.Lock()
	registry[id] = t
	registryMu.Unlock()
	object.AddRootProvider(id, t.roots)
	return t, nil
}

func threadByHandle(self object.Object) (*Thread, error) {
	h, ok := self.(*object.ThreadHandle)
	if !ok {
		return nil, object.NewTypeErrorf("expected a thread handle, got %s", object.KindName(self))
	}
	registryMu.Lock()
	t, ok := registry[h.ID]
	registryMu.Unlock()
	if !ok {
		return nil, object.NewRuntimeErrorf("thread %s no longer tracked", h.ID)
	}
	return t, nil
}

// roots returns every object this thread keeps alive independent of its
// own frame stack: closure/args (covered before the first instruction
// runs), the handle (so a still-referenced generator survives), and any
// yielded-or-returned value waiting to be picked up by a next() call, which
// would otherwise have no root once the producer's own frame stack is gone.
func (t *Thread) roots() []object.Object {
	result := t.ctx.Roots()
	if t.closure != nil {
		result = append(result, t.closure)
	}
	if t.args != nil {
		result = append(result, t.args)
	}
	if t.handle != nil {
		result = append(result, t.handle)
	}
	t.mu.Lock()
	if t.result != nil {
		result = append(result, t.result)
	}
	t.mu.Unlock()
	return result
}

// Run executes closure(args) to completion on the calling goroutine,
// synchronously -- used for the program's entry closure, which has no
// producer/consumer relationship with anything else. Threads it spawns via
// SPAWN or Group.spawn run concurrently in their own goroutines.
func Run(group *object.Group, closure *object.Closure, args *object.Tuple) (object.Object, error) {
	t, err := newThread(group, closure, args)
	if err != nil {
		return nil, err
	}
	acquireGIL(t)
	result, err := interp.Run(t.ctx, closure, args)
	finish(t, result, err)
	releaseGIL()
	object.RemoveRootProvider(t.id)
	return result, err
}

func finish(t *Thread, result object.Object, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		exc, ok := object.AsException(err)
		if !ok {
			exc, _ = object.AsException(object.NewRuntimeErrorf("%s", err.Error()))
		}
		t.state = Excepted
		t.err = exc
		return
	}
	t.state = Returned
	t.result = result
}

func spawnAdapter(group *object.Group, closure *object.Closure, args *object.Tuple) (object.Object, error) {
	return spawnThread(group, closure, args)
}

// spawnThread starts closure(args) as a brand new thread in group, running
// in its own goroutine, and returns its handle immediately without waiting
// for it to run -- SPAWN is like CALL but starts a new thread.
func spawnThread(group *object.Group, closure *object.Closure, args *object.Tuple) (object.Object, error) {
	t, err := newThread(group, closure, args)
	if err != nil {
		return nil, err
	}
	go t.runAsync()
	return t.handle, nil
}

func (t *Thread) runAsync() {
	acquireGIL(t)
	result, err := interp.Run(t.ctx, t.closure, t.args)
	finish(t, result, err)
	t.mu.Lock()
	final := report{value: t.result, err: t.err}
	if t.state == Returned {
		final.kind = reportReturned
	} else {
		final.kind = reportExcepted
	}
	t.mu.Unlock()
	releaseGIL()
	t.reportCh <- final
}

// yield implements interp.Context.Yield: park the calling thread as a
// generator producer (state YIELDED), release the lock, and block until a
// consumer's next() call resumes it.
func (t *Thread) yield(value object.Object) error {
	t.mu.Lock()
	t.state = Yielded
	t.result = value
	t.mu.Unlock()
	releaseGIL()
	t.reportCh <- report{kind: reportYielded, value: value}
	<-t.resumeCh
	acquireGIL(t)
	t.mu.Lock()
	t.state = Running
	t.mu.Unlock()
	return nil
}

// Tick implements interp.Probe: the inter-instruction housekeeping step
// that checks for cooperative yield and cancellation, and runs a
// collection if one is due. This is the only point a collection may
// happen: every value the previous instruction built has already been
// pushed onto the operand stack, stored in a local, or dropped, so
// everything still live is reachable through this thread's root provider
// by the time Collect runs. Never trigger a collection from inside an
// allocator -- see object.Register's doc comment.
func (t *Thread) Tick() error {
	t.mu.Lock()
	if t.injected != nil {
		exc := t.injected
		t.injected = nil
		t.mu.Unlock()
		return exc
	}
	t.instrCount++
	interval := t.group.YieldInterval
	due := interval > 0 && t.instrCount >= interval
	if due {
		t.instrCount = 0
	}
	t.mu.Unlock()

	object.CollectIfDue()

	if due {
		releaseGIL()
		time.Sleep(time.Nanosecond)
		acquireGIL(t)
	}
	return nil
}

// Inject writes exc into the slot Tick checks at the thread's next
// inter-instruction probe: the target thread observes the exception at its
// next probe, not mid-instruction.
func (t *Thread) Inject(exc *object.Exception) {
	t.mu.Lock()
	t.injected = exc
	t.mu.Unlock()
}

// Info is a read-only snapshot of one tracked thread, for diagnostic
// listing (see package inspector) -- it never exposes the live Thread
// itself, only copied scalars, so a long-held reference can't interfere
// with the scheduler.
type Info struct {
	ID    string
	Group string
	State State
}

// Snapshot returns a point-in-time view of every thread currently tracked
// in the registry, in no particular order.
func Snapshot() []Info {
	registryMu.Lock()
	threads := make([]*Thread, 0, len(registry))
	for _, t := range registry {
		threads = append(threads, t)
	}
	registryMu.Unlock()

	result := make([]Info, len(threads))
	for i, t := range threads {
		t.mu.Lock()
		state := t.state
		t.mu.Unlock()
		name := ""
		if t.group != nil {
			name = t.group.Name
		}
		result[i] = Info{ID: t.id, Group: name, State: state}
	}
	return result
}
