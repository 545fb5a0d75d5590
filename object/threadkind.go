package object

// threadInvoker is installed by package thread at startup, mirroring the
// closureInvoker seam in callable.go: object must define the Kind-thread
// Table (since it owns the closed Kind enum) but the scheduler that actually
// knows how to resume a thread lives one layer up, to avoid an import cycle.
var threadInvoker func(self Object, args *Tuple) (Object, error)

// SetThreadInvoker installs the callback used by threadTable.Call. Called
// once by package thread's init/Install.
func SetThreadInvoker(f func(self Object, args *Tuple) (Object, error)) {
	threadInvoker = f
}

var threadTable = &Table{
	Kind:     KindThread,
	Trace:    NullTrace,
	Finalize: NullFinalize,
	GetAttr:  threadGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     threadCall,
	Size:     func(Object) uintptr { return 48 },
}

// ThreadHandle is the lightweight object-model-side handle for a thread;
// it carries only the identity the scheduler uses to find its real state.
// Calling it (the `next`/resume protocol) is forwarded to threadInvoker.
type ThreadHandle struct {
	Header
	ID string
}

func threadGetAttr(self Object, name string) (Object, error) {
	th := self.(*ThreadHandle)
	if name == "id" {
		return NewBytes([]byte(th.ID)), nil
	}
	return nil, NewAttributeError(self, name)
}

func threadCall(self Object, args *Tuple) (Object, error) {
	if threadInvoker == nil {
		return nil, NewRuntimeErrorf("no thread scheduler installed")
	}
	return threadInvoker(self, args)
}

// NewThreadHandle allocates a handle for a thread identified by id, billed
// to group (ordinarily the thread's own thread-group).
func NewThreadHandle(group *Group, id string) (*ThreadHandle, error) {
	th := &ThreadHandle{ID: id}
	th.Table = threadTable
	th.Type = TypeThread
	if err := group.Reserve(SizeOf(th)); err != nil {
		return nil, err
	}
	th.Group = group
	Register(th)
	return th, nil
}
