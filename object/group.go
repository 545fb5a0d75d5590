package object

import (
	"sync"

	"github.com/google/uuid"
)

var groupTable = &Table{
	Kind:     KindThreadGroup,
	Trace:    NullTrace,
	Finalize: NullFinalize,
	GetAttr:  groupGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     NullCall,
	Size:     func(Object) uintptr { return groupBaseSize },
}

const groupBaseSize = 64

// Group is the thread-group Kind: a budget domain that
// owns a memory limit and a CPU-slice (yield) interval, and that every heap
// object belongs to exactly one of. It is itself a heap object (hence the
// embedded Header) so it can be referenced, attribute-accessed, and passed
// around like any other value.
type Group struct {
	Header

	mu           sync.Mutex
	UUID         string
	Name         string
	Parent       *Group
	MemLimit     uint64
	MemUsed      uint64
	YieldInterval uint64
}

func groupGetAttr(self Object, name string) (Object, error) {
	g := self.(*Group)
	switch name {
	case "mem_limit":
		return NewInt(int64(g.MemLimit)), nil
	case "mem_used":
		return NewInt(int64(g.MemUsed)), nil
	case "yield_interval":
		return NewInt(int64(g.YieldInterval)), nil
	case "name":
		return NewBytes([]byte(g.Name)), nil
	}
	return nil, NewAttributeError(self, name)
}

// RootGroup is the process-wide root thread group. It is static: it is
// never freed and is not itself billed to any group (its own Header.Group
// is nil).
var RootGroup *Group

// NewRootGroup initializes RootGroup with the given memory limit. Called
// once by the CLI entry point after reading the HEAP_MEM environment
// variable.
func NewRootGroup(memLimit uint64, yieldInterval uint64) *Group {
	g := &Group{
		UUID:          uuid.NewString(),
		Name:          "root",
		MemLimit:      memLimit,
		YieldInterval: yieldInterval,
	}
	g.Table = groupTable
	g.Type = TypeThreadGroup
	g.static = true
	RootGroup = g
	AddRoot(g)
	return g
}

// NewChildGroup creates a subgroup of parent, subtracting memLimit from the
// parent's *remaining* allowance. It fails with RuntimeError if the parent
// doesn't have that much headroom.
func NewChildGroup(parent *Group, memLimit uint64, yieldInterval uint64, name string) (*Group, error) {
	parent.mu.Lock()
	if parent.MemUsed+memLimit > parent.MemLimit {
		parent.mu.Unlock()
		return nil, NewRuntimeErrorf("thread group %q does not have %d bytes of allowance to give a child", parent.Name, memLimit)
	}
	parent.MemUsed += memLimit
	parent.mu.Unlock()

	g := &Group{
		UUID:          uuid.NewString(),
		Name:          name,
		Parent:        parent,
		MemLimit:      memLimit,
		YieldInterval: yieldInterval,
	}
	g.Table = groupTable
	g.Type = TypeThreadGroup
	g.Group = parent
	Register(g)
	if groupEventHook != nil {
		groupEventHook("create", g, "")
	}
	return g, nil
}

// groupEventHook is installed by package audit (via SetGroupEventHook) so
// group lifecycle transitions can be persisted without object importing
// audit's sqlite dependency directly -- the same seam as collectHook.
var groupEventHook func(event string, g *Group, detail string)

// SetGroupEventHook installs the callback invoked on group create, destroy,
// and donate.
func SetGroupEventHook(f func(event string, g *Group, detail string)) {
	groupEventHook = f
}

// Destroy refunds a child group's limit to its parent's remaining
// allowance. Any objects still owned by g at this point are a caller bug
// (the language-level contract is that a group is destroyed only once every
// thread running in it has exited and every object it owned has been
// donated away or collected); Destroy does not itself sweep g's objects.
func (g *Group) Destroy() {
	if g.Parent == nil {
		return
	}
	g.Parent.mu.Lock()
	g.Parent.MemUsed -= g.MemLimit
	g.Parent.mu.Unlock()
	if groupEventHook != nil {
		groupEventHook("destroy", g, "")
	}
}

// Reserve attempts to bill size bytes against g, failing with MemoryError
// if that would exceed g's limit.
func (g *Group) Reserve(size uintptr) error {
	if g == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.MemUsed+uint64(size) > g.MemLimit {
		return MemoryErrorSingleton
	}
	g.MemUsed += uint64(size)
	return nil
}

// Release credits size bytes back to g. Called by the GC sweep phase and by
// Donate.
func (g *Group) Release(size uintptr) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if uint64(size) > g.MemUsed {
		g.MemUsed = 0
		return
	}
	g.MemUsed -= uint64(size)
}

// Donate moves obj's current size from its owning group's counter to dest's,
// and rewrites obj's group pointer, atomically with respect to both groups'
// counters.
func Donate(obj Object, dest *Group) error {
	size := SizeOf(obj)
	if err := dest.Reserve(size); err != nil {
		return err
	}
	src := obj.Hdr().Group
	src.Release(size)
	obj.Hdr().Group = dest
	if groupEventHook != nil && src != nil {
		groupEventHook("donate", src, dest.Name)
	}
	return nil
}

// currentGroupFn is set by package thread at startup so this package can
// enforce the cross-group mutation guard without importing thread (which
// itself imports object).
var currentGroupFn func() *Group

// SetCurrentGroupFn installs the accessor the scheduler uses to answer
// "what thread group is the calling thread running in right now".
func SetCurrentGroupFn(f func() *Group) { currentGroupFn = f }

// CheckGroupWrite enforces the cross-group mutation guard: mutating a
// container changes the owning group's total, so the mutator must be
// running in that same group.
func CheckGroupWrite(self Object) error {
	if currentGroupFn == nil {
		return nil
	}
	owner := self.Hdr().Group
	if owner == nil {
		return nil
	}
	current := currentGroupFn()
	if current == nil || current == owner {
		return nil
	}
	return NewRuntimeErrorf("cannot mutate an object owned by thread group %q from thread group %q", owner.Name, current.Name)
}
