package object

import "testing"

func rootForTest(t *testing.T) {
	t.Helper()
	if RootGroup == nil {
		NewRootGroup(1<<30, 0)
	}
}

func TestNewChildGroupSubtractsFromParentAllowance(t *testing.T) {
	rootForTest(t)
	parent, err := NewChildGroup(RootGroup, 1000, 0, "parent")
	if err != nil {
		t.Fatal(err)
	}
	before := parent.MemUsed
	if _, err := NewChildGroup(parent, 400, 0, "child"); err != nil {
		t.Fatal(err)
	}
	if parent.MemUsed != before+400 {
		t.Fatalf("expected parent mem_used to rise by 400, got %d -> %d", before, parent.MemUsed)
	}
}

func TestNewChildGroupRejectsOverAllocation(t *testing.T) {
	rootForTest(t)
	parent, err := NewChildGroup(RootGroup, 100, 0, "tight-parent")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewChildGroup(parent, 200, 0, "too-big"); err == nil {
		t.Fatal("expected creating a child larger than the parent's allowance to fail")
	}
}

func TestGroupDestroyRefundsParent(t *testing.T) {
	rootForTest(t)
	parent, err := NewChildGroup(RootGroup, 1000, 0, "refund-parent")
	if err != nil {
		t.Fatal(err)
	}
	child, err := NewChildGroup(parent, 400, 0, "refund-child")
	if err != nil {
		t.Fatal(err)
	}
	before := parent.MemUsed
	child.Destroy()
	if parent.MemUsed != before-400 {
		t.Fatalf("expected destroy to refund 400 to the parent, got %d -> %d", before, parent.MemUsed)
	}
}

func TestReserveFailsOverQuota(t *testing.T) {
	rootForTest(t)
	g, err := NewChildGroup(RootGroup, 64, 0, "quota")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Reserve(32); err != nil {
		t.Fatalf("expected a reservation within quota to succeed, got %v", err)
	}
	if err := g.Reserve(64); err == nil {
		t.Fatal("expected a reservation exceeding quota to fail")
	} else if exc, ok := AsException(err); !ok || !exc.Hdr().Type.IsSubclass(TypeMemoryError) {
		t.Fatalf("expected MemoryError, got %v", err)
	}
}

func TestReleaseNeverUnderflows(t *testing.T) {
	rootForTest(t)
	g, err := NewChildGroup(RootGroup, 64, 0, "underflow")
	if err != nil {
		t.Fatal(err)
	}
	g.Release(1000)
	if g.MemUsed != 0 {
		t.Fatalf("expected releasing more than reserved to floor at 0, got %d", g.MemUsed)
	}
}

func TestDonateMovesSizeBetweenGroups(t *testing.T) {
	rootForTest(t)
	a, err := NewChildGroup(RootGroup, 1<<16, 0, "donate-a-group-test")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewChildGroup(RootGroup, 1<<16, 0, "donate-b-group-test")
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewIntEx(a, 7)
	if err != nil {
		t.Fatal(err)
	}
	size := SizeOf(v)
	aBefore := a.MemUsed

	if err := Donate(v, b); err != nil {
		t.Fatal(err)
	}
	if a.MemUsed != aBefore-uint64(size) {
		t.Fatalf("expected source group to shed %d bytes, got %d -> %d", size, aBefore, a.MemUsed)
	}
	if b.MemUsed != uint64(size) {
		t.Fatalf("expected dest group to gain %d bytes, got %d", size, b.MemUsed)
	}
	if v.Hdr().Group != b {
		t.Fatal("expected the donated object's group pointer to be rewritten")
	}
}

func TestCheckGroupWriteAllowsNilCurrentGroupFn(t *testing.T) {
	rootForTest(t)
	saved := currentGroupFn
	currentGroupFn = nil
	defer func() { currentGroupFn = saved }()

	v, err := NewIntEx(RootGroup, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckGroupWrite(v); err != nil {
		t.Fatalf("expected no enforcement with no current-group accessor installed, got %v", err)
	}
}

func TestCheckGroupWriteRejectsForeignGroup(t *testing.T) {
	rootForTest(t)
	a, err := NewChildGroup(RootGroup, 1<<16, 0, "foreign-a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewChildGroup(RootGroup, 1<<16, 0, "foreign-b")
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewIntEx(a, 1)
	if err != nil {
		t.Fatal(err)
	}

	saved := currentGroupFn
	SetCurrentGroupFn(func() *Group { return b })
	defer func() { currentGroupFn = saved }()

	if err := CheckGroupWrite(v); err == nil {
		t.Fatal("expected writing from a non-owning group to fail")
	} else if exc, ok := AsException(err); !ok || !exc.Hdr().Type.IsSubclass(TypeRuntimeError) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
}
