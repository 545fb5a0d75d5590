package gc

import (
	"testing"

	"github.com/rhelmot/objectively/object"
)

// testGroup builds a throwaway root-like group large enough for a handful
// of small allocations, independent of the process-wide object.RootGroup.
func testGroup(t *testing.T) *object.Group {
	t.Helper()
	g, err := object.NewChildGroup(rootGroupForTest(t), 1<<20, 0, "gc-test")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func rootGroupForTest(t *testing.T) *object.Group {
	t.Helper()
	if object.RootGroup == nil {
		object.NewRootGroup(1<<30, 0)
	}
	return object.RootGroup
}

func TestCollectFreesUnreachable(t *testing.T) {
	g := testGroup(t)
	before := object.Count()

	l, err := object.NewList(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Append(object.NewInt(1)); err != nil {
		t.Fatal(err)
	}

	id := l.ID()
	l = nil
	_ = id

	Collect()

	after := object.Count()
	if after > before {
		t.Fatalf("expected collection to not grow live set, before=%d after=%d", before, after)
	}
}

func TestCollectKeepsRootedObjects(t *testing.T) {
	g := testGroup(t)
	l, err := object.NewList(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	object.AddRoot(l)
	defer object.RemoveRoot(l)

	Collect()

	found := false
	for _, o := range object.AllObjects() {
		if o == object.Object(l) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected rooted list to survive collection")
	}
}

func TestCollectTracesNestedContainers(t *testing.T) {
	g := testGroup(t)
	inner, err := object.NewList(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	outer, err := object.NewList(g, []object.Object{inner})
	if err != nil {
		t.Fatal(err)
	}
	object.AddRoot(outer)
	defer object.RemoveRoot(outer)

	Collect()

	for _, o := range object.AllObjects() {
		if o == object.Object(inner) {
			return
		}
	}
	t.Fatal("expected inner list reachable through outer to survive collection")
}

func TestCollectReleasesQuota(t *testing.T) {
	g := testGroup(t)
	l, err := object.NewList(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 64; i++ {
		if err := l.Append(object.NewInt(int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	usedBefore := g.MemUsed
	l = nil
	_ = l

	Collect()

	if g.MemUsed >= usedBefore {
		t.Fatalf("expected MemUsed to drop after collecting an unreferenced list, before=%d after=%d", usedBefore, g.MemUsed)
	}
}
