package object

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListAppendGetSet(t *testing.T) {
	rootForTest(t)
	l, err := NewList(RootGroup, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Append(NewInt(1)); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(NewInt(2)); err != nil {
		t.Fatal(err)
	}
	v, err := l.Get(0)
	if err != nil || v.(*Int).Value != 1 {
		t.Fatalf("expected element 0 to be 1, got %#v err=%v", v, err)
	}
	if err := l.Set(1, NewInt(99)); err != nil {
		t.Fatal(err)
	}
	v, err = l.Get(1)
	if err != nil || v.(*Int).Value != 99 {
		t.Fatalf("expected element 1 to be 99 after Set, got %#v err=%v", v, err)
	}
}

func TestListGetNegativeIndex(t *testing.T) {
	rootForTest(t)
	l, err := NewList(RootGroup, []Object{NewInt(1), NewInt(2), NewInt(3)})
	if err != nil {
		t.Fatal(err)
	}
	v, err := l.Get(-1)
	if err != nil {
		t.Fatal(err)
	}
	if v.(*Int).Value != 3 {
		t.Fatalf("expected index -1 to be the last element, got %d", v.(*Int).Value)
	}
}

func TestListGetOutOfRange(t *testing.T) {
	rootForTest(t)
	l, err := NewList(RootGroup, []Object{NewInt(1)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Get(5); err == nil {
		t.Fatal("expected an out-of-range index to fail")
	} else if exc, ok := AsException(err); !ok || !exc.Hdr().Type.IsSubclass(TypeIndexError) {
		t.Fatalf("expected IndexError, got %v", err)
	}
}

func TestListAppendRejectsForeignGroupWriter(t *testing.T) {
	rootForTest(t)
	a, err := NewChildGroup(RootGroup, 1<<16, 0, "list-owner")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewChildGroup(RootGroup, 1<<16, 0, "list-intruder")
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewList(a, nil)
	if err != nil {
		t.Fatal(err)
	}

	saved := currentGroupFn
	SetCurrentGroupFn(func() *Group { return b })
	defer func() { currentGroupFn = saved }()

	if err := l.Append(NewInt(1)); err == nil {
		t.Fatal("expected appending from a non-owning group to fail")
	} else if exc, ok := AsException(err); !ok || !exc.Hdr().Type.IsSubclass(TypeRuntimeError) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
}

func TestListIteratorVisitsElementsInOrder(t *testing.T) {
	rootForTest(t)
	l, err := NewList(RootGroup, []Object{NewInt(1), NewInt(2), NewInt(3)})
	if err != nil {
		t.Fatal(err)
	}
	it, err := NewListIterator(RootGroup, l)
	if err != nil {
		t.Fatal(err)
	}
	var got []int64
	for {
		v, err := Call(it, NewTuple(nil))
		if err != nil {
			if exc, ok := AsException(err); ok && exc.Hdr().Type.IsSubclass(TypeStopIteration) {
				break
			}
			t.Fatal(err)
		}
		got = append(got, v.(*Int).Value)
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, got); diff != "" {
		t.Fatalf("unexpected iteration order (-want +got):\n%s", diff)
	}
}

func TestListIteratorExhaustsThenStops(t *testing.T) {
	rootForTest(t)
	l, err := NewList(RootGroup, []Object{NewInt(1), NewInt(2)})
	if err != nil {
		t.Fatal(err)
	}
	it, err := NewListIterator(RootGroup, l)
	if err != nil {
		t.Fatal(err)
	}
	first, err := Call(it, NewTuple(nil))
	if err != nil || first.(*Int).Value != 1 {
		t.Fatalf("expected first element 1, got %#v err=%v", first, err)
	}
	second, err := Call(it, NewTuple(nil))
	if err != nil || second.(*Int).Value != 2 {
		t.Fatalf("expected second element 2, got %#v err=%v", second, err)
	}
	if _, err := Call(it, NewTuple(nil)); err == nil {
		t.Fatal("expected exhausting the iterator to raise StopIteration")
	} else if exc, ok := AsException(err); !ok || !exc.Hdr().Type.IsSubclass(TypeStopIteration) {
		t.Fatalf("expected StopIteration, got %v", err)
	}
}
