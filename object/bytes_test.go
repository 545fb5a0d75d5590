package object

import "testing"

func TestBytesEqHonorsBytesViewCrossType(t *testing.T) {
	rootForTest(t)
	owner := NewBytes([]byte("hello world"))
	view, err := NewBytesView(RootGroup, owner, owner.Data[0:5])
	if err != nil {
		t.Fatal(err)
	}
	other := NewBytes([]byte("hello"))

	eq := Equals(other, view)
	if !eq.OK {
		t.Fatal(eq.Err)
	}
	if !eq.Value {
		t.Fatal("expected a Bytes and an equal-content BytesView to compare equal")
	}
}

func TestBytesViewKeepsOwnerReachable(t *testing.T) {
	rootForTest(t)
	owner := NewBytes([]byte("abcdef"))
	view, err := NewBytesView(RootGroup, owner, owner.Data[2:4])
	if err != nil {
		t.Fatal(err)
	}
	var visited []Object
	Trace(view, func(o Object) bool {
		visited = append(visited, o)
		return true
	})
	if len(visited) != 1 || visited[0] != Object(owner) {
		t.Fatalf("expected Trace to visit the owner exactly once, got %#v", visited)
	}
}

func TestByteArrayIsMutableAndGrowable(t *testing.T) {
	rootForTest(t)
	a, err := NewByteArray(RootGroup, []byte("abc"))
	if err != nil {
		t.Fatal(err)
	}
	a.Data = append(a.Data, 'd')
	if string(a.Data) != "abcd" {
		t.Fatalf("expected the backing slice to grow in place, got %q", a.Data)
	}
}

func TestBytesHashIsDeterministic(t *testing.T) {
	rootForTest(t)
	a := NewBytes([]byte("same"))
	b := NewBytes([]byte("same"))
	ha := Hasher(a)
	hb := Hasher(b)
	if !ha.OK || !hb.OK {
		t.Fatalf("unexpected hash failure: %v %v", ha.Err, hb.Err)
	}
	if ha.Value != hb.Value {
		t.Fatal("expected equal-content bytes to hash identically")
	}
}
