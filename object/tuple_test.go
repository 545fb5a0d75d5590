package object

import "testing"

func TestNewTupleInternsEmptyIdentity(t *testing.T) {
	a := NewTuple(nil)
	b := NewTuple([]Object{})
	if a != b {
		t.Fatal("expected two empty-tuple constructions to share identity")
	}
}

func TestTupleEqComparesElementwise(t *testing.T) {
	rootForTest(t)
	a := NewTuple([]Object{NewInt(1), NewBytes([]byte("x"))})
	b := NewTuple([]Object{NewInt(1), NewBytes([]byte("x"))})
	c := NewTuple([]Object{NewInt(1), NewBytes([]byte("y"))})

	eq := Equals(a, b)
	if !eq.OK || !eq.Value {
		t.Fatalf("expected elementwise-equal tuples to compare equal: %+v", eq)
	}
	neq := Equals(a, c)
	if !neq.OK || neq.Value {
		t.Fatalf("expected tuples differing in one element to compare unequal: %+v", neq)
	}
}

func TestTupleEqRejectsLengthMismatch(t *testing.T) {
	rootForTest(t)
	a := NewTuple([]Object{NewInt(1), NewInt(2)})
	b := NewTuple([]Object{NewInt(1)})
	eq := Equals(a, b)
	if !eq.OK || eq.Value {
		t.Fatalf("expected tuples of different lengths to compare unequal: %+v", eq)
	}
}
