package object

import "testing"

func TestSliceBoundsDefaults(t *testing.T) {
	rootForTest(t)
	s, err := NewSlice(RootGroup, NoneSingleton, NoneSingleton)
	if err != nil {
		t.Fatal(err)
	}
	start, end, err := s.Bounds(10)
	if err != nil {
		t.Fatal(err)
	}
	if start != 0 || end != 10 {
		t.Fatalf("expected the full range [0, 10), got [%d, %d)", start, end)
	}
}

func TestSliceBoundsNegativeFromEnd(t *testing.T) {
	rootForTest(t)
	s, err := NewSlice(RootGroup, NewInt(-3), NewInt(-1))
	if err != nil {
		t.Fatal(err)
	}
	start, end, err := s.Bounds(10)
	if err != nil {
		t.Fatal(err)
	}
	if start != 7 || end != 9 {
		t.Fatalf("expected [7, 9), got [%d, %d)", start, end)
	}
}

func TestSliceBoundsIndependentClamping(t *testing.T) {
	rootForTest(t)
	// A wildly out-of-range start alone does not reject the slice: each
	// bound clamps independently (see the doc comment on Slice, open question #1).
	s, err := NewSlice(RootGroup, NewInt(-100), NewInt(5))
	if err != nil {
		t.Fatal(err)
	}
	start, end, err := s.Bounds(10)
	if err != nil {
		t.Fatal(err)
	}
	if start != 0 || end != 5 {
		t.Fatalf("expected [0, 5), got [%d, %d)", start, end)
	}
}

func TestSliceBoundsInvertedRangeClampsEmpty(t *testing.T) {
	rootForTest(t)
	s, err := NewSlice(RootGroup, NewInt(8), NewInt(2))
	if err != nil {
		t.Fatal(err)
	}
	start, end, err := s.Bounds(10)
	if err != nil {
		t.Fatal(err)
	}
	if start != 8 || end != 8 {
		t.Fatalf("expected an inverted range to clamp to an empty [8, 8), got [%d, %d)", start, end)
	}
}

func TestSliceBoundsRejectsNonIntBound(t *testing.T) {
	rootForTest(t)
	s, err := NewSlice(RootGroup, NewBytes([]byte("nope")), NoneSingleton)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Bounds(10); err == nil {
		t.Fatal("expected a non-int, non-None bound to fail")
	} else if exc, ok := AsException(err); !ok || !exc.Hdr().Type.IsSubclass(TypeTypeError) {
		t.Fatalf("expected TypeError, got %v", err)
	}
}
