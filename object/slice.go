package object

var sliceTable = &Table{
	Kind:     KindSlice,
	Trace:    sliceTrace,
	Finalize: NullFinalize,
	GetAttr:  sliceGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     NullCall,
	Size:     func(Object) uintptr { return 40 },
}

// Slice is a pair of optional bounds produced by the SLICE opcode. Start
// and End are either *Int or NoneSingleton. Unlike the original's bounds
// check (open question #1: the reference interpreter checked start's type
// twice and never checked end), this implementation validates and clamps
// each bound independently.
type Slice struct {
	Header
	Start Object
	End   Object
}

func sliceTrace(self Object, visit func(Object) bool) bool {
	s := self.(*Slice)
	if !visit(s.Start) {
		return false
	}
	return visit(s.End)
}

func sliceGetAttr(self Object, name string) (Object, error) {
	s := self.(*Slice)
	switch name {
	case "start":
		return s.Start, nil
	case "end":
		return s.End, nil
	}
	return nil, NewAttributeError(self, name)
}

// NewSlice builds a slice object billed to group. start and end must each
// be *Int or NoneSingleton.
func NewSlice(group *Group, start, end Object) (*Slice, error) {
	s := &Slice{Start: start, End: end}
	s.Table = sliceTable
	s.Type = TypeSlice
	if err := group.Reserve(SizeOf(s)); err != nil {
		return nil, err
	}
	s.Group = group
	Register(s)
	return s, nil
}

// Bounds resolves s against a sequence of the given length, independently
// clamping Start (default 0) and End (default length) with negative-from-
// end semantics. An out-of-range bound is clamped rather than rejected,
// matching Python-style slicing rather than indexing, and a range that is
// inverted after clamping collapses to an empty one (end == start). The
// only error is a TypeError for a bound that is neither int nor None.
func (s *Slice) Bounds(length int) (int, int, error) {
	start, err := resolveSliceBound(s.Start, length, 0)
	if err != nil {
		return 0, 0, err
	}
	end, err := resolveSliceBound(s.End, length, length)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		end = start
	}
	return start, end, nil
}

func resolveSliceBound(bound Object, length int, def int) (int, error) {
	if bound == nil || bound == NoneSingleton {
		return def, nil
	}
	i, ok := bound.(*Int)
	if !ok {
		return 0, NewTypeErrorf("slice bounds must be int or None, got %s", KindName(bound))
	}
	v := i.Value
	if v < 0 {
		v += int64(length)
	}
	if v < 0 {
		v = 0
	}
	if v > int64(length) {
		v = int64(length)
	}
	return int(v), nil
}
