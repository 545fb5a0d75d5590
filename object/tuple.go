package object

var tupleTable = &Table{
	Kind:     KindTuple,
	Trace:    tupleTrace,
	Finalize: NullFinalize,
	GetAttr:  tupleGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     NullCall,
	Size:     func(self Object) uintptr { return 24 + 8*uintptr(len(self.(*Tuple).Data)) },
}

// Tuple is the immutable fixed-vector Kind.
type Tuple struct {
	Header
	Data []Object
}

func tupleTrace(self Object, visit func(Object) bool) bool {
	for _, v := range self.(*Tuple).Data {
		if !visit(v) {
			return false
		}
	}
	return true
}

func tupleGetAttr(self Object, name string) (Object, error) {
	t := self.(*Tuple)
	if name == "len" {
		return NewInt(int64(len(t.Data))), nil
	}
	return nil, NewAttributeError(self, name)
}

var emptyTupleSingleton = newEmptyTuple()

func newEmptyTuple() *Tuple {
	t := &Tuple{Data: nil}
	t.Table = tupleTable
	t.Type = TypeTuple
	t.static = true
	return t
}

// NewTuple builds a tuple from data. Any zero-length request, nil or an
// empty non-nil slice alike, returns the shared empty-tuple singleton (two
// zero-length tuple constructions return the same identity). NewTuple
// always builds Kind tuple; a fresh zero-length tuple of a subclass type
// is not something it produces.
func NewTuple(data []Object) *Tuple {
	if len(data) == 0 {
		return emptyTupleSingleton
	}
	t := &Tuple{Data: data}
	t.Table = tupleTable
	t.Type = TypeTuple
	if RootGroup != nil {
		t.Group = RootGroup
		_ = t.Group.Reserve(SizeOf(t))
	}
	Register(t)
	return t
}

// NewTupleEx is NewTuple billed against a specific group.
func NewTupleEx(group *Group, data []Object) (*Tuple, error) {
	if len(data) == 0 {
		return emptyTupleSingleton, nil
	}
	t := &Tuple{Data: data}
	t.Table = tupleTable
	t.Type = TypeTuple
	if err := group.Reserve(SizeOf(t)); err != nil {
		return nil, err
	}
	t.Group = group
	Register(t)
	return t, nil
}

func init() {
	TypeTuple.SetMember("__eq__", newStaticBuiltin("__eq__", func(args *Tuple) (Object, error) {
		a := args.Data[0].(*Tuple)
		other, ok := args.Data[1].(*Tuple)
		if !ok || len(a.Data) != len(other.Data) {
			return FalseSingleton, nil
		}
		for i := range a.Data {
			eq := Equals(a.Data[i], other.Data[i])
			if !eq.OK {
				return nil, eq.Err
			}
			if !eq.Value {
				return FalseSingleton, nil
			}
		}
		return TrueSingleton, nil
	}))
}
