package object

var intTable = &Table{
	Kind: KindInt, Trace: NullTrace, Finalize: NullFinalize,
	GetAttr: NullGetAttr, SetAttr: NullSetAttr, DelAttr: NullDelAttr, Call: NullCall,
	Size: func(Object) uintptr { return 24 },
}

var floatTable = &Table{
	Kind: KindFloat, Trace: NullTrace, Finalize: NullFinalize,
	GetAttr: NullGetAttr, SetAttr: NullSetAttr, DelAttr: NullDelAttr, Call: NullCall,
	Size: func(Object) uintptr { return 24 },
}

// Int is the signed-64-bit integer Kind (no numeric tower beyond
// int64/float64).
type Int struct {
	Header
	Value int64
}

// NewInt allocates an int against the root group. Small integers are not
// cached/interned: unlike None/True/False/the empty tuple, ints carry no
// identity guarantee, so there is no correctness reason to
// special-case them, and doing so would need per-group interning tables
// that complicate donation semantics for no benefit.
func NewInt(v int64) *Int {
	i := &Int{Value: v}
	i.Table = intTable
	i.Type = TypeInt
	if RootGroup != nil {
		i.Group = RootGroup
		_ = i.Group.Reserve(SizeOf(i))
	}
	Register(i)
	return i
}

// NewIntEx allocates an int against a specific group, failing with
// MemoryError if the group's quota is exceeded. Used by the interpreter,
// which always knows the current thread's group.
func NewIntEx(group *Group, v int64) (*Int, error) {
	i := &Int{Value: v}
	i.Table = intTable
	i.Type = TypeInt
	if err := group.Reserve(SizeOf(i)); err != nil {
		return nil, err
	}
	i.Group = group
	Register(i)
	return i, nil
}

// Float is the IEEE-754 double Kind.
type Float struct {
	Header
	Value float64
}

func NewFloat(v float64) *Float {
	f := &Float{Value: v}
	f.Table = floatTable
	f.Type = TypeFloat
	if RootGroup != nil {
		f.Group = RootGroup
		_ = f.Group.Reserve(SizeOf(f))
	}
	Register(f)
	return f
}

func NewFloatEx(group *Group, v float64) (*Float, error) {
	f := &Float{Value: v}
	f.Table = floatTable
	f.Type = TypeFloat
	if err := group.Reserve(SizeOf(f)); err != nil {
		return nil, err
	}
	f.Group = group
	Register(f)
	return f, nil
}

func init() {
	TypeInt.SetMember("__hash__", newStaticBuiltin("__hash__", func(args *Tuple) (Object, error) {
		return NewInt(args.Data[0].(*Int).Value), nil
	}))
	TypeInt.SetMember("__eq__", newStaticBuiltin("__eq__", func(args *Tuple) (Object, error) {
		other, ok := args.Data[1].(*Int)
		return BoolRaw(ok && other.Value == args.Data[0].(*Int).Value), nil
	}))
	TypeInt.SetMember("__bool__", newStaticBuiltin("__bool__", func(args *Tuple) (Object, error) {
		return BoolRaw(args.Data[0].(*Int).Value != 0), nil
	}))
	TypeFloat.SetMember("__eq__", newStaticBuiltin("__eq__", func(args *Tuple) (Object, error) {
		other, ok := args.Data[1].(*Float)
		return BoolRaw(ok && other.Value == args.Data[0].(*Float).Value), nil
	}))
	TypeBool.SetMember("__hash__", newStaticBuiltin("__hash__", func(args *Tuple) (Object, error) {
		v := int64(0)
		if args.Data[0].(*Singleton) == TrueSingleton {
			v = 1
		}
		return NewInt(v), nil
	}))
	TypeBool.SetMember("__eq__", newStaticBuiltin("__eq__", func(args *Tuple) (Object, error) {
		return BoolRaw(args.Data[0] == args.Data[1]), nil
	}))
	TypeBool.SetMember("__bool__", newStaticBuiltin("__bool__", func(args *Tuple) (Object, error) {
		return args.Data[0], nil
	}))
	TypeNone.SetMember("__bool__", newStaticBuiltin("__bool__", func(args *Tuple) (Object, error) {
		return FalseSingleton, nil
	}))
	TypeNone.SetMember("__eq__", newStaticBuiltin("__eq__", func(args *Tuple) (Object, error) {
		return BoolRaw(args.Data[0] == args.Data[1]), nil
	}))
}
