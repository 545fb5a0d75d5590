package object

import "sync/atomic"

var typeTable = &Table{
	Kind:     KindType,
	Trace:    typeTrace,
	Finalize: NullFinalize,
	GetAttr:  typeGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     typeCall,
	Size:     func(Object) uintptr { return 96 },
}

// Type is the Kind-`type` object: a base-class pointer
// (nil only for `object`), a constructor function, and an inherited dict of
// class members. Types support single inheritance.
type Type struct {
	Header
	Name        string
	Base        *Type
	Constructor func(t *Type, args *Tuple) (Object, error)
	Members     map[string]Object
	epoch       uint64 // bumped on every Members mutation, invalidates lookupCache entries
}

func typeTrace(self Object, visit func(Object) bool) bool {
	t := self.(*Type)
	if t.Base != nil && !visit(t.Base) {
		return false
	}
	for _, v := range t.Members {
		if !visit(v) {
			return false
		}
	}
	return true
}

func typeGetAttr(self Object, name string) (Object, error) {
	t := self.(*Type)
	for cur := t; cur != nil; cur = cur.Base {
		if v, ok := cur.Members[name]; ok {
			return v, nil
		}
	}
	return nil, NewAttributeError(self, name)
}

// typeCall implements "calling a type constructs an instance": calling the
// type object with two arguments (base, member_dict) creates a new type is
// the special case for Kind `type` itself (t == TypeType); every other
// type's Call forwards to its Constructor.
func typeCall(self Object, args *Tuple) (Object, error) {
	t := self.(*Type)
	if t == TypeType {
		if len(args.Data) != 2 {
			return nil, NewTypeErrorf("type() takes exactly 2 arguments (%d given)", len(args.Data))
		}
		base, ok := args.Data[0].(*Type)
		if !ok && args.Data[0] != NoneSingleton {
			return nil, NewTypeErrorf("type() base must be a type")
		}
		memberDict, ok := args.Data[1].(*Dict)
		if !ok {
			return nil, NewTypeErrorf("type() members must be a dict")
		}
		return NewType(base, memberDict)
	}
	if t.Constructor == nil {
		return nil, NewTypeErrorf("%s is not constructible", t.Name)
	}
	return t.Constructor(t, args)
}

// NewType creates a new type inheriting base's constructor and populated
// with members copied out of memberDict's string keys. base may be nil
// only for a from-scratch root type.
func NewType(base *Type, memberDict *Dict) (*Type, error) {
	members := map[string]Object{}
	for _, e := range memberDict.entries() {
		key, ok := e.Key.(*Bytes)
		if !ok {
			return nil, NewTypeErrorf("type member names must be bytes")
		}
		members[string(key.Data)] = e.Value
	}
	t := &Type{
		Name:    "<anonymous>",
		Base:    base,
		Members: members,
	}
	if base != nil {
		t.Constructor = base.Constructor
	} else {
		t.Constructor = basicObjectConstructor
	}
	t.Table = typeTable
	t.Type = TypeType
	if base != nil {
		if err := base.Group.Reserve(0); err != nil { // no-op reserve keeps the intent explicit
			return nil, err
		}
	}
	if RootGroup != nil {
		if err := RootGroup.Reserve(SizeOf(t)); err != nil {
			return nil, err
		}
		t.Group = RootGroup
	}
	Register(t)
	return t, nil
}

// SetMember installs a class member and bumps the cache-invalidation
// epoch (see object/cache.go).
func (t *Type) SetMember(name string, value Object) {
	t.Members[name] = value
	atomic.AddUint64(&t.epoch, 1)
}

func (t *Type) Epoch() uint64 { return atomic.LoadUint64(&t.epoch) }

// IsSubclass reports whether t is base or a descendant of base, walking the
// single-inheritance chain.
func (t *Type) IsSubclass(base *Type) bool {
	for cur := t; cur != nil; cur = cur.Base {
		if cur == base {
			return true
		}
	}
	return false
}

func newStaticType(name string, base *Type) *Type {
	t := &Type{
		Name:    name,
		Base:    base,
		Members: map[string]Object{},
	}
	t.Table = typeTable
	t.static = true
	return t
}

func newBuiltinExceptionType(name string, base *Type) *Type {
	t := newStaticType(name, base)
	t.Constructor = func(t *Type, args *Tuple) (Object, error) {
		return NewException(RootGroup, t, args.Data...)
	}
	return t
}

// The base type hierarchy. TypeObject has no base: only object has none.
// Every static type's Type pointer is filled in by
// this file's init function below, since TypeType must exist before any Type's Type
// field can point at it -- including TypeType's own.
var (
	TypeObject       = newStaticType("object", nil)
	TypeType         = newStaticType("type", TypeObject)
	TypeNone         = newStaticType("NoneType", TypeObject)
	TypeBool         = newStaticType("bool", TypeObject)
	TypeInt          = newStaticType("int", TypeObject)
	TypeFloat        = newStaticType("float", TypeObject)
	TypeBytes        = newStaticType("bytes", TypeObject)
	TypeBytesView    = newStaticType("bytes-view", TypeBytes)
	TypeByteArray    = newStaticType("bytearray", TypeObject)
	TypeTuple        = newStaticType("tuple", TypeObject)
	TypeList         = newStaticType("list", TypeObject)
	TypeDict         = newStaticType("dict", TypeObject)
	TypeSlice        = newStaticType("slice", TypeObject)
	TypeBuiltin      = newStaticType("builtin", TypeObject)
	TypeClosure      = newStaticType("closure", TypeObject)
	TypeBoundMethod  = newStaticType("bound-method", TypeObject)
	TypeThread       = newStaticType("thread", TypeObject)
	TypeThreadGroup  = newStaticType("thread-group", TypeObject)
	TypeListIterator = newStaticType("list-iterator", TypeObject)
	TypeDictIterator = newStaticType("dict-iterator", TypeObject)
)

func basicObjectConstructor(t *Type, args *Tuple) (Object, error) {
	group := RootGroup
	if currentGroupFn != nil {
		if g := currentGroupFn(); g != nil {
			group = g
		}
	}
	return NewBasicObject(t, group)
}

func init() {
	// object.Type == TypeType for every static type created above, and for
	// the ones declared before this init runs (Go evaluates package-level
	// var initializers before init funcs, in declaration order within a
	// file and file order within the package, so every newStaticType call
	// above has already run).
	allStatic := []*Type{
		TypeObject, TypeType, TypeNone, TypeBool, TypeInt, TypeFloat,
		TypeBytes, TypeBytesView, TypeByteArray, TypeTuple, TypeList,
		TypeDict, TypeSlice, TypeBuiltin, TypeClosure, TypeBoundMethod,
		TypeThread, TypeThreadGroup, TypeListIterator, TypeDictIterator,
		TypeException, TypeAttributeError, TypeTypeError, TypeValueError,
		TypeIndexError, TypeKeyError, TypeZeroDivisionError, TypeRuntimeError,
		TypeMemoryError, TypeStopIteration, TypeCancellation,
	}
	for _, t := range allStatic {
		t.Type = TypeType
	}
	TypeObject.Constructor = basicObjectConstructor
	TypeObject.SetMember("__hash__", newStaticBuiltin("__hash__", func(args *Tuple) (Object, error) {
		return NewInt(int64(DefaultHash(args.Data[0]))), nil
	}))
	TypeObject.SetMember("__eq__", newStaticBuiltin("__eq__", func(args *Tuple) (Object, error) {
		return BoolRaw(DefaultEqual(args.Data[0], args.Data[1])), nil
	}))
	TypeObject.SetMember("__bool__", newStaticBuiltin("__bool__", func(args *Tuple) (Object, error) {
		return TrueSingleton, nil
	}))
}
