package object

import "unsafe"

var noneTable = &Table{
	Kind: KindNone, Trace: NullTrace, Finalize: NullFinalize,
	GetAttr: NullGetAttr, SetAttr: NullSetAttr, DelAttr: NullDelAttr, Call: NullCall,
	Size: func(Object) uintptr { return 16 },
}

var boolTable = &Table{
	Kind: KindBool, Trace: NullTrace, Finalize: NullFinalize,
	GetAttr: NullGetAttr, SetAttr: NullSetAttr, DelAttr: NullDelAttr, Call: NullCall,
	Size: func(Object) uintptr { return 16 },
}

// Singleton is the representation for the process-wide None/True/False
// singletons: None, True, False, and the empty tuple are process-wide
// singletons.
type Singleton struct {
	Header
	name string
}

var (
	NoneSingleton  = &Singleton{name: "None"}
	TrueSingleton  = &Singleton{name: "True"}
	FalseSingleton = &Singleton{name: "False"}
)

func init() {
	NoneSingleton.Table = noneTable
	NoneSingleton.Type = TypeNone
	NoneSingleton.static = true

	TrueSingleton.Table = boolTable
	TrueSingleton.Type = TypeBool
	TrueSingleton.static = true

	FalseSingleton.Table = boolTable
	FalseSingleton.Type = TypeBool
	FalseSingleton.static = true

	AddRoot(NoneSingleton)
	AddRoot(TrueSingleton)
	AddRoot(FalseSingleton)
	AddRoot(emptyTupleSingleton)
	AddRoot(MemoryErrorSingleton)
	AddRoot(CancellationSingleton)
}

// BoolRaw returns the canonical True/False singleton for v.
func BoolRaw(v bool) *Singleton {
	if v {
		return TrueSingleton
	}
	return FalseSingleton
}

// IsTruthy converts self via __bool__, used by JUMP_IF: any value coercion
// that would normally call a dunder is itself a TypeError if the result
// isn't bool.
func IsTruthy(self Object) (bool, error) {
	v, err := GetAttr(self, "__bool__")
	if err != nil {
		return false, err
	}
	result, err := Call(v, NewTuple(nil))
	if err != nil {
		return false, err
	}
	b, ok := result.(*Singleton)
	if !ok || b.Hdr().Table != boolTable {
		return false, NewTypeErrorf("__bool__ should return bool, returned %s", KindName(result))
	}
	return b == TrueSingleton, nil
}

// DefaultHash is the identity-based hash every object gets unless its type
// overrides __hash__: the address of its embedded Header.
func DefaultHash(o Object) uint64 {
	if o == nil {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(o.Hdr())))
}

// DefaultEqual is identity-based equality: same Header address.
func DefaultEqual(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Hdr() == b.Hdr()
}

// Repr renders a best-effort debug representation of o, used in exception
// messages and cmd/objectively's uncaught-exception report; it never calls into user-defined __str__ (to
// avoid re-entering the interpreter from error-formatting code) and falls
// back to the kind name plus identity for anything it doesn't know.
func Repr(o Object) string {
	switch v := o.(type) {
	case *Singleton:
		return v.name
	case *Int:
		return itoa(v.Value)
	case *Float:
		return ftoa(v.Value)
	case *Bytes:
		return "b" + quote(v.Data)
	case *BytesView:
		return "b" + quote(v.Bytes())
	default:
		return KindName(o) + " object"
	}
}
