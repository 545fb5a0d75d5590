// Package object implements the uniform object header, the per-kind virtual
// table dispatch, the closed set of primitive Kinds, and the identity/
// equality-keyed dict that the rest of the runtime is built on.
//
// Every heap value embeds a Header as its first field and implements the
// Object interface by returning a pointer to it. The object model never
// branches on Kind directly outside of this package: everywhere else reads
// obj.Hdr().Table.Trace / .Call / etc.
package object

import "github.com/rhelmot/objectively"

// Kind is the closed set of primitive object variants this runtime supports.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindBytesView
	KindByteArray
	KindTuple
	KindList
	KindDict
	KindSlice
	KindException
	KindBuiltin
	KindClosure
	KindBoundMethod
	KindType
	KindThread
	KindThreadGroup
	KindListIterator
	KindDictIterator
	KindBasicObject
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	case KindBytesView:
		return "bytes-view"
	case KindByteArray:
		return "bytearray"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindSlice:
		return "slice"
	case KindException:
		return "exception"
	case KindBuiltin:
		return "builtin"
	case KindClosure:
		return "closure"
	case KindBoundMethod:
		return "bound-method"
	case KindType:
		return "type"
	case KindThread:
		return "thread"
	case KindThreadGroup:
		return "thread-group"
	case KindListIterator:
		return "list-iterator"
	case KindDictIterator:
		return "dict-iterator"
	case KindBasicObject:
		return "basic-object"
	default:
		return "unknown"
	}
}

// Object is implemented by every heap value: a pointer to its embedded
// Header. Kind-specific methods hang off the concrete type; the model
// dispatches through Hdr().Table instead of type-switching on Kind.
type Object interface {
	Hdr() *Header
}

// Table is the per-kind record of function pointers a Kind dispatches
// through. Every kind installs exactly one (usually package-level, shared)
// Table instance; the Header points at it.
type Table struct {
	Kind Kind

	// Trace invokes visit exactly once on every object directly referenced
	// by self. It returns false as soon as any visit call returns false
	// (short-circuiting, matching the original's depth-first mark walk).
	Trace func(self Object, visit func(Object) bool) bool

	// Finalize releases any non-GC storage self owns (e.g. a list's backing
	// array). It never touches other heap objects' headers.
	Finalize func(self Object)

	GetAttr func(self Object, name string) (Object, error)
	SetAttr func(self Object, name string, value Object) error
	DelAttr func(self Object, name string) error

	// Call implements callable objects. Non-callable kinds install
	// NullCall, which fails with a TypeError.
	Call func(self Object, args *Tuple) (Object, error)

	// Size returns the heap footprint of self, computed fresh for
	// variable-size kinds (list/dict/bytes/bytearray/tuple).
	Size func(self Object) uintptr
}

// Header is the three-field object header every heap value embeds, plus
// the mark bit the GC needs and a generation-independent flag for static
// objects.
type Header struct {
	Table *Table
	Type  *Type
	Group *Group

	marked bool
	static bool
	id     string
}

func (h *Header) Hdr() *Header { return h }

// ID returns a unique, stable identifier for this object, generated lazily.
func (h *Header) ID() string {
	if h.id == "" {
		h.id = objectively.NextUniqueID()
	}
	return h.id
}

// IsStatic reports whether this object is exempt from GC and quota
// accounting (process-wide singletons and types installed at startup).
func (h *Header) IsStatic() bool { return h.static }

// NullTrace, NullFinalize, etc. are the no-op vtable entries for primitive
// kinds that carry no references, no finalizable storage, or no attribute
// surface beyond the default type-chain walk.
func NullTrace(self Object, visit func(Object) bool) bool { return true }
func NullFinalize(self Object)                            {}

func NullGetAttr(self Object, name string) (Object, error) {
	return nil, NewAttributeError(self, name)
}
func NullSetAttr(self Object, name string, value Object) error {
	return NewTypeErrorf("object of kind %s has no settable attributes", self.Hdr().Table.Kind)
}
func NullDelAttr(self Object, name string) error {
	return NewTypeErrorf("object of kind %s has no deletable attributes", self.Hdr().Table.Kind)
}
func NullCall(self Object, args *Tuple) (Object, error) {
	return nil, NewTypeErrorf("object of kind %s is not callable", self.Hdr().Table.Kind)
}

// Call is the top-level callable dispatch: self(args...).
func Call(self Object, args *Tuple) (Object, error) {
	table := self.Hdr().Table
	if table == nil || table.Call == nil {
		return nil, NewTypeErrorf("object of kind %s is not callable", KindName(self))
	}
	return table.Call(self, args)
}

// Trace is the top-level trace dispatch used by the GC.
func Trace(self Object, visit func(Object) bool) bool {
	table := self.Hdr().Table
	if table == nil || table.Trace == nil {
		return true
	}
	return table.Trace(self, visit)
}

// Finalize is the top-level finalize dispatch used by the GC sweep phase.
func Finalize(self Object) {
	table := self.Hdr().Table
	if table != nil && table.Finalize != nil {
		table.Finalize(self)
	}
}

// SizeOf is the top-level size dispatch used by allocation and the GC sweep.
func SizeOf(self Object) uintptr {
	table := self.Hdr().Table
	if table == nil || table.Size == nil {
		return 0
	}
	return table.Size(self)
}

// KindName returns the human-readable kind name of self, used in error
// messages throughout the package.
func KindName(self Object) string {
	if self == nil {
		return "NoneType"
	}
	table := self.Hdr().Table
	if table == nil {
		return "unknown"
	}
	return table.Kind.String()
}
