package object

import "fmt"

var exceptionTable = &Table{
	Kind:     KindException,
	Trace:    excTrace,
	Finalize: NullFinalize,
	GetAttr:  excGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     NullCall,
	Size:     func(Object) uintptr { return 48 },
}

// Exception is the exception Kind: a tuple of args plus an exception type.
// It implements Go's error interface so it can travel through ordinary Go
// error-returning signatures right alongside plumbing errors; AsException
// tells the two apart.
type Exception struct {
	Header
	Args *Tuple
}

func (e *Exception) Error() string {
	name := "Exception"
	if e.Type != nil {
		name = e.Type.Name
	}
	if e.Args == nil || len(e.Args.Data) == 0 {
		return name
	}
	return fmt.Sprintf("%s%s", name, reprTuple(e.Args))
}

func reprTuple(t *Tuple) string {
	s := "("
	for i, v := range t.Data {
		if i > 0 {
			s += ", "
		}
		s += Repr(v)
	}
	return s + ")"
}

func excTrace(self Object, visit func(Object) bool) bool {
	e := self.(*Exception)
	if e.Args != nil {
		return visit(e.Args)
	}
	return true
}

func excGetAttr(self Object, name string) (Object, error) {
	e := self.(*Exception)
	if name == "args" {
		return e.Args, nil
	}
	return nil, NewAttributeError(self, name)
}

// newException builds an exception object of the given type with args,
// skipping the quota allocator -- exceptions raised from inside a failed
// allocation (MemoryError) must never themselves need to allocate.
func newException(t *Type, args ...Object) *Exception {
	e := &Exception{Args: NewTuple(args)}
	e.Table = exceptionTable
	e.Type = t
	return e
}

// NewException allocates a normal (quota-accounted) exception of type t.
// Used by language-level `raise SomeType(...)`.
func NewException(group *Group, t *Type, args ...Object) (*Exception, error) {
	e := newException(t, args...)
	if err := group.Reserve(SizeOf(e)); err != nil {
		return nil, err
	}
	e.Group = group
	Register(e)
	return e, nil
}

// The exception kinds below, each its own static Type so
// `except AttributeError` style type checks can compare by identity.
var (
	TypeException        = newBuiltinExceptionType("Exception", nil)
	TypeAttributeError   = newBuiltinExceptionType("AttributeError", TypeException)
	TypeTypeError        = newBuiltinExceptionType("TypeError", TypeException)
	TypeValueError       = newBuiltinExceptionType("ValueError", TypeException)
	TypeIndexError       = newBuiltinExceptionType("IndexError", TypeException)
	TypeKeyError         = newBuiltinExceptionType("KeyError", TypeException)
	TypeZeroDivisionError = newBuiltinExceptionType("ZeroDivisionError", TypeException)
	TypeRuntimeError     = newBuiltinExceptionType("RuntimeError", TypeException)
	TypeMemoryError      = newBuiltinExceptionType("MemoryError", TypeException)
	TypeStopIteration    = newBuiltinExceptionType("StopIteration", TypeException)
	TypeCancellation     = newBuiltinExceptionType("Cancellation", TypeException)
)

// MemoryErrorSingleton is pre-allocated so it can be raised even when
// allocation is impossible. It carries no args.
var MemoryErrorSingleton = staticException(TypeMemoryError)

// CancellationSingleton is likewise pre-allocated: a thread observing an
// injected cancellation must be able to raise it without touching the
// quota allocator of a group that may itself be the one being torn down.
var CancellationSingleton = staticException(TypeCancellation)

func staticException(t *Type) *Exception {
	e := newException(t)
	e.static = true
	return e
}

func NewAttributeError(self Object, name string) error {
	return newException(TypeAttributeError, NewBytes([]byte(fmt.Sprintf("%s object has no attribute %q", KindName(self), name))))
}

func NewTypeErrorf(format string, args ...any) error {
	return newException(TypeTypeError, NewBytes([]byte(fmt.Sprintf(format, args...))))
}

func NewValueErrorf(format string, args ...any) error {
	return newException(TypeValueError, NewBytes([]byte(fmt.Sprintf(format, args...))))
}

func NewIndexErrorf(format string, args ...any) error {
	return newException(TypeIndexError, NewBytes([]byte(fmt.Sprintf(format, args...))))
}

func NewKeyError(key Object) error {
	return newException(TypeKeyError, key)
}

func NewZeroDivisionError() error {
	return newException(TypeZeroDivisionError, NewBytes([]byte("Division by zero")))
}

func NewRuntimeErrorf(format string, args ...any) error {
	return newException(TypeRuntimeError, NewBytes([]byte(fmt.Sprintf(format, args...))))
}

func NewStopIteration() error {
	return newException(TypeStopIteration)
}

// AsException type-asserts a Go error into a language-level *Exception.
func AsException(err error) (*Exception, bool) {
	e, ok := err.(*Exception)
	return e, ok
}
