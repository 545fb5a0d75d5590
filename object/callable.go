package object

var builtinTable = &Table{
	Kind: KindBuiltin, Trace: NullTrace, Finalize: NullFinalize,
	GetAttr: NullGetAttr, SetAttr: NullSetAttr, DelAttr: NullDelAttr,
	Call: func(self Object, args *Tuple) (Object, error) {
		return self.(*BuiltinFunction).Func(args)
	},
	Size: func(Object) uintptr { return 32 },
}

// BuiltinFunction is the Kind wrapping a native Go function pointer.
type BuiltinFunction struct {
	Header
	Name string
	Func func(args *Tuple) (Object, error)
}

func newStaticBuiltin(name string, fn func(args *Tuple) (Object, error)) *BuiltinFunction {
	b := &BuiltinFunction{Name: name, Func: fn}
	b.Table = builtinTable
	b.Type = TypeBuiltin
	b.static = true
	return b
}

// NewBuiltin allocates a quota-accounted builtin function, for runtimes
// that register additional native methods after startup (package builtin).
func NewBuiltin(group *Group, name string, fn func(args *Tuple) (Object, error)) (*BuiltinFunction, error) {
	b := &BuiltinFunction{Name: name, Func: fn}
	b.Table = builtinTable
	b.Type = TypeBuiltin
	if err := group.Reserve(SizeOf(b)); err != nil {
		return nil, err
	}
	b.Group = group
	Register(b)
	return b, nil
}

var closureTable = &Table{
	Kind:     KindClosure,
	Trace:    closureTrace,
	Finalize: NullFinalize,
	GetAttr:  NullGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     closureCall,
	Size:     func(Object) uintptr { return 56 },
}

// Closure is bytecode plus a captured environment: closures observe the
// snapshot of the outer scope at construction time.
type Closure struct {
	Header
	Bytecode *Bytes
	Env      *Dict
}

func closureTrace(self Object, visit func(Object) bool) bool {
	c := self.(*Closure)
	if c.Bytecode != nil && !visit(c.Bytecode) {
		return false
	}
	if c.Env != nil && !visit(c.Env) {
		return false
	}
	return true
}

// closureInvoker is installed by package interp (SetClosureInvoker) to
// break the object<->interp import cycle: the interpreter needs to build
// closures with object.Call-compatible semantics, but only package interp
// knows how to actually run bytecode.
var closureInvoker func(c *Closure, args *Tuple) (Object, error)

// SetClosureInvoker installs the function used to execute a closure's
// bytecode. Called once, by package interp's init, which runs whenever
// interp is imported.
func SetClosureInvoker(f func(c *Closure, args *Tuple) (Object, error)) {
	closureInvoker = f
}

func closureCall(self Object, args *Tuple) (Object, error) {
	if closureInvoker == nil {
		return nil, NewRuntimeErrorf("no interpreter installed to run closures")
	}
	return closureInvoker(self.(*Closure), args)
}

// NewClosure allocates a closure billed to group.
func NewClosure(group *Group, bytecode *Bytes, env *Dict) (*Closure, error) {
	c := &Closure{Bytecode: bytecode, Env: env}
	c.Table = closureTable
	c.Type = TypeClosure
	if err := group.Reserve(SizeOf(c)); err != nil {
		return nil, err
	}
	c.Group = group
	Register(c)
	return c, nil
}

var boundMethodTable = &Table{
	Kind:     KindBoundMethod,
	Trace:    boundMethodTrace,
	Finalize: NullFinalize,
	GetAttr:  NullGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     boundMethodCall,
	Size:     func(Object) uintptr { return 40 },
}

// BoundMethod prepends Self to every call's argument tuple and forwards to
// Method: the bound method's call prepends self to the argument tuple and
// forwards.
type BoundMethod struct {
	Header
	Method Object
	Self   Object
}

func boundMethodTrace(self Object, visit func(Object) bool) bool {
	m := self.(*BoundMethod)
	if !visit(m.Method) {
		return false
	}
	return visit(m.Self)
}

func boundMethodCall(self Object, args *Tuple) (Object, error) {
	m := self.(*BoundMethod)
	full := make([]Object, 0, len(args.Data)+1)
	full = append(full, m.Self)
	full = append(full, args.Data...)
	return Call(m.Method, NewTuple(full))
}

// bindMethod wraps method as a bound method with self prepended, unless
// method isn't function-like, in which case it is returned unchanged: a hit
// that is a function-like (builtin or closure) is automatically wrapped.
func bindMethod(self Object, method Object) Object {
	switch method.(type) {
	case *BuiltinFunction, *Closure:
	default:
		return method
	}
	b := &BoundMethod{Method: method, Self: self}
	b.Table = boundMethodTable
	b.Type = TypeBoundMethod
	group := self.Hdr().Group
	if group == nil {
		group = RootGroup
	}
	b.Group = group
	if group != nil {
		_ = group.Reserve(SizeOf(b))
	}
	Register(b)
	return b
}
