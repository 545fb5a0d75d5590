package interp

import "github.com/rhelmot/objectively/object"

// tryEntry is one entry of a frame's catch-target stack.
type tryEntry struct {
	target int
}

// Frame is the invocation record for one in-progress closure call:
// program counter, operand stack, locals dict, try-stack, and a temp-root
// list cleared between instructions.
type Frame struct {
	closure *object.Closure
	group   *object.Group

	pc      int
	operand []object.Object
	locals  *object.Dict
	tries   []tryEntry
	temp    []object.Object

	args *object.Tuple
}

func newFrame(group *object.Group, closure *object.Closure, args *object.Tuple) (*Frame, error) {
	locals, err := closure.Env.Clone(group)
	if err != nil {
		return nil, err
	}
	return &Frame{
		closure: closure,
		group:   group,
		locals:  locals,
		args:    args,
	}, nil
}

func (f *Frame) push(o object.Object) { f.operand = append(f.operand, o) }

func (f *Frame) pop() (object.Object, error) {
	if len(f.operand) == 0 {
		return nil, object.NewRuntimeErrorf("operand stack underflow")
	}
	v := f.operand[len(f.operand)-1]
	f.operand = f.operand[:len(f.operand)-1]
	return v, nil
}

func (f *Frame) popN(n int) ([]object.Object, error) {
	if len(f.operand) < n {
		return nil, object.NewRuntimeErrorf("operand stack underflow popping %d", n)
	}
	vals := append([]object.Object(nil), f.operand[len(f.operand)-n:]...)
	f.operand = f.operand[:len(f.operand)-n]
	return vals, nil
}

func (f *Frame) peek() (object.Object, error) {
	if len(f.operand) == 0 {
		return nil, object.NewRuntimeErrorf("operand stack underflow")
	}
	return f.operand[len(f.operand)-1], nil
}

// root keeps o alive across the next allocation within this instruction:
// the interpreter maintains two auxiliary lists -- the operand stack itself
// is one, temp is the other for values not yet pushed.
func (f *Frame) root(o object.Object) object.Object {
	f.temp = append(f.temp, o)
	return o
}

func (f *Frame) clearTemp() { f.temp = nil }

func (f *Frame) Trace(visit func(object.Object) bool) bool {
	if f.closure != nil && !visit(f.closure) {
		return false
	}
	if f.locals != nil && !visit(f.locals) {
		return false
	}
	if f.args != nil && !visit(f.args) {
		return false
	}
	for _, o := range f.operand {
		if o != nil && !visit(o) {
			return false
		}
	}
	for _, o := range f.temp {
		if o != nil && !visit(o) {
			return false
		}
	}
	return true
}
