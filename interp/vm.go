package interp

import "github.com/rhelmot/objectively/object"

// opDunder maps a binary or unary operator opcode to the dunder name the
// interpreter looks up on the left (or sole) operand. The concrete
// arithmetic lives in package builtin, which installs these dunders on the
// primitive kinds; interp itself only ever does the lookup-and-call.
var opDunder = map[Op]string{
	OpAdd: "__add__", OpSub: "__sub__", OpMul: "__mul__", OpDiv: "__div__", OpMod: "__mod__",
	OpAnd: "__and__", OpOr: "__or__", OpXor: "__xor__", OpShl: "__shl__", OpShr: "__shr__",
	OpEq: "__eq__", OpNe: "__ne__", OpGt: "__gt__", OpLt: "__lt__", OpGe: "__ge__", OpLe: "__le__",
	OpNeg: "__neg__", OpNot: "__not__", OpInv: "__inv__",
}

type stopIteration struct{}

// Run executes closure(args) to completion under ctx, returning its return
// value or the unhandled exception that escaped every try frame.
func Run(ctx *Context, closure *object.Closure, args *object.Tuple) (object.Object, error) {
	f, err := newFrame(ctx.Group, closure, args)
	if err != nil {
		return nil, err
	}
	ctx.frames = append(ctx.frames, f)
	defer func() { ctx.frames = ctx.frames[:len(ctx.frames)-1] }()

	for {
		f.clearTemp()
		if ctx.Probe != nil {
			if err := ctx.Probe.Tick(); err != nil {
				if v, handled, herr := handleRaise(f, err); handled {
					if herr != nil {
						return nil, herr
					}
					_ = v
					continue
				}
				return nil, err
			}
		}

		ret, done, err := step(ctx, f)
		if err != nil {
			if _, handled, herr := handleRaise(f, err); handled {
				if herr != nil {
					return nil, herr
				}
				continue
			}
			return nil, err
		}
		if done {
			return ret, nil
		}
	}
}

// handleRaise implements the try-stack recovery rule: pop
// one try-stack entry; if present, jump there, empty the operand stack, and
// push the exception; if absent, the exception escapes this frame.
func handleRaise(f *Frame, err error) (object.Object, bool, error) {
	if len(f.tries) == 0 {
		return nil, false, err
	}
	entry := f.tries[len(f.tries)-1]
	f.tries = f.tries[:len(f.tries)-1]
	f.pc = entry.target
	f.operand = nil
	exc, ok := object.AsException(err)
	var pushed object.Object
	if ok {
		pushed = exc
	} else {
		pushed, _ = object.AsException(object.NewRuntimeErrorf("%s", err.Error()))
	}
	f.push(pushed)
	return pushed, true, nil
}

// step decodes and executes exactly one instruction, returning (value,
// true, nil) on RETURN, or (nil, false, err) / (nil, false, nil) otherwise.
func step(ctx *Context, f *Frame) (object.Object, bool, error) {
	d := newDecoder(f.closure.Bytecode.Data, f.pc)
	op, err := d.readOp()
	if err != nil {
		return nil, false, err
	}

	switch op {
	case OpSwap:
		a, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		b, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		f.push(a)
		f.push(b)
	case OpPop:
		if _, err := f.pop(); err != nil {
			return nil, false, err
		}
	case OpDup:
		v, err := f.peek()
		if err != nil {
			return nil, false, err
		}
		f.push(v)
	case OpDup2:
		vals, err := f.popN(2)
		if err != nil {
			return nil, false, err
		}
		f.push(vals[0])
		f.push(vals[1])
		f.push(vals[0])
		f.push(vals[1])

	case OpBytes:
		view, err := d.readBytesLiteral(ctx.Group, f.closure.Bytecode)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(view))
	case OpInt:
		v, err := d.readVarint()
		if err != nil {
			return nil, false, err
		}
		i, err := object.NewIntEx(ctx.Group, v)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(i))
	case OpFloat:
		v, err := d.readFloat()
		if err != nil {
			return nil, false, err
		}
		fl, err := object.NewFloatEx(ctx.Group, v)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(fl))
	case OpSlice:
		vals, err := f.popN(2)
		if err != nil {
			return nil, false, err
		}
		s, err := object.NewSlice(ctx.Group, vals[0], vals[1])
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(s))
	case OpNone:
		f.push(object.NoneSingleton)
	case OpTrue:
		f.push(object.TrueSingleton)
	case OpFalse:
		f.push(object.FalseSingleton)

	case OpTuple0, OpTuple1, OpTuple2, OpTuple3, OpTuple4:
		n := int(op - OpTuple0)
		vals, err := f.popN(n)
		if err != nil {
			return nil, false, err
		}
		t, err := object.NewTupleEx(ctx.Group, vals)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(t))
	case OpTupleN:
		n, err := d.readUvarint()
		if err != nil {
			return nil, false, err
		}
		vals, err := f.popN(int(n))
		if err != nil {
			return nil, false, err
		}
		t, err := object.NewTupleEx(ctx.Group, vals)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(t))
	case OpClosure:
		code, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		bytes, ok := code.(*object.Bytes)
		if !ok {
			return nil, false, object.NewTypeErrorf("CLOSURE operand must be bytes, got %s", object.KindName(code))
		}
		env, err := f.locals.Clone(ctx.Group)
		if err != nil {
			return nil, false, err
		}
		f.root(env)
		c, err := object.NewClosure(ctx.Group, bytes, env)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(c))
	case OpClosureBind:
		count, err := d.readUvarint()
		if err != nil {
			return nil, false, err
		}
		names := make([][]byte, count)
		for i := range names {
			view, err := d.readBytesLiteral(ctx.Group, f.closure.Bytecode)
			if err != nil {
				return nil, false, err
			}
			names[i] = view.Bytes()
		}
		code, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		bytes, ok := code.(*object.Bytes)
		if !ok {
			return nil, false, object.NewTypeErrorf("CLOSURE_BIND operand must be bytes, got %s", object.KindName(code))
		}
		env, err := object.NewDict(ctx.Group)
		if err != nil {
			return nil, false, err
		}
		f.root(env)
		for _, name := range names {
			key, err := object.NewBytesEx(ctx.Group, name)
			if err != nil {
				return nil, false, err
			}
			f.root(key)
			if v, found, err := f.locals.Get(key); err == nil && found {
				if err := env.Set(key, v); err != nil {
					return nil, false, err
				}
			}
		}
		c, err := object.NewClosure(ctx.Group, bytes, env)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(c))
	case OpEmptyDict:
		dict, err := object.NewDict(ctx.Group)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(dict))
	case OpClass:
		dict, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		base, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		memberDict, ok := dict.(*object.Dict)
		if !ok {
			return nil, false, object.NewTypeErrorf("CLASS member dict must be a dict, got %s", object.KindName(dict))
		}
		var baseType *object.Type
		if base != object.NoneSingleton {
			baseType, ok = base.(*object.Type)
			if !ok {
				return nil, false, object.NewTypeErrorf("CLASS base must be a type or None, got %s", object.KindName(base))
			}
		}
		t, err := object.NewType(baseType, memberDict)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(t))

	case OpGetAttr:
		view, err := d.readBytesLiteral(ctx.Group, f.closure.Bytecode)
		if err != nil {
			return nil, false, err
		}
		self, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		v, err := object.GetAttr(self, string(view.Bytes()))
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(v))
	case OpSetAttr:
		view, err := d.readBytesLiteral(ctx.Group, f.closure.Bytecode)
		if err != nil {
			return nil, false, err
		}
		value, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		self, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		if err := object.SetAttr(self, string(view.Bytes()), value); err != nil {
			return nil, false, err
		}
	case OpDelAttr:
		view, err := d.readBytesLiteral(ctx.Group, f.closure.Bytecode)
		if err != nil {
			return nil, false, err
		}
		self, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		if err := object.DelAttr(self, string(view.Bytes())); err != nil {
			return nil, false, err
		}
	case OpGetItem:
		idx, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		container, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		v, err := getItem(container, idx)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(v))
	case OpSetItem:
		value, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		idx, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		container, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		if err := setItem(container, idx, value); err != nil {
			return nil, false, err
		}
	case OpDelItem:
		idx, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		container, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		if err := delItem(container, idx); err != nil {
			return nil, false, err
		}
	case OpGetLocal:
		view, err := d.readBytesLiteral(ctx.Group, f.closure.Bytecode)
		if err != nil {
			return nil, false, err
		}
		key, err := object.NewBytesEx(ctx.Group, view.Bytes())
		if err != nil {
			return nil, false, err
		}
		v, found, err := f.locals.Get(key)
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, object.NewKeyError(key)
		}
		f.push(f.root(v))
	case OpSetLocal:
		view, err := d.readBytesLiteral(ctx.Group, f.closure.Bytecode)
		if err != nil {
			return nil, false, err
		}
		value, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		key, err := object.NewBytesEx(ctx.Group, view.Bytes())
		if err != nil {
			return nil, false, err
		}
		if err := f.locals.Set(key, value); err != nil {
			return nil, false, err
		}
	case OpDelLocal:
		view, err := d.readBytesLiteral(ctx.Group, f.closure.Bytecode)
		if err != nil {
			return nil, false, err
		}
		key, err := object.NewBytesEx(ctx.Group, view.Bytes())
		if err != nil {
			return nil, false, err
		}
		found, err := f.locals.Del(key)
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, object.NewKeyError(key)
		}
	case OpLoadArgs:
		f.push(f.args)

	case OpJump:
		target, err := d.readOffset()
		if err != nil {
			return nil, false, err
		}
		f.pc = target
		return nil, false, nil
	case OpJumpIf:
		target, err := d.readOffset()
		if err != nil {
			return nil, false, err
		}
		cond, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		truthy, err := object.IsTruthy(cond)
		if err != nil {
			return nil, false, err
		}
		f.pc = d.pos
		if truthy {
			f.pc = target
		}
		return nil, false, nil
	case OpTry:
		target, err := d.readOffset()
		if err != nil {
			return nil, false, err
		}
		f.tries = append(f.tries, tryEntry{target: target})
	case OpTryEnd:
		if len(f.tries) == 0 {
			return nil, false, object.NewRuntimeErrorf("TRY_END with empty try-stack")
		}
		f.tries = f.tries[:len(f.tries)-1]
	case OpCall:
		argsVal, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		target, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		argsTuple, ok := argsVal.(*object.Tuple)
		if !ok {
			return nil, false, object.NewTypeErrorf("CALL arguments must be a tuple, got %s", object.KindName(argsVal))
		}
		result, err := object.Call(target, argsTuple)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(result))
	case OpSpawn:
		argsVal, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		target, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		argsTuple, ok := argsVal.(*object.Tuple)
		if !ok {
			return nil, false, object.NewTypeErrorf("SPAWN arguments must be a tuple, got %s", object.KindName(argsVal))
		}
		closure, ok := target.(*object.Closure)
		if !ok {
			return nil, false, object.NewTypeErrorf("SPAWN target must be a closure, got %s", object.KindName(target))
		}
		if ctx.Spawn == nil {
			return nil, false, object.NewRuntimeErrorf("no scheduler installed to spawn threads")
		}
		handle, err := ctx.Spawn(ctx.Group, closure, argsTuple)
		if err != nil {
			return nil, false, err
		}
		f.push(f.root(handle))
	case OpRaise:
		excVal, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		exc, ok := excVal.(*object.Exception)
		if !ok {
			return nil, false, object.NewTypeErrorf("RAISE operand must be an exception, got %s", object.KindName(excVal))
		}
		return nil, false, exc
	case OpReturn:
		v, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	case OpYield:
		v, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		if ctx.Yield == nil {
			return nil, false, object.NewRuntimeErrorf("no scheduler installed to yield on")
		}
		if err := ctx.Yield(v); err != nil {
			return nil, false, err
		}
	case OpRaiseIfNotStop:
		excVal, err := f.pop()
		if err != nil {
			return nil, false, err
		}
		exc, ok := excVal.(*object.Exception)
		if !ok {
			return nil, false, object.NewTypeErrorf("RAISE_IF_NOT_STOP operand must be an exception, got %s", object.KindName(excVal))
		}
		if !isStopIteration(exc) {
			return nil, false, exc
		}

	default:
		if name, isOp := opDunder[op]; isOp {
			if err := execOperator(ctx, f, op, name); err != nil {
				return nil, false, err
			}
		} else {
			return nil, false, object.NewRuntimeErrorf("unknown opcode %d at offset %d", byte(op), f.pc)
		}
	}

	f.pc = d.pos
	return nil, false, nil
}

func isStopIteration(exc *object.Exception) bool {
	return exc.Hdr().Type.IsSubclass(object.TypeStopIteration)
}

func execOperator(ctx *Context, f *Frame, op Op, dunder string) error {
	isUnary := op == OpNeg || op == OpNot || op == OpInv
	if isUnary {
		a, err := f.pop()
		if err != nil {
			return err
		}
		method, err := object.GetAttr(a, dunder)
		if err != nil {
			return err
		}
		result, err := object.Call(method, object.NewTuple([]object.Object{a}))
		if err != nil {
			return err
		}
		f.push(f.root(result))
		return nil
	}
	vals, err := f.popN(2)
	if err != nil {
		return err
	}
	a, b := vals[0], vals[1]
	method, err := object.GetAttr(a, dunder)
	if err != nil {
		return err
	}
	result, err := object.Call(method, object.NewTuple([]object.Object{a, b}))
	if err != nil {
		return err
	}
	f.push(f.root(result))
	return nil
}
