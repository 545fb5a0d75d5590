package interp

import (
	"sync"
	"testing"

	"github.com/rhelmot/objectively/builtin"
	"github.com/rhelmot/objectively/object"
)

var vmInstallOnce sync.Once

func vmTestGroup(t *testing.T) *object.Group {
	t.Helper()
	vmInstallOnce.Do(func() {
		if object.RootGroup == nil {
			object.NewRootGroup(1<<30, 0)
		}
		builtin.Install()
	})
	g, err := object.NewChildGroup(object.RootGroup, 1<<16, 0, "vm-test")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// encodeVarint matches decode.go's readVarint: standard signed LEB128.
func encodeVarint(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

func assemble(pieces ...[]byte) []byte {
	var out []byte
	for _, p := range pieces {
		out = append(out, p...)
	}
	return out
}

func op(o Op) []byte { return []byte{byte(o)} }

func litInt(v int64) []byte { return assemble(op(OpInt), encodeVarint(v)) }

// encodeUvarint matches decode.go's readUvarint: 7-bits-per-byte,
// MSB-continuation, unsigned.
func encodeUvarint(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

// bytesLiteralOperand matches decode.go's readBytesLiteral: a uvarint
// length followed by the raw bytes, embedded directly in the code stream
// rather than as a separate constant pool entry.
func bytesLiteralOperand(s string) []byte {
	return assemble(encodeUvarint(uint64(len(s))), []byte(s))
}

func litBytes(s string) []byte    { return assemble(op(OpBytes), bytesLiteralOperand(s)) }
func getAttr(name string) []byte  { return assemble(op(OpGetAttr), bytesLiteralOperand(name)) }
func getLocal(name string) []byte { return assemble(op(OpGetLocal), bytesLiteralOperand(name)) }
func setLocal(name string) []byte { return assemble(op(OpSetLocal), bytesLiteralOperand(name)) }

// patchUint32 overwrites a four-raw-byte jump/try target placeholder
// in-place, matching decode.go's readOffset encoding.
func patchUint32(dst []byte, pos, v int) {
	dst[pos] = byte(v)
	dst[pos+1] = byte(v >> 8)
	dst[pos+2] = byte(v >> 16)
	dst[pos+3] = byte(v >> 24)
}

func newTestClosure(t *testing.T, group *object.Group, code []byte) *object.Closure {
	t.Helper()
	return newTestClosureWithEnv(t, group, code, nil)
}

// newTestClosureWithEnv builds a closure whose captured environment is
// pre-populated with env, so a hand-assembled test program can GET_LOCAL
// values (lists, dicts, ...) that bytecode itself has no literal opcode to
// construct.
func newTestClosureWithEnv(t *testing.T, group *object.Group, code []byte, env map[string]object.Object) *object.Closure {
	t.Helper()
	bc, err := object.NewBytesEx(group, code)
	if err != nil {
		t.Fatal(err)
	}
	envDict, err := object.NewDict(group)
	if err != nil {
		t.Fatal(err)
	}
	for name, v := range env {
		key, err := object.NewBytesEx(group, []byte(name))
		if err != nil {
			t.Fatal(err)
		}
		if err := envDict.Set(key, v); err != nil {
			t.Fatal(err)
		}
	}
	c, err := object.NewClosure(group, bc, envDict)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRunAddition(t *testing.T) {
	g := vmTestGroup(t)
	code := assemble(litInt(2), litInt(3), op(OpAdd), op(OpReturn))
	closure := newTestClosure(t, g, code)
	ctx := &Context{Group: g}
	args := object.NewTuple(nil)

	result, err := Run(ctx, closure, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum, ok := result.(*object.Int)
	if !ok || sum.Value != 5 {
		t.Fatalf("expected int 5, got %#v", result)
	}
}

func TestRunDivisionByZeroRaises(t *testing.T) {
	g := vmTestGroup(t)
	code := assemble(litInt(5), litInt(0), op(OpDiv), op(OpReturn))
	closure := newTestClosure(t, g, code)
	ctx := &Context{Group: g}
	args := object.NewTuple(nil)

	_, err := Run(ctx, closure, args)
	exc, ok := object.AsException(err)
	if !ok || !exc.Hdr().Type.IsSubclass(object.TypeZeroDivisionError) {
		t.Fatalf("expected ZeroDivisionError, got %v", err)
	}
}

func TestRunTryRecoversFromRaisedException(t *testing.T) {
	g := vmTestGroup(t)
	// TRY catch; LIT_INT 1; LIT_INT 0; OP_DIV; JUMP done; catch: POP; LIT_INT -1; done: RETURN
	tryOp := op(OpTry)
	var code []byte
	code = append(code, tryOp...)
	tryOperandPos := len(code)
	code = append(code, 0, 0, 0, 0) // offset placeholder, patched below
	code = append(code, litInt(1)...)
	code = append(code, litInt(0)...)
	code = append(code, op(OpDiv)...)
	jumpOp := op(OpJump)
	code = append(code, jumpOp...)
	jumpOperandPos := len(code)
	code = append(code, 0, 0, 0, 0)
	catchTarget := len(code)
	code = append(code, op(OpPop)...)
	code = append(code, litInt(-1)...)
	doneTarget := len(code)
	code = append(code, op(OpReturn)...)

	putUint32 := func(dst []byte, pos int, v int) {
		dst[pos] = byte(v)
		dst[pos+1] = byte(v >> 8)
		dst[pos+2] = byte(v >> 16)
		dst[pos+3] = byte(v >> 24)
	}
	putUint32(code, tryOperandPos, catchTarget)
	putUint32(code, jumpOperandPos, doneTarget)

	closure := newTestClosure(t, g, code)
	ctx := &Context{Group: g}
	args := object.NewTuple(nil)

	result, err := Run(ctx, closure, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := result.(*object.Int)
	if !ok || v.Value != -1 {
		t.Fatalf("expected int -1 from the catch branch, got %#v", result)
	}
}

// TestRunForLoopOverListViaIterDunder hand-assembles the for-loop protocol
// itself -- call __iter__, then repeatedly TRY/CALL the resulting iterator
// and RAISE_IF_NOT_STOP out of the catch branch -- rather than driving
// object.ListIterator directly from Go, so it exercises the same bytecode
// path a compiled for-loop would.
func TestRunForLoopOverListViaIterDunder(t *testing.T) {
	g := vmTestGroup(t)
	l, err := object.NewList(g, []object.Object{object.NewInt(1), object.NewInt(2), object.NewInt(3)})
	if err != nil {
		t.Fatal(err)
	}

	var code []byte
	code = append(code, getLocal("lst")...)
	code = append(code, getAttr("__iter__")...)
	code = append(code, op(OpTuple0)...)
	code = append(code, op(OpCall)...)
	code = append(code, setLocal("it")...)
	code = append(code, litInt(0)...)
	code = append(code, setLocal("acc")...)

	loopStart := len(code)
	code = append(code, op(OpTry)...)
	tryOperandPos := len(code)
	code = append(code, 0, 0, 0, 0)
	code = append(code, getLocal("it")...)
	code = append(code, op(OpTuple0)...)
	code = append(code, op(OpCall)...)
	code = append(code, setLocal("val")...)
	code = append(code, getLocal("acc")...)
	code = append(code, getLocal("val")...)
	code = append(code, op(OpAdd)...)
	code = append(code, setLocal("acc")...)
	code = append(code, op(OpTryEnd)...)
	code = append(code, op(OpJump)...)
	jumpOperandPos := len(code)
	code = append(code, 0, 0, 0, 0)

	catchTarget := len(code)
	code = append(code, op(OpRaiseIfNotStop)...)
	code = append(code, getLocal("acc")...)
	code = append(code, op(OpReturn)...)

	patchUint32(code, tryOperandPos, catchTarget)
	patchUint32(code, jumpOperandPos, loopStart)

	closure := newTestClosureWithEnv(t, g, code, map[string]object.Object{"lst": l})
	ctx := &Context{Group: g}
	args := object.NewTuple(nil)

	result, err := Run(ctx, closure, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum, ok := result.(*object.Int)
	if !ok || sum.Value != 6 {
		t.Fatalf("expected the for-loop to sum the list to 6, got %#v", result)
	}
}

// TestRunDictIteratorRaisesRuntimeErrorOnMidIterationMutation drives a
// dict's __iter__ protocol via bytecode, mutates the dict with SET_ITEM
// between two next() calls, and confirms the second call surfaces
// RuntimeError rather than silently continuing over stale entries.
func TestRunDictIteratorRaisesRuntimeErrorOnMidIterationMutation(t *testing.T) {
	g := vmTestGroup(t)
	d, err := object.NewDict(g)
	if err != nil {
		t.Fatal(err)
	}
	k1, err := object.NewBytesEx(g, []byte("k1"))
	if err != nil {
		t.Fatal(err)
	}
	v1, err := object.NewBytesEx(g, []byte("v1"))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Set(k1, v1); err != nil {
		t.Fatal(err)
	}

	var code []byte
	code = append(code, getLocal("d")...)
	code = append(code, getAttr("__iter__")...)
	code = append(code, op(OpTuple0)...)
	code = append(code, op(OpCall)...)
	code = append(code, setLocal("it")...)

	code = append(code, getLocal("it")...)
	code = append(code, op(OpTuple0)...)
	code = append(code, op(OpCall)...)
	code = append(code, op(OpPop)...)

	code = append(code, getLocal("d")...)
	code = append(code, litBytes("k2")...)
	code = append(code, litBytes("v2")...)
	code = append(code, op(OpSetItem)...)

	code = append(code, getLocal("it")...)
	code = append(code, op(OpTuple0)...)
	code = append(code, op(OpCall)...)
	code = append(code, op(OpReturn)...)

	closure := newTestClosureWithEnv(t, g, code, map[string]object.Object{"d": d})
	ctx := &Context{Group: g}
	args := object.NewTuple(nil)

	_, err = Run(ctx, closure, args)
	exc, ok := object.AsException(err)
	if !ok || !exc.Hdr().Type.IsSubclass(object.TypeRuntimeError) {
		t.Fatalf("expected RuntimeError from iterating a mutated dict, got %v", err)
	}
}
