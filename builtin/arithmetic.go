// Package builtin installs the primitive operator dunders (__add__,
// __eq__'s arithmetic cousins, bitwise and comparison operators, the unary
// operators) plus the container __iter__ dunders on top of the bare object
// model in package object. Package object only wires the dunders its own
// internals need (__hash__, __eq__, __bool__, for dict/GC correctness);
// everything a compiled program's arithmetic opcodes and for-loops dispatch
// through lives here, grounded on the same per-kind builtin-function
// pattern object's own init() functions use.
package builtin

import "github.com/rhelmot/objectively/object"

// opHandler is a subcommand-table idiom (a name mapped to a handler plus a
// one-line description), generalized from strings to dunder names so the
// install loop below stays a single pass instead of a wall of repeated
// SetMember calls.
type opHandler struct {
	fn   func(args *object.Tuple) (object.Object, error)
	help string
}

// Install wires every primitive-kind operator dunder onto its static Type.
// Called once by cmd/objectively's startup sequence, after package object's
// own init has run (Go guarantees import-order init, and object has no
// import on builtin, so this is always safe to call from main).
func Install() {
	for name, h := range intOps {
		object.TypeInt.SetMember(name, newBuiltin(name, h.fn))
	}
	for name, h := range floatOps {
		object.TypeFloat.SetMember(name, newBuiltin(name, h.fn))
	}
	for name, h := range bytesOps {
		object.TypeBytes.SetMember(name, newBuiltin(name, h.fn))
	}
	for name, h := range listOps {
		object.TypeList.SetMember(name, newBuiltin(name, h.fn))
	}
	for name, h := range dictOps {
		object.TypeDict.SetMember(name, newBuiltin(name, h.fn))
	}
}

func newBuiltin(name string, fn func(args *object.Tuple) (object.Object, error)) *object.BuiltinFunction {
	b, err := object.NewBuiltin(object.RootGroup, name, fn)
	if err != nil {
		// RootGroup's allowance is set large enough at startup that wiring a
		// few hundred static builtins can't plausibly exhaust it; a failure
		// here means the CLI entry point mis-sized HEAP_MEM, which is a
		// startup configuration bug, not a condition this package can
		// meaningfully recover from.
		panic(err)
	}
	return b
}

func numericOperand(o object.Object) (f float64, ok bool) {
	switch v := o.(type) {
	case *object.Int:
		return float64(v.Value), true
	case *object.Float:
		return v.Value, true
	}
	return 0, false
}

// binaryNumeric builds a dunder body implementing one arithmetic operator
// across int/int, int/float, float/int, and float/float, promoting to
// float whenever either operand is one (no numeric tower beyond
// int64/float64, so this promote-to-float rule is the entire coercion
// story).
func binaryNumeric(name string, onInt func(a, b int64) (int64, error), onFloat func(a, b float64) float64) func(args *object.Tuple) (object.Object, error) {
	return func(args *object.Tuple) (object.Object, error) {
		a, b := args.Data[0], args.Data[1]
		ai, aok := a.(*object.Int)
		bi, bok := b.(*object.Int)
		if aok && bok && onInt != nil {
			v, err := onInt(ai.Value, bi.Value)
			if err != nil {
				return nil, err
			}
			return object.NewIntEx(a.Hdr().Group, v)
		}
		af, aFloatOK := numericOperand(a)
		bf, bFloatOK := numericOperand(b)
		if !aFloatOK || !bFloatOK {
			return nil, object.NewTypeErrorf("unsupported operand types for %s: %s and %s", name, object.KindName(a), object.KindName(b))
		}
		return object.NewFloatEx(a.Hdr().Group, onFloat(af, bf))
	}
}

func comparisonNumeric(name string, cmp func(a, b float64) bool) func(args *object.Tuple) (object.Object, error) {
	return func(args *object.Tuple) (object.Object, error) {
		a, b := args.Data[0], args.Data[1]
		af, aok := numericOperand(a)
		bf, bok := numericOperand(b)
		if !aok || !bok {
			return nil, object.NewTypeErrorf("unsupported operand types for %s: %s and %s", name, object.KindName(a), object.KindName(b))
		}
		return object.BoolRaw(cmp(af, bf)), nil
	}
}

var intOps = map[string]opHandler{
	"__add__": {help: "integer/float addition", fn: binaryNumeric("+",
		func(a, b int64) (int64, error) { return a + b, nil },
		func(a, b float64) float64 { return a + b })},
	"__sub__": {help: "integer/float subtraction", fn: binaryNumeric("-",
		func(a, b int64) (int64, error) { return a - b, nil },
		func(a, b float64) float64 { return a - b })},
	"__mul__": {help: "integer/float multiplication", fn: binaryNumeric("*",
		func(a, b int64) (int64, error) { return a * b, nil },
		func(a, b float64) float64 { return a * b })},
	"__div__": {help: "integer/float division", fn: binaryNumeric("/",
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, object.NewZeroDivisionError()
			}
			return a / b, nil
		},
		func(a, b float64) float64 { return a / b })},
	"__mod__": {help: "integer/float modulo", fn: binaryNumeric("%",
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, object.NewZeroDivisionError()
			}
			return a % b, nil
		},
		func(a, b float64) float64 {
			m := a - b*float64(int64(a/b))
			return m
		})},
	"__and__": {help: "bitwise and", fn: intOnly("&", func(a, b int64) int64 { return a & b })},
	"__or__":  {help: "bitwise or", fn: intOnly("|", func(a, b int64) int64 { return a | b })},
	"__xor__": {help: "bitwise xor", fn: intOnly("^", func(a, b int64) int64 { return a ^ b })},
	"__shl__": {help: "bitwise left shift", fn: intOnly("<<", func(a, b int64) int64 { return a << uint64(b) })},
	"__shr__": {help: "bitwise right shift", fn: intOnly(">>", func(a, b int64) int64 { return a >> uint64(b) })},
	"__gt__":  {help: "greater than", fn: comparisonNumeric(">", func(a, b float64) bool { return a > b })},
	"__lt__":  {help: "less than", fn: comparisonNumeric("<", func(a, b float64) bool { return a < b })},
	"__ge__":  {help: "greater or equal", fn: comparisonNumeric(">=", func(a, b float64) bool { return a >= b })},
	"__le__":  {help: "less or equal", fn: comparisonNumeric("<=", func(a, b float64) bool { return a <= b })},
	"__ne__":  {help: "not equal", fn: notEqual},
	"__neg__": {help: "integer negation", fn: func(args *object.Tuple) (object.Object, error) {
		v := args.Data[0].(*object.Int)
		return object.NewIntEx(v.Hdr().Group, -v.Value)
	}},
	"__inv__": {help: "bitwise complement", fn: func(args *object.Tuple) (object.Object, error) {
		v := args.Data[0].(*object.Int)
		return object.NewIntEx(v.Hdr().Group, ^v.Value)
	}},
	"__not__": {help: "logical not", fn: logicalNot},
}

func intOnly(name string, op func(a, b int64) int64) func(args *object.Tuple) (object.Object, error) {
	return func(args *object.Tuple) (object.Object, error) {
		a, ok1 := args.Data[0].(*object.Int)
		b, ok2 := args.Data[1].(*object.Int)
		if !ok1 || !ok2 {
			return nil, object.NewTypeErrorf("unsupported operand types for %s: %s and %s", name, object.KindName(args.Data[0]), object.KindName(args.Data[1]))
		}
		return object.NewIntEx(a.Hdr().Group, op(a.Value, b.Value))
	}
}

func notEqual(args *object.Tuple) (object.Object, error) {
	eq := object.Equals(args.Data[0], args.Data[1])
	if !eq.OK {
		return nil, eq.Err
	}
	return object.BoolRaw(!eq.Value), nil
}

func logicalNot(args *object.Tuple) (object.Object, error) {
	truthy, err := object.IsTruthy(args.Data[0])
	if err != nil {
		return nil, err
	}
	return object.BoolRaw(!truthy), nil
}

var floatOps = map[string]opHandler{
	"__add__": {help: "float addition", fn: binaryNumeric("+", nil, func(a, b float64) float64 { return a + b })},
	"__sub__": {help: "float subtraction", fn: binaryNumeric("-", nil, func(a, b float64) float64 { return a - b })},
	"__mul__": {help: "float multiplication", fn: binaryNumeric("*", nil, func(a, b float64) float64 { return a * b })},
	"__div__": {help: "float division", fn: binaryNumeric("/", nil, func(a, b float64) float64 { return a / b })},
	"__gt__":  {help: "greater than", fn: comparisonNumeric(">", func(a, b float64) bool { return a > b })},
	"__lt__":  {help: "less than", fn: comparisonNumeric("<", func(a, b float64) bool { return a < b })},
	"__ge__":  {help: "greater or equal", fn: comparisonNumeric(">=", func(a, b float64) bool { return a >= b })},
	"__le__":  {help: "less or equal", fn: comparisonNumeric("<=", func(a, b float64) bool { return a <= b })},
	"__ne__":  {help: "not equal", fn: notEqual},
	"__neg__": {help: "float negation", fn: func(args *object.Tuple) (object.Object, error) {
		v := args.Data[0].(*object.Float)
		return object.NewFloatEx(v.Hdr().Group, -v.Value)
	}},
	"__not__": {help: "logical not", fn: logicalNot},
}

var bytesOps = map[string]opHandler{
	"__add__": {help: "byte-sequence concatenation", fn: func(args *object.Tuple) (object.Object, error) {
		a := args.Data[0]
		b, ok := args.Data[1].(*object.Bytes)
		if !ok {
			return nil, object.NewTypeErrorf("unsupported operand types for +: %s and %s", object.KindName(a), object.KindName(args.Data[1]))
		}
		ab := a.(*object.Bytes)
		merged := make([]byte, 0, len(ab.Data)+len(b.Data))
		merged = append(merged, ab.Data...)
		merged = append(merged, b.Data...)
		return object.NewBytesEx(a.Hdr().Group, merged)
	}},
}

var listOps = map[string]opHandler{
	"__add__": {help: "list concatenation", fn: func(args *object.Tuple) (object.Object, error) {
		a := args.Data[0].(*object.List)
		b, ok := args.Data[1].(*object.List)
		if !ok {
			return nil, object.NewTypeErrorf("unsupported operand types for +: %s and %s", object.KindName(args.Data[0]), object.KindName(args.Data[1]))
		}
		merged := make([]object.Object, 0, len(a.Data)+len(b.Data))
		merged = append(merged, a.Data...)
		merged = append(merged, b.Data...)
		return object.NewList(a.Hdr().Group, merged)
	}},
	"__iter__": {help: "list-iterator construction, the for-loop protocol's entry point", fn: func(args *object.Tuple) (object.Object, error) {
		l := args.Data[0].(*object.List)
		return object.NewListIterator(l.Hdr().Group, l)
	}},
}

var dictOps = map[string]opHandler{
	"__iter__": {help: "dict-iterator construction, yielding (key, value) pairs", fn: func(args *object.Tuple) (object.Object, error) {
		d := args.Data[0].(*object.Dict)
		return object.NewDictIterator(d.Hdr().Group, d)
	}},
}
