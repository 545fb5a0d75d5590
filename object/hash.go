package object

// HashResult and EqResult carry a success flag alongside their value so
// that an exception raised while computing __hash__/__eq__ can be told
// apart from a valid answer: hashing and equality failures are surfaced
// through a compound success-bearing result type.
type HashResult struct {
	Value uint64
	OK    bool
	Err   error
}

type EqResult struct {
	Value bool
	OK    bool
	Err   error
}

// Hasher invokes o's __hash__ (found via the ordinary dunder-skips-instance
// attribute resolution, so user-defined types can override it) and reports
// failure via the OK flag rather than a bare error return, matching the
// object_hasher callback shape the dict uses internally.
func Hasher(o Object) HashResult {
	method, err := GetAttr(o, "__hash__")
	if err != nil {
		return HashResult{Err: err}
	}
	result, err := Call(method, NewTuple([]Object{o}))
	if err != nil {
		return HashResult{Err: err}
	}
	i, ok := result.(*Int)
	if !ok {
		return HashResult{Err: NewTypeErrorf("__hash__ should return int, returned %s", KindName(result))}
	}
	return HashResult{Value: uint64(i.Value), OK: true}
}

// Equals invokes a's __eq__(a, b) and reports failure via the OK flag.
func Equals(a, b Object) EqResult {
	method, err := GetAttr(a, "__eq__")
	if err != nil {
		return EqResult{Err: err}
	}
	result, err := Call(method, NewTuple([]Object{a, b}))
	if err != nil {
		return EqResult{Err: err}
	}
	s, ok := result.(*Singleton)
	if !ok || s.Hdr().Table != boolTable {
		return EqResult{Err: NewTypeErrorf("__eq__ should return bool, returned %s", KindName(result))}
	}
	return EqResult{Value: s == TrueSingleton, OK: true}
}
