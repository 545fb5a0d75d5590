package object

import "testing"

func TestGetAttrFallsThroughToTypeChain(t *testing.T) {
	rootForTest(t)
	inst, err := NewBasicObject(TypeObject, RootGroup)
	if err != nil {
		t.Fatal(err)
	}
	// __hash__ lives on TypeObject, not on the instance's own dict.
	method, err := GetAttr(inst, "__hash__")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := method.(*BoundMethod); !ok {
		t.Fatalf("expected a type-chain function hit to come back bound, got %#v", method)
	}
	result, err := Call(method, NewTuple(nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result.(*Int); !ok {
		t.Fatalf("expected __hash__ to return an int, got %#v", result)
	}
}

func TestGetAttrUnknownNameIsAttributeError(t *testing.T) {
	rootForTest(t)
	inst, err := NewBasicObject(TypeObject, RootGroup)
	if err != nil {
		t.Fatal(err)
	}
	_, err = GetAttr(inst, "nope")
	if err == nil {
		t.Fatal("expected an unknown attribute to fail")
	}
	if exc, ok := AsException(err); !ok || !exc.Hdr().Type.IsSubclass(TypeAttributeError) {
		t.Fatalf("expected AttributeError, got %v", err)
	}
}

func TestDunderOnInstanceNeverShadowsTypeChain(t *testing.T) {
	rootForTest(t)
	inst, err := NewBasicObject(TypeObject, RootGroup)
	if err != nil {
		t.Fatal(err)
	}
	// Setting a same-named instance attribute must not affect a dunder
	// lookup: dunders always resolve through the type chain (see the
	// doc comment on isDunder).
	if err := SetAttr(inst, "__hash__", NewInt(999)); err != nil {
		t.Fatal(err)
	}
	method, err := GetAttr(inst, "__hash__")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := method.(*BoundMethod); !ok {
		t.Fatalf("expected __hash__ to still resolve through the type chain as a bound method, got %#v", method)
	}
}

func TestSetAttrOnTypeInstallsClassMember(t *testing.T) {
	rootForTest(t)
	members, err := NewDict(RootGroup)
	if err != nil {
		t.Fatal(err)
	}
	derived, err := NewType(TypeObject, members)
	if err != nil {
		t.Fatal(err)
	}
	if err := SetAttr(derived, "x", NewInt(5)); err != nil {
		t.Fatal(err)
	}
	v, err := GetAttr(derived, "x")
	if err != nil {
		t.Fatal(err)
	}
	if v.(*Int).Value != 5 {
		t.Fatalf("expected the class member to round-trip, got %d", v.(*Int).Value)
	}
}

func TestAttributeCacheInvalidatesOnSetMember(t *testing.T) {
	rootForTest(t)
	members, err := NewDict(RootGroup)
	if err != nil {
		t.Fatal(err)
	}
	derived, err := NewType(TypeObject, members)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := NewBasicObject(derived, RootGroup)
	if err != nil {
		t.Fatal(err)
	}
	derived.SetMember("greet", newStaticBuiltin("greet", func(args *Tuple) (Object, error) {
		return NewInt(1), nil
	}))
	first, err := GetAttr(inst, "greet")
	if err != nil {
		t.Fatal(err)
	}
	// Redefining the member must invalidate any cached resolution (the
	// cache entry's epoch no longer matches the type's bumped epoch), not
	// keep serving the original builtin's bound method.
	derived.SetMember("greet", newStaticBuiltin("greet", func(args *Tuple) (Object, error) {
		return NewInt(2), nil
	}))
	second, err := GetAttr(inst, "greet")
	if err != nil {
		t.Fatal(err)
	}
	firstResult, err := Call(first, NewTuple(nil))
	if err != nil {
		t.Fatal(err)
	}
	secondResult, err := Call(second, NewTuple(nil))
	if err != nil {
		t.Fatal(err)
	}
	if firstResult.(*Int).Value == secondResult.(*Int).Value {
		t.Fatal("expected the two resolutions to reach different builtins after redefinition")
	}
}
