package object

import "testing"

func TestIsSubclassWalksChain(t *testing.T) {
	if !TypeAttributeError.IsSubclass(TypeException) {
		t.Fatal("expected AttributeError to be a subclass of Exception")
	}
	if TypeException.IsSubclass(TypeAttributeError) {
		t.Fatal("expected Exception not to be a subclass of its own subclass")
	}
	if !TypeObject.IsSubclass(TypeObject) {
		t.Fatal("expected every type to be a subclass of itself")
	}
}

func TestNewTypeInheritsBaseConstructor(t *testing.T) {
	rootForTest(t)
	members, err := NewDict(RootGroup)
	if err != nil {
		t.Fatal(err)
	}
	derived, err := NewType(TypeObject, members)
	if err != nil {
		t.Fatal(err)
	}
	if derived.Constructor == nil {
		t.Fatal("expected a type derived from object to inherit its basic-object constructor")
	}
	inst, err := derived.Constructor(derived, NewTuple(nil))
	if err != nil {
		t.Fatal(err)
	}
	if inst.Hdr().Type != derived {
		t.Fatal("expected the constructed instance's type to be the derived type")
	}
}

func TestTypeCallBuildsTypeFromTypeType(t *testing.T) {
	rootForTest(t)
	members, err := NewDict(RootGroup)
	if err != nil {
		t.Fatal(err)
	}
	if err := members.Set(NewBytes([]byte("greeting")), NewBytes([]byte("hi"))); err != nil {
		t.Fatal(err)
	}
	result, err := Call(TypeType, NewTuple([]Object{TypeObject, members}))
	if err != nil {
		t.Fatal(err)
	}
	derived, ok := result.(*Type)
	if !ok {
		t.Fatalf("expected a *Type, got %#v", result)
	}
	if derived.Base != TypeObject {
		t.Fatal("expected the constructed type's base to be TypeObject")
	}
	v, err := GetAttr(derived, "greeting")
	if err != nil {
		t.Fatal(err)
	}
	if string(v.(*Bytes).Data) != "hi" {
		t.Fatalf("expected the member to round-trip, got %q", v.(*Bytes).Data)
	}
}

func TestSetMemberBumpsEpoch(t *testing.T) {
	rootForTest(t)
	members, err := NewDict(RootGroup)
	if err != nil {
		t.Fatal(err)
	}
	derived, err := NewType(TypeObject, members)
	if err != nil {
		t.Fatal(err)
	}
	before := derived.Epoch()
	derived.SetMember("x", NewInt(1))
	if derived.Epoch() == before {
		t.Fatal("expected SetMember to bump the type's epoch")
	}
}
