package object

import "strings"

// isDunder reports whether name starts with two underscores, as protocol
// names such as "__hash__" or "__eq__" do. Dunder lookups always resolve through the type
// chain and never consult the instance's own GetAttr/dict (open question:
// resolved in favor of "always type chain", since letting an instance
// shadow its own __hash__/__eq__ would let a mutable attribute silently
// change a dict's bucketing without triggering a rehash).
func isDunder(name string) bool {
	return strings.HasPrefix(name, "__")
}

// typeChainLookup walks self's type and its Base chain looking for name
// among each Type's Members, returning the first hit.
func typeChainLookup(self Object, name string) (Object, bool) {
	t := self.Hdr().Type
	for t != nil {
		if v, ok := t.Members[name]; ok {
			return v, true
		}
		t = t.Base
	}
	return nil, false
}

// GetAttr resolves name on self. Non-dunder names first try the Kind's own
// Table.GetAttr (pseudo-fields like "len", or an instance dict for
// BasicObject); an AttributeError there falls through to the type chain.
// Dunder names skip straight to the type chain. A type-chain hit that is a
// function-like object (builtin or closure) is wrapped into a bound method
// before being returned, so `obj.method(x)` implicitly passes obj as the
// first argument.
func GetAttr(self Object, name string) (Object, error) {
	if cached, ok := cacheLookup(self, name); ok {
		return cached, nil
	}
	if !isDunder(name) {
		v, err := self.Hdr().Table.GetAttr(self, name)
		if err == nil {
			return v, nil
		}
		if _, isAttrErr := asAttributeError(err); !isAttrErr {
			return nil, err
		}
	}
	if v, ok := typeChainLookup(self, name); ok {
		bound := bindMethod(self, v)
		cacheStore(self, name, bound)
		return bound, nil
	}
	return nil, NewAttributeError(self, name)
}

// SetAttr assigns name on self. On a Type it installs a class member; on
// any other object the Table's own SetAttr stores it, dunders included. A
// dunder stored on an instance this way is never consulted by GetAttr,
// which resolves dunders through the type chain only.
func SetAttr(self Object, name string, value Object) error {
	if t, ok := self.(*Type); ok {
		t.SetMember(name, value)
		return nil
	}
	if err := self.Hdr().Table.SetAttr(self, name, value); err != nil {
		return err
	}
	invalidateCache(self, name)
	return nil
}

// DelAttr removes name from self's own storage.
func DelAttr(self Object, name string) error {
	if err := self.Hdr().Table.DelAttr(self, name); err != nil {
		return err
	}
	invalidateCache(self, name)
	return nil
}

func asAttributeError(err error) (*Exception, bool) {
	exc, ok := AsException(err)
	if !ok {
		return nil, false
	}
	t := exc.Hdr().Type
	for t != nil {
		if t == TypeAttributeError {
			return exc, true
		}
		t = t.Base
	}
	return nil, false
}
