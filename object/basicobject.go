package object

var basicObjectTable = &Table{
	Kind:     KindBasicObject,
	Trace:    basicObjectTrace,
	Finalize: NullFinalize,
	GetAttr:  basicObjectGetAttr,
	SetAttr:  basicObjectSetAttr,
	DelAttr:  basicObjectDelAttr,
	Call:     NullCall,
	// Size reports only BasicObject's own header; the attribute dict is an
	// independently registered object that bills and releases its own quota
	// (see NewBasicObject), so folding it in here would have the sweeper
	// release its bytes a second time once the dict is swept on its own.
	Size: func(self Object) uintptr {
		return 16
	},
}

// BasicObject is the catch-all instance Kind: any object created by calling
// a user-defined Type whose Base chain bottoms out at TypeObject rather than
// one of the other built-in kinds. Its own attribute storage is an
// ordinary Dict keyed by attribute-name Bytes.
type BasicObject struct {
	Header
	dict *Dict
}

func basicObjectTrace(self Object, visit func(Object) bool) bool {
	return visit(self.(*BasicObject).dict)
}

func basicObjectGetAttr(self Object, name string) (Object, error) {
	o := self.(*BasicObject)
	key := NewBytes([]byte(name))
	v, found, err := o.dict.Get(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, NewAttributeError(self, name)
	}
	return v, nil
}

func basicObjectSetAttr(self Object, name string, value Object) error {
	o := self.(*BasicObject)
	key := NewBytes([]byte(name))
	return o.dict.Set(key, value)
}

func basicObjectDelAttr(self Object, name string) error {
	o := self.(*BasicObject)
	key := NewBytes([]byte(name))
	found, err := o.dict.Del(key)
	if err != nil {
		return err
	}
	if !found {
		return NewAttributeError(self, name)
	}
	return nil
}

// NewBasicObject allocates an instance of t (or any subclass whose
// Constructor chain bottoms out here) billed against group, with an empty
// attribute dict.
func NewBasicObject(t *Type, group *Group) (Object, error) {
	dict, err := NewDict(group)
	if err != nil {
		return nil, err
	}
	o := &BasicObject{dict: dict}
	o.Table = basicObjectTable
	o.Type = t
	if err := group.Reserve(16); err != nil {
		return nil, err
	}
	o.Group = group
	Register(o)
	return o, nil
}
