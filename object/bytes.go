package object

var bytesTable = &Table{
	Kind: KindBytes, Trace: NullTrace, Finalize: NullFinalize,
	GetAttr: bytesGetAttr, SetAttr: NullSetAttr, DelAttr: NullDelAttr, Call: NullCall,
	Size: func(self Object) uintptr { return 24 + uintptr(len(self.(*Bytes).Data)) },
}

// Bytes is the immutable byte-sequence Kind. All language strings are
// opaque byte sequences (no Unicode processing).
type Bytes struct {
	Header
	Data []byte
}

func bytesGetAttr(self Object, name string) (Object, error) {
	b := self.(*Bytes)
	if name == "len" {
		return NewInt(int64(len(b.Data))), nil
	}
	return nil, NewAttributeError(self, name)
}

// NewBytes allocates an immutable bytes object against the root group,
// the variant used where no particular group is at hand (error messages,
// the object package's own bootstrap). Callers that know the group to bill
// use NewBytesEx.
func NewBytes(data []byte) *Bytes {
	b := &Bytes{Data: data}
	b.Table = bytesTable
	b.Type = TypeBytes
	if RootGroup != nil {
		b.Group = RootGroup
		_ = b.Group.Reserve(SizeOf(b))
	}
	Register(b)
	return b
}

func NewBytesEx(group *Group, data []byte) (*Bytes, error) {
	b := &Bytes{Data: data}
	b.Table = bytesTable
	b.Type = TypeBytes
	if err := group.Reserve(SizeOf(b)); err != nil {
		return nil, err
	}
	b.Group = group
	Register(b)
	return b, nil
}

var bytesViewTable = &Table{
	Kind:     KindBytesView,
	Trace:    bytesViewTrace,
	Finalize: NullFinalize,
	GetAttr:  bytesViewGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     NullCall,
	Size:     func(Object) uintptr { return 32 },
}

// BytesView is a non-owning slice of bytes with a back-pointer to the owner
// that keeps the backing storage alive. The bytecode decoder's
// bytes-literal operand produces these: the literal references the
// bytecode blob directly rather than copying it.
type BytesView struct {
	Header
	Owner Object // the Bytes (or another BytesView's owner) that owns the backing array
	Data  []byte // a sub-slice of Owner's storage
}

func (v *BytesView) Bytes() []byte { return v.Data }

func bytesViewTrace(self Object, visit func(Object) bool) bool {
	v := self.(*BytesView)
	if v.Owner != nil {
		return visit(v.Owner)
	}
	return true
}

func bytesViewGetAttr(self Object, name string) (Object, error) {
	v := self.(*BytesView)
	if name == "len" {
		return NewInt(int64(len(v.Data))), nil
	}
	return nil, NewAttributeError(self, name)
}

// NewBytesView wraps data (which must alias owner's storage) as a view.
func NewBytesView(group *Group, owner Object, data []byte) (*BytesView, error) {
	v := &BytesView{Owner: owner, Data: data}
	v.Table = bytesViewTable
	v.Type = TypeBytesView
	if err := group.Reserve(SizeOf(v)); err != nil {
		return nil, err
	}
	v.Group = group
	Register(v)
	return v, nil
}

var byteArrayTable = &Table{
	Kind:     KindByteArray,
	Trace:    NullTrace,
	Finalize: byteArrayFinalize,
	GetAttr:  byteArrayGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     NullCall,
	Size:     func(self Object) uintptr { return 32 + uintptr(cap(self.(*ByteArray).Data)) },
}

// ByteArray is the mutable byte-buffer Kind with capacity.
type ByteArray struct {
	Header
	Data []byte
}

func byteArrayFinalize(self Object) {
	self.(*ByteArray).Data = nil
}

func byteArrayGetAttr(self Object, name string) (Object, error) {
	a := self.(*ByteArray)
	if name == "len" {
		return NewInt(int64(len(a.Data))), nil
	}
	return nil, NewAttributeError(self, name)
}

func NewByteArray(group *Group, data []byte) (*ByteArray, error) {
	a := &ByteArray{Data: data}
	a.Table = byteArrayTable
	a.Type = TypeByteArray
	if err := group.Reserve(SizeOf(a)); err != nil {
		return nil, err
	}
	a.Group = group
	Register(a)
	return a, nil
}

func init() {
	TypeBytes.SetMember("__hash__", newStaticBuiltin("__hash__", func(args *Tuple) (Object, error) {
		return NewInt(int64(fnv1a(bytesOf(args.Data[0])))), nil
	}))
	TypeBytes.SetMember("__eq__", newStaticBuiltin("__eq__", func(args *Tuple) (Object, error) {
		other := args.Data[1]
		ob, ok := other.(*Bytes)
		vb, isView := other.(*BytesView)
		if !ok && !isView {
			return FalseSingleton, nil
		}
		a := bytesOf(args.Data[0])
		var b []byte
		if ok {
			b = ob.Data
		} else {
			b = vb.Data
		}
		if len(a) != len(b) {
			return FalseSingleton, nil
		}
		for i := range a {
			if a[i] != b[i] {
				return FalseSingleton, nil
			}
		}
		return TrueSingleton, nil
	}))
}

func bytesOf(o Object) []byte {
	switch v := o.(type) {
	case *Bytes:
		return v.Data
	case *BytesView:
		return v.Data
	case *ByteArray:
		return v.Data
	}
	return nil
}

func fnv1a(data []byte) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, b := range data {
		h ^= uint64(b)
		h *= prime64
	}
	return h
}
