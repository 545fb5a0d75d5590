package object

var listTable = &Table{
	Kind:     KindList,
	Trace:    listTrace,
	Finalize: listFinalize,
	GetAttr:  listGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     NullCall,
	Size:     func(self Object) uintptr { return 32 + 8*uintptr(cap(self.(*List).Data)) },
}

// List is the mutable growable-vector Kind.
type List struct {
	Header
	Data []Object
}

func listTrace(self Object, visit func(Object) bool) bool {
	for _, v := range self.(*List).Data {
		if !visit(v) {
			return false
		}
	}
	return true
}

func listFinalize(self Object) {
	self.(*List).Data = nil
}

func listGetAttr(self Object, name string) (Object, error) {
	l := self.(*List)
	if name == "len" {
		return NewInt(int64(len(l.Data))), nil
	}
	return nil, NewAttributeError(self, name)
}

func NewList(group *Group, data []Object) (*List, error) {
	l := &List{Data: data}
	l.Table = listTable
	l.Type = TypeList
	if err := group.Reserve(SizeOf(l)); err != nil {
		return nil, err
	}
	l.Group = group
	Register(l)
	return l, nil
}

// Append grows l by one element, reserving the incremental capacity cost
// against l's owning group before the grown backing array is installed.
// Fails RuntimeError if the calling group isn't l's owner (the cross-group
// mutation guard) and MemoryError if l's group lacks headroom.
func (l *List) Append(v Object) error {
	if err := CheckGroupWrite(l); err != nil {
		return err
	}
	oldCap := cap(l.Data)
	if len(l.Data) == oldCap {
		grown := append(l.Data, v)
		if err := l.Group.Reserve(uintptr(8 * (cap(grown) - oldCap))); err != nil {
			return err
		}
		l.Data = grown
		return nil
	}
	l.Data = append(l.Data, v)
	return nil
}

// Get returns the element at idx with negative-from-end semantics.
func (l *List) Get(idx int64) (Object, error) {
	i, err := clampIndex(idx, len(l.Data))
	if err != nil {
		return nil, err
	}
	return l.Data[i], nil
}

// Set overwrites the element at idx.
func (l *List) Set(idx int64, v Object) error {
	if err := CheckGroupWrite(l); err != nil {
		return err
	}
	i, err := clampIndex(idx, len(l.Data))
	if err != nil {
		return err
	}
	l.Data[i] = v
	return nil
}

func clampIndex(idx int64, length int) (int, error) {
	i := idx
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, NewIndexErrorf("index %d out of range for length %d", idx, length)
	}
	return int(i), nil
}

var listIteratorTable = &Table{
	Kind:     KindListIterator,
	Trace:    listIteratorTrace,
	Finalize: NullFinalize,
	GetAttr:  NullGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     listIteratorCall,
	Size:     func(Object) uintptr { return 32 },
}

// ListIterator is the Kind produced by iterating a list; calling it with no
// arguments (the for-loop protocol's `next`) advances and returns the next
// element, or raises StopIteration.
type ListIterator struct {
	Header
	List *List
	Pos  int
}

func listIteratorTrace(self Object, visit func(Object) bool) bool {
	return visit(self.(*ListIterator).List)
}

func listIteratorCall(self Object, args *Tuple) (Object, error) {
	it := self.(*ListIterator)
	if it.Pos >= len(it.List.Data) {
		return nil, NewStopIteration()
	}
	v := it.List.Data[it.Pos]
	it.Pos++
	return v, nil
}

func NewListIterator(group *Group, l *List) (*ListIterator, error) {
	it := &ListIterator{List: l}
	it.Table = listIteratorTable
	it.Type = TypeListIterator
	if err := group.Reserve(SizeOf(it)); err != nil {
		return nil, err
	}
	it.Group = group
	Register(it)
	return it, nil
}
