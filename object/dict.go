package object

const dictInitialBuckets = 8

var dictTable = &Table{
	Kind:     KindDict,
	Trace:    dictTrace,
	Finalize: dictFinalize,
	GetAttr:  dictGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     NullCall,
	Size:     func(self Object) uintptr { return 40 + 24*uintptr(len(self.(*Dict).buckets)) },
}

type dictEntry struct {
	hash  uint64
	key   Object
	value Object
	next  *dictEntry
}

// Dict is the open hash map keyed by arbitrary objects: equality via
// __eq__, hashing via __hash__, collisions
// resolved by a linked chain per bucket, and a monotonically increasing
// generation counter that lets iterators detect concurrent mutation.
type Dict struct {
	Header
	buckets    []*dictEntry
	count      int
	generation uint64
}

func dictTrace(self Object, visit func(Object) bool) bool {
	d := self.(*Dict)
	for _, head := range d.buckets {
		for e := head; e != nil; e = e.next {
			if !visit(e.key) {
				return false
			}
			if !visit(e.value) {
				return false
			}
		}
	}
	return true
}

func dictFinalize(self Object) {
	d := self.(*Dict)
	d.buckets = nil
}

func dictGetAttr(self Object, name string) (Object, error) {
	d := self.(*Dict)
	if name == "len" {
		return NewInt(int64(d.count)), nil
	}
	return nil, NewAttributeError(self, name)
}

// NewDict allocates an empty dict against group.
func NewDict(group *Group) (*Dict, error) {
	d := &Dict{buckets: make([]*dictEntry, dictInitialBuckets)}
	d.Table = dictTable
	d.Type = TypeDict
	if err := group.Reserve(SizeOf(d)); err != nil {
		return nil, err
	}
	d.Group = group
	Register(d)
	return d, nil
}

// Entry is an exported (key, value) pair, used by iteration helpers and by
// Type construction (calling type(base, member_dict)).
type Entry struct {
	Key   Object
	Value Object
}

func (d *Dict) entries() []Entry {
	result := make([]Entry, 0, d.count)
	for _, head := range d.buckets {
		for e := head; e != nil; e = e.next {
			result = append(result, Entry{Key: e.key, Value: e.value})
		}
	}
	return result
}

func (d *Dict) bucketFor(hash uint64) int {
	return int(hash % uint64(len(d.buckets)))
}

func (d *Dict) find(key Object, hash uint64) (*dictEntry, error) {
	for e := d.buckets[d.bucketFor(hash)]; e != nil; e = e.next {
		if e.hash != hash {
			continue
		}
		eq := Equals(key, e.key)
		if !eq.OK {
			return nil, eq.Err
		}
		if eq.Value {
			return e, nil
		}
	}
	return nil, nil
}

// Get looks up key, returning (value, found, error). error is non-nil only
// if hashing or equality raised an exception.
func (d *Dict) Get(key Object) (Object, bool, error) {
	h := Hasher(key)
	if !h.OK {
		return nil, false, h.Err
	}
	e, err := d.find(key, h.Value)
	if err != nil {
		return nil, false, err
	}
	if e == nil {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set inserts or overwrites key -> value, rehashing (growing capacity by
// 2*cap+3) if the load factor exceeds 1.
func (d *Dict) Set(key, value Object) error {
	if err := CheckGroupWrite(d); err != nil {
		return err
	}
	h := Hasher(key)
	if !h.OK {
		return h.Err
	}
	e, err := d.find(key, h.Value)
	if err != nil {
		return err
	}
	if e != nil {
		e.value = value
		d.generation++
		return nil
	}
	if err := d.Group.Reserve(48); err != nil {
		return err
	}
	entry := &dictEntry{hash: h.Value, key: key, value: value}
	idx := d.bucketFor(h.Value)
	entry.next = d.buckets[idx]
	d.buckets[idx] = entry
	d.count++
	d.generation++
	if d.count > len(d.buckets) {
		d.rehash()
	}
	return nil
}

func (d *Dict) rehash() {
	newSize := 2*len(d.buckets) + 3
	newBuckets := make([]*dictEntry, newSize)
	for _, head := range d.buckets {
		for e := head; e != nil; {
			next := e.next
			idx := int(e.hash % uint64(newSize))
			e.next = newBuckets[idx]
			newBuckets[idx] = e
			e = next
		}
	}
	d.buckets = newBuckets
}

// Del removes key, reporting whether it was present.
func (d *Dict) Del(key Object) (bool, error) {
	if err := CheckGroupWrite(d); err != nil {
		return false, err
	}
	h := Hasher(key)
	if !h.OK {
		return false, h.Err
	}
	idx := d.bucketFor(h.Value)
	var prev *dictEntry
	for e := d.buckets[idx]; e != nil; e = e.next {
		if e.hash != h.Value {
			prev = e
			continue
		}
		eq := Equals(key, e.key)
		if !eq.OK {
			return false, eq.Err
		}
		if !eq.Value {
			prev = e
			continue
		}
		if prev == nil {
			d.buckets[idx] = e.next
		} else {
			prev.next = e.next
		}
		d.count--
		d.generation++
		d.Group.Release(48)
		return true, nil
	}
	return false, nil
}

func (d *Dict) Len() int { return d.count }

// Generation returns the current mutation generation, for iterators such
// as DictIterator to compare against after each step: an iteration that
// witnesses any mutation fails with RuntimeError.
func (d *Dict) Generation() uint64 { return d.generation }

var dictIteratorTable = &Table{
	Kind:     KindDictIterator,
	Trace:    dictIteratorTrace,
	Finalize: NullFinalize,
	GetAttr:  NullGetAttr,
	SetAttr:  NullSetAttr,
	DelAttr:  NullDelAttr,
	Call:     dictIteratorCall,
	Size:     func(Object) uintptr { return 40 },
}

// DictIterator is the Kind produced by iterating a dict. It snapshots the
// (key, value) pairs present at construction time and the dict's
// generation; calling it with no arguments (the for-loop protocol's
// `next`) returns the next pair as a 2-tuple or raises StopIteration once
// exhausted, but raises RuntimeError instead the moment the live dict's
// generation no longer matches the snapshot, since the snapshot itself is
// then stale.
type DictIterator struct {
	Header
	Dict       *Dict
	Entries    []Entry
	Pos        int
	Generation uint64
}

func dictIteratorTrace(self Object, visit func(Object) bool) bool {
	it := self.(*DictIterator)
	if !visit(it.Dict) {
		return false
	}
	for _, e := range it.Entries {
		if !visit(e.Key) {
			return false
		}
		if !visit(e.Value) {
			return false
		}
	}
	return true
}

func dictIteratorCall(self Object, args *Tuple) (Object, error) {
	it := self.(*DictIterator)
	if it.Dict.Generation() != it.Generation {
		return nil, NewRuntimeErrorf("dict changed size during iteration")
	}
	if it.Pos >= len(it.Entries) {
		return nil, NewStopIteration()
	}
	e := it.Entries[it.Pos]
	it.Pos++
	return NewTuple([]Object{e.Key, e.Value}), nil
}

// NewDictIterator allocates an iterator snapshotting d's current entries
// and generation, billed to group.
func NewDictIterator(group *Group, d *Dict) (*DictIterator, error) {
	it := &DictIterator{Dict: d, Entries: d.entries(), Generation: d.Generation()}
	it.Table = dictIteratorTable
	it.Type = TypeDictIterator
	if err := group.Reserve(SizeOf(it)); err != nil {
		return nil, err
	}
	it.Group = group
	Register(it)
	return it, nil
}

// Clone returns a shallow copy of d's key/value pairs as a brand new dict
// billed to group -- used by the CLOSURE opcode, which shallow-copies the
// current locals.
func (d *Dict) Clone(group *Group) (*Dict, error) {
	nd, err := NewDict(group)
	if err != nil {
		return nil, err
	}
	for _, head := range d.buckets {
		for e := head; e != nil; e = e.next {
			if err := nd.Set(e.key, e.value); err != nil {
				return nil, err
			}
		}
	}
	return nd, nil
}
