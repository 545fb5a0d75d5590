package object

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies one (object, attribute name) attribute-resolution
// site. Caching is keyed off the object's identity string rather than its
// pointer so it survives across Go's unsafe.Pointer-identity shortcuts
// used elsewhere for __hash__/__eq__ defaults.
type cacheKey struct {
	id   string
	name string
}

type cacheValue struct {
	value Object
	epoch uint64
}

const lookupCacheSize = 4096

var lookupCache *lru.Cache[cacheKey, cacheValue]

func init() {
	c, err := lru.New[cacheKey, cacheValue](lookupCacheSize)
	if err != nil {
		panic(err)
	}
	lookupCache = c
	AddRootProvider("object.lookupCache", cacheRoots)
}

// cacheRoots exposes every value currently memoized in lookupCache as a GC
// root, so a cached *BoundMethod (and transitively the self/method it
// closes over) survives collection for as long as the cache remembers it.
// Without this, a BoundMethod reachable only through the cache would be
// swept the moment nothing else referenced it, and the next matching
// GetAttr call would hand back an already-finalized value.
func cacheRoots() []Object {
	keys := lookupCache.Keys()
	result := make([]Object, 0, len(keys))
	for _, k := range keys {
		if v, ok := lookupCache.Peek(k); ok {
			result = append(result, v.value)
		}
	}
	return result
}

// chainEpoch sums the epochs of t and every type on its Base chain. Epochs
// only ever grow, so a SetMember on any of those types changes the sum.
func chainEpoch(t *Type) uint64 {
	var e uint64
	for ; t != nil; t = t.Base {
		e += t.Epoch()
	}
	return e
}

// cacheLookup returns a previously bound-method resolution for (self, name)
// if neither self's type nor any of its base types has been mutated
// (SetMember bumps Epoch) since the entry was stored.
func cacheLookup(self Object, name string) (Object, bool) {
	if isDunder(name) {
		return nil, false
	}
	v, ok := lookupCache.Get(cacheKey{id: self.Hdr().ID(), name: name})
	if !ok {
		return nil, false
	}
	if v.epoch != chainEpoch(self.Hdr().Type) {
		return nil, false
	}
	return v.value, true
}

func cacheStore(self Object, name string, value Object) {
	if isDunder(name) {
		return
	}
	lookupCache.Add(cacheKey{id: self.Hdr().ID(), name: name}, cacheValue{value: value, epoch: chainEpoch(self.Hdr().Type)})
}

func invalidateCache(self Object, name string) {
	lookupCache.Remove(cacheKey{id: self.Hdr().ID(), name: name})
}
