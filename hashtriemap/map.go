package hashtriemap // import "github.com/crate-py/rpds/hashtriemap"

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/crate-py/rpds/hasher"
	"jsouthworth.net/go/dyn"
	"jsouthworth.net/go/seq"
)

// ErrKeyNotFound is wrapped by errors returned from Get and Remove
// when the key is not in the map.
var ErrKeyNotFound = errors.New("key not found")

var errTafterP = errors.New("transient used after persistent call")
var errOddElements = errors.New("must supply an even number of elements")
var errRangeSig = errors.New("Range requires a function: func(k kT, v vT) bool or func(k kT, v vT)")

var zero = atomicZero()

// collectionSeed is the fixed seed used when hashing whole
// collections. Per instance seeds randomize trie layout, but equal
// maps must hash equal, so Hash cannot depend on them.
const collectionSeed = uintptr(0x5bd1e995)
const nilValueHash = uintptr(0x38495ab5)

// Entry is a map entry. Each entry consists of a key and value.
type Entry interface {
	Key() interface{}
	Value() interface{}
}

// Map is a persistent immutable hash trie map. Operations on a map
// return a new map that shares much of its structure with the
// original.
type Map struct {
	seed  uintptr
	count int
	root  trieNode
}

// Empty returns a new empty persistent map with a random hash seed.
func Empty() *Map {
	seed := uintptr(rand.Uint64())
	return &Map{
		seed: seed,
		root: emptyBitmapNode(seed),
	}
}

// New converts a list of elements to a persistent map by associating
// them pairwise. New will panic if the number of elements is not even.
func New(elems ...interface{}) *Map {
	if len(elems)%2 != 0 {
		panic(errOddElements)
	}
	out := Empty().AsTransient()
	for i := 0; i < len(elems); i += 2 {
		out = out.Insert(elems[i], elems[i+1])
	}
	return out.AsPersistent()
}

// From will convert many different go types to a persistent map.
// Converting some types is more efficient than others and the
// mechanisms are described below.
//
// *Map:
//    Returned directly as it is already immutable.
// *TMap:
//    AsPersistent is called on it and the result is returned.
// map[interface{}]interface{}:
//    Converted directly by looping over the map and calling Insert starting with an empty transient map. The transient map is then made persistent and returned.
// []Entry:
//    The entries are looped over and Insert is called on an empty transient map. The transient map is made persistent and then returned.
// []interface{}:
//    The elements are passed to New.
// map[kT]vT:
//    Reflection is used to loop over the entries of the map and insert them into an empty transient map. The transient map is made persistent and then returned.
// []T:
//    Reflection is used to convert the slice to []interface{} and then passed to New.
func From(value interface{}) *Map {
	switch v := value.(type) {
	case *Map:
		return v
	case *TMap:
		return v.AsPersistent()
	case map[interface{}]interface{}:
		out := Empty().AsTransient()
		for key, val := range v {
			out = out.Insert(key, val)
		}
		return out.AsPersistent()
	case []Entry:
		out := Empty().AsTransient()
		for _, entry := range v {
			out = out.Insert(entry.Key(), entry.Value())
		}
		return out.AsPersistent()
	case []interface{}:
		return New(v...)
	default:
		return mapFromReflection(value)
	}
}

func mapFromReflection(value interface{}) *Map {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Map:
		out := Empty().AsTransient()
		for _, key := range v.MapKeys() {
			val := v.MapIndex(key)
			out.Insert(key.Interface(), val.Interface())
		}
		return out.AsPersistent()
	case reflect.Slice:
		sl := make([]interface{}, v.Len())
		for i := 0; i < v.Len(); i++ {
			sl[i] = v.Index(i).Interface()
		}
		return New(sl...)
	default:
		return Empty()
	}
}

// At returns the value associated with the key.
// If one is not found, nil is returned.
func (m *Map) At(key interface{}) interface{} {
	v, ok := m.root.lookup(0, hasher.MustAny(key, m.seed), key)
	if !ok {
		return nil
	}
	return v
}

// Get returns the value associated with the key. An error wrapping
// ErrKeyNotFound is returned when the key is not in the map, which
// distinguishes an absent key from one stored with a nil value.
func (m *Map) Get(key interface{}) (interface{}, error) {
	v, ok := m.root.lookup(0, hasher.MustAny(key, m.seed), key)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return v, nil
}

// EntryAt returns the entry (key, value pair) of the key.
// If one is not found, nil is returned.
func (m *Map) EntryAt(key interface{}) Entry {
	v, ok := m.root.lookup(0, hasher.MustAny(key, m.seed), key)
	if !ok {
		return nil
	}
	return entry{key: key, val: v}
}

// Insert associates a value with a key in the map. A new persistent
// map is returned unless the key is already associated with an equal
// value, in which case the original map is returned. Only the nodes
// on the path from the root to the change are new, all other subtrees
// are shared with the original.
func (m *Map) Insert(key, value interface{}) *Map {
	root, added := m.root.insert(zero, 0,
		hasher.MustAny(key, m.seed), key, value)
	switch {
	case root == m.root:
		return m
	case added:
		return &Map{
			seed:  m.seed,
			count: m.count + 1,
			root:  root,
		}
	default: // replaced value
		return &Map{
			seed:  m.seed,
			count: m.count,
			root:  root,
		}
	}
}

// Remove removes a key and its associated value from the map. An
// error wrapping ErrKeyNotFound is returned when the key is not in
// the map; nothing is allocated on that path.
func (m *Map) Remove(key interface{}) (*Map, error) {
	root, removed := m.root.remove(zero, 0,
		hasher.MustAny(key, m.seed), key)
	if !removed {
		return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	if root == nil {
		root = emptyBitmapNode(m.seed)
	}
	return &Map{
		seed:  m.seed,
		count: m.count - 1,
		root:  root,
	}, nil
}

// Discard removes a key and its associated value from the map. The
// original map is returned when the key is not present.
func (m *Map) Discard(key interface{}) *Map {
	root, removed := m.root.remove(zero, 0,
		hasher.MustAny(key, m.seed), key)
	if !removed {
		return m
	}
	if root == nil {
		root = emptyBitmapNode(m.seed)
	}
	return &Map{
		seed:  m.seed,
		count: m.count - 1,
		root:  root,
	}
}

// Contains will test if the key exists in the map.
func (m *Map) Contains(key interface{}) bool {
	_, ok := m.root.lookup(0, hasher.MustAny(key, m.seed), key)
	return ok
}

// Find will return the value for a key if it exists in the map and
// whether the key exists in the map. For non-nil values, exists will
// always be true.
func (m *Map) Find(key interface{}) (value interface{}, exists bool) {
	return m.root.lookup(0, hasher.MustAny(key, m.seed), key)
}

// Length returns the number of entries in the map.
func (m *Map) Length() int {
	return m.count
}

// Equal tests if two maps are equal by comparing the entries of each.
// Equality is independent of internal trie layout, so maps built in
// different insertion orders compare equal when they hold the same
// entries. Equal implements the Equaler interface which allows for
// deep comparisons when there are maps of maps.
func (m *Map) Equal(o interface{}) bool {
	other, ok := o.(*Map)
	if !ok {
		return ok
	}
	if m.Length() != other.Length() {
		return false
	}
	foundAll := true
	m.Range(func(key, value interface{}) bool {
		v, exists := other.Find(key)
		if !exists || !dyn.Equal(v, value) {
			foundAll = false
			return false
		}
		return true
	})
	return foundAll
}

// Hash returns an order independent hash of the entries of the map.
// Equal maps hash equal regardless of their internal layout or hash
// seed. Hash implements the hasher.Hasher interface so maps may be
// used as keys of other maps. Hash panics if a key or value is
// unhashable.
func (m *Map) Hash() uintptr {
	var out uintptr
	m.Range(func(key, value interface{}) {
		out ^= hasher.Combine(
			hasher.MustAny(key, collectionSeed),
			hashValue(value))
	})
	return out ^ uintptr(m.count)
}

func hashValue(v interface{}) uintptr {
	if v == nil {
		return nilValueHash
	}
	return hasher.MustAny(v, collectionSeed)
}

// Range will loop over the entries in the Map and call 'do' on each entry.
// The 'do' function may be of many types:
//
// func(key, value interface{}) bool:
//    Takes empty interfaces and returns if the loop should continue.
//    Useful to avoid reflection or for hetrogenous maps.
// func(key, value interface{}):
//    Takes empty interfaces.
//    Useful to avoid reflection or for hetrogenous maps.
// func(entry Entry) bool:
//    Takes the Entry type and returns if the loop should continue.
//    Is called directly and avoids entry unpacking if not necessary.
// func(entry Entry):
//    Takes the Entry type.
//    Is called directly and avoids entry unpacking if not necessary.
// func(k kT, v vT) bool
//    Takes a key of key type and a value of value type and returns if the loop should continue.
//    Is called with reflection and will panic if the kT and vT types are incorrect.
// func(k kT, v vT)
//    Takes a key of key type and a value of value type.
//    Is called with reflection and will panic if the kT and vT types are incorrect.
// Range will panic if passed anything not matching these signatures.
func (m *Map) Range(do interface{}) {
	m.root.walk(genRangeFunc(do))
}

func genRangeFunc(do interface{}) func(Entry) bool {
	switch fn := do.(type) {
	case func(key, value interface{}) bool:
		return func(entry Entry) bool {
			return fn(entry.Key(), entry.Value())
		}
	case func(key, value interface{}):
		return func(entry Entry) bool {
			fn(entry.Key(), entry.Value())
			return true
		}
	case func(e Entry) bool:
		return fn
	case func(e Entry):
		return func(entry Entry) bool {
			fn(entry)
			return true
		}
	default:
		rv := reflect.ValueOf(do)
		if rv.Kind() != reflect.Func {
			panic(errRangeSig)
		}
		rt := rv.Type()
		if rt.NumIn() != 2 || rt.NumOut() > 1 {
			panic(errRangeSig)
		}
		if rt.NumOut() == 1 &&
			rt.Out(0).Kind() != reflect.Bool {
			panic(errRangeSig)
		}
		return func(entry Entry) bool {
			out := dyn.Apply(do, entry.Key(), entry.Value())
			if out != nil {
				return out.(bool)
			}
			return true
		}
	}
}

// Seq returns a lazy, restartable sequence of Entry corresponding to
// the map's entries. The order is unspecified but stable for a given
// map version.
func (m *Map) Seq() seq.Sequence {
	return m.root.seq()
}

// AsNative returns the map converted to a go native map type.
func (m *Map) AsNative() map[interface{}]interface{} {
	out := make(map[interface{}]interface{})
	m.Range(func(key, val interface{}) {
		out[key] = val
	})
	return out
}

// AsTransient will return a transient map that shares structure with
// the persistent map.
func (m *Map) AsTransient() *TMap {
	return &TMap{
		seed:  m.seed,
		count: m.count,
		root:  m.root,
		edit:  atomicOne(),
	}
}

// Transform takes a set of actions and performs them on the
// persistent map. It does this by making a transient map and calling
// each action on it, then converting it back to a persistent map.
func (m *Map) Transform(actions ...func(*TMap) *TMap) *Map {
	out := m.AsTransient()
	for _, action := range actions {
		out = action(out)
	}
	return out.AsPersistent()
}

// Apply takes an arbitrary number of arguments and returns the value
// At the first argument. Apply allows map to be called as a function
// by the 'dyn' library.
func (m *Map) Apply(args ...interface{}) interface{} {
	key := args[0]
	return m.At(key)
}

// String returns a string representation of the map.
func (m *Map) String() string {
	var b strings.Builder
	fmt.Fprint(&b, "{ ")
	m.Range(func(entry Entry) {
		fmt.Fprintf(&b, "%s ", entry)
	})
	fmt.Fprint(&b, "}")
	return b.String()
}

// TMap is a transient version of a map. Changes made to a transient
// map will not effect the original persistent structure. Changes to a
// transient map occur as mutations. These mutations are then made
// persistent when the transient is transformed into a persistent
// structure. These are useful when applying multiple transforms to a
// persistent map where the intermediate results will not be seen or
// stored anywhere.
type TMap struct {
	edit  *uint32
	seed  uintptr
	count int
	root  trieNode
}

// At returns the value associated with the key.
// If one is not found, nil is returned.
func (m *TMap) At(key interface{}) interface{} {
	m.ensureEditable()
	v, ok := m.root.lookup(0, hasher.MustAny(key, m.seed), key)
	if !ok {
		return nil
	}
	return v
}

// EntryAt returns the entry (key, value pair) of the key.
// If one is not found, nil is returned.
func (m *TMap) EntryAt(key interface{}) Entry {
	v, ok := m.root.lookup(0, hasher.MustAny(key, m.seed), key)
	if !ok {
		return nil
	}
	return entry{key: key, val: v}
}

// Insert associates a value with a key in the map.
// The transient map is modified and then returned.
func (m *TMap) Insert(key, value interface{}) *TMap {
	m.ensureEditable()
	root, added := m.root.insert(m.edit, 0,
		hasher.MustAny(key, m.seed), key, value)
	if added {
		m.count++
	}
	m.root = root
	return m
}

// Discard removes a key and its associated value from the map as a
// mutation and the transient map is returned.
func (m *TMap) Discard(key interface{}) *TMap {
	m.ensureEditable()
	root, removed := m.root.remove(m.edit, 0,
		hasher.MustAny(key, m.seed), key)
	if root == nil {
		root = emptyBitmapNode(m.seed)
	}
	if removed {
		m.count--
	}
	m.root = root
	return m
}

// Contains will test if the key exists in the map.
func (m *TMap) Contains(key interface{}) bool {
	m.ensureEditable()
	_, ok := m.root.lookup(0, hasher.MustAny(key, m.seed), key)
	return ok
}

// Find will return the value for a key if it exists in the map and
// whether the key exists in the map. For non-nil values, exists will
// always be true.
func (m *TMap) Find(key interface{}) (value interface{}, exists bool) {
	return m.root.lookup(0, hasher.MustAny(key, m.seed), key)
}

// Length returns the number of entries in the map.
func (m *TMap) Length() int {
	return m.count
}

// Range will loop over the entries in the map and call 'do' on each
// entry. The signatures accepted are those documented on Map.Range.
func (m *TMap) Range(do interface{}) {
	m.root.walk(genRangeFunc(do))
}

// AsPersistent will transform this transient map into a persistent
// map. Once this occurs any additional actions on the transient map
// will panic.
func (m *TMap) AsPersistent() *Map {
	m.ensureEditable()
	atomic.StoreUint32(m.edit, 0)
	return &Map{
		seed:  m.seed,
		count: m.count,
		root:  m.root,
	}
}

// Apply takes an arbitrary number of arguments and returns the value
// At the first argument. Apply allows map to be called as a function
// by the 'dyn' library.
func (m *TMap) Apply(args ...interface{}) interface{} {
	key := args[0]
	return m.At(key)
}

// String returns a string representation of the map.
func (m *TMap) String() string {
	var b strings.Builder
	fmt.Fprint(&b, "{ ")
	m.Range(func(entry Entry) {
		fmt.Fprintf(&b, "%s ", entry)
	})
	fmt.Fprint(&b, "}")
	return b.String()
}

func (m *TMap) ensureEditable() {
	if atomic.LoadUint32(m.edit) == 0 {
		panic(errTafterP)
	}
}
