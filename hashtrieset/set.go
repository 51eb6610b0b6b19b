// Package hashtrieset implements a persistent unordered set on top of
// the hash trie map. Membership is key presence in the backing map;
// all structural sharing, hashing and equality semantics follow from
// the map.
package hashtrieset // import "github.com/crate-py/rpds/hashtrieset"

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/crate-py/rpds/hashtriemap"
	"jsouthworth.net/go/seq"
)

// ErrNotFound is wrapped by errors returned from Remove when the
// element is not in the set.
var ErrNotFound = errors.New("element not found")

var errRangeSig = errors.New("Range requires a function: func(v vT) bool or func(v vT)")

// Set is a persistent unordered set implementation.
type Set struct {
	backingMap *hashtriemap.Map
}

// Empty returns the empty set.
func Empty() *Set {
	return &Set{
		backingMap: hashtriemap.Empty(),
	}
}

// New returns a set containing the supplied elements.
func New(elems ...interface{}) *Set {
	s := Empty().AsTransient()
	for _, elem := range elems {
		s = s.Insert(elem)
	}
	return s.AsPersistent()
}

// From will convert many different go types to a persistent set.
// Converting some types is more efficient than others and the
// mechanisms are described below.
//
// *Set:
//    Returned directly as it is already immutable.
// *TSet:
//    AsPersistent is called on it and the result is returned.
// map[interface{}]struct{}:
//    Converted directly by looping over the keys and calling Insert starting with an empty transient set. The transient set is then made persistent and returned.
// []interface{}:
//    The elements are passed to New.
// seq.Seqable:
//    A sequence is obtained with Seq() and the set is built from its elements.
// seq.Sequence:
//    The set is built from the elements of the sequence.
// map[kT]vT:
//    Reflection is used to loop over the keys of the map and insert them into an empty transient set.
// []T:
//    Reflection is used to loop over the slice and insert the elements into an empty transient set.
func From(value interface{}) *Set {
	switch v := value.(type) {
	case *Set:
		return v
	case *TSet:
		return v.AsPersistent()
	case map[interface{}]struct{}:
		s := Empty().AsTransient()
		for k := range v {
			s = s.Insert(k)
		}
		return s.AsPersistent()
	case []interface{}:
		return New(v...)
	case seq.Seqable:
		return setFromSequence(v.Seq())
	case seq.Sequence:
		return setFromSequence(v)
	default:
		return setFromReflection(value)
	}
}

func setFromSequence(coll seq.Sequence) *Set {
	out := Empty().AsTransient()
	for s := coll; s != nil; s = seq.Seq(seq.Next(s)) {
		out = out.Insert(seq.First(s))
	}
	return out.AsPersistent()
}

func setFromReflection(value interface{}) *Set {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Map:
		out := Empty().AsTransient()
		for _, key := range v.MapKeys() {
			out.Insert(key.Interface())
		}
		return out.AsPersistent()
	case reflect.Slice:
		out := Empty().AsTransient()
		for i := 0; i < v.Len(); i++ {
			out = out.Insert(v.Index(i).Interface())
		}
		return out.AsPersistent()
	default:
		if value == nil {
			return Empty()
		}
		return New(value)
	}
}

// Insert adds an element to the set and a new set is returned. The
// original set is returned when the element is already present, so
// inserting is idempotent.
func (s *Set) Insert(elem interface{}) *Set {
	m := s.backingMap.Insert(elem, nil)
	if m == s.backingMap {
		return s
	}
	return &Set{
		backingMap: m,
	}
}

// Remove removes an element from the set returning a new set without
// the element. An error wrapping ErrNotFound is returned when the
// element is not in the set.
func (s *Set) Remove(elem interface{}) (*Set, error) {
	m, err := s.backingMap.Remove(elem)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, elem)
	}
	return &Set{
		backingMap: m,
	}, nil
}

// Discard removes an element from the set returning a new set without
// the element. The original set is returned when the element is not
// present.
func (s *Set) Discard(elem interface{}) *Set {
	m := s.backingMap.Discard(elem)
	if m == s.backingMap {
		return s
	}
	return &Set{
		backingMap: m,
	}
}

// At returns the elem if it exists in the set otherwise it returns nil.
func (s *Set) At(elem interface{}) interface{} {
	if s.backingMap.Contains(elem) {
		return elem
	}
	return nil
}

// Contains returns true if the element is in the set, false otherwise.
func (s *Set) Contains(elem interface{}) bool {
	return s.backingMap.Contains(elem)
}

// Length returns the number of elements in the set.
func (s *Set) Length() int {
	return s.backingMap.Length()
}

// Union returns a new set containing the elements of both sets.
func (s *Set) Union(other *Set) *Set {
	big, small := s, other
	if big.Length() < small.Length() {
		big, small = small, big
	}
	out := big.AsTransient()
	small.Range(func(elem interface{}) {
		out.Insert(elem)
	})
	return out.AsPersistent()
}

// Intersection returns a new set containing the elements present in
// both sets.
func (s *Set) Intersection(other *Set) *Set {
	big, small := s, other
	if big.Length() < small.Length() {
		big, small = small, big
	}
	out := Empty().AsTransient()
	small.Range(func(elem interface{}) {
		if big.Contains(elem) {
			out.Insert(elem)
		}
	})
	return out.AsPersistent()
}

// Difference returns a new set containing the elements of s that are
// not in other.
func (s *Set) Difference(other *Set) *Set {
	out := s.AsTransient()
	other.Range(func(elem interface{}) {
		out.Discard(elem)
	})
	return out.AsPersistent()
}

// Equal tests if two sets are equal by comparing their elements.
// Equality is independent of internal layout. Equal implements the
// Equaler interface which allows for deep comparisons when
// collections nest.
func (s *Set) Equal(o interface{}) bool {
	other, ok := o.(*Set)
	if !ok {
		return ok
	}
	if s.Length() != other.Length() {
		return false
	}
	foundAll := true
	s.Range(func(elem interface{}) bool {
		if !other.Contains(elem) {
			foundAll = false
			return false
		}
		return true
	})
	return foundAll
}

// Hash returns an order independent hash of the elements of the set.
// Equal sets hash equal. Hash implements the hasher.Hasher interface
// so sets may be used as map keys and elements of other sets. Hash
// panics if an element is unhashable.
func (s *Set) Hash() uintptr {
	return s.backingMap.Hash()
}

// Range calls the passed in function on each element of the set.
// The function passed in may be of many types:
//
// func(value interface{}) bool:
//    Takes a value of any type and returns if the loop should continue.
//    Useful to avoid reflection where not needed and to support
//    heterogenous sets.
// func(value interface{})
//    Takes a value of any type.
//    Useful to avoid reflection where not needed and to support
//    heterogenous sets.
// func(value T) bool:
//    Takes a value of the type of element stored in the set and
//    returns if the loop should continue. Useful for homogeneous sets.
//    Is called with reflection and will panic if the type is incorrect.
// func(value T)
//    Takes a value of the type of element stored in the set and
//    returns if the loop should continue. Useful for homogeneous sets.
//    Is called with reflection and will panic if the type is incorrect.
// Range will panic if passed anything that doesn't match one of these signatures
func (s *Set) Range(do interface{}) {
	s.backingMap.Range(genRangeFunc(do))
}

func genRangeFunc(do interface{}) func(key, value interface{}) bool {
	switch fn := do.(type) {
	case func(value interface{}) bool:
		return func(key, _ interface{}) bool {
			return fn(key)
		}
	case func(value interface{}):
		return func(key, _ interface{}) bool {
			fn(key)
			return true
		}
	default:
		rv := reflect.ValueOf(do)
		if rv.Kind() != reflect.Func {
			panic(errRangeSig)
		}
		rt := rv.Type()
		if rt.NumIn() != 1 || rt.NumOut() > 1 {
			panic(errRangeSig)
		}
		if rt.NumOut() == 1 &&
			rt.Out(0).Kind() != reflect.Bool {
			panic(errRangeSig)
		}
		return func(key, _ interface{}) bool {
			cont := true
			outs := rv.Call([]reflect.Value{
				reflect.ValueOf(key)})
			if len(outs) != 0 {
				cont = outs[0].Interface().(bool)
			}
			return cont
		}
	}
}

// Seq returns a lazy, restartable sequence of the elements of the
// set. The order is unspecified but stable for a given set version.
func (s *Set) Seq() seq.Sequence {
	entries := s.backingMap.Seq()
	if entries == nil {
		return nil
	}
	return &elemSeq{s: entries}
}

// AsTransient returns a mutable copy on write version of the set.
func (s *Set) AsTransient() *TSet {
	return &TSet{
		backingMap: s.backingMap.AsTransient(),
	}
}

// String returns a string serialization of the set.
func (s *Set) String() string {
	var b strings.Builder
	fmt.Fprint(&b, "{ ")
	s.Range(func(elem interface{}) {
		fmt.Fprintf(&b, "%v ", elem)
	})
	fmt.Fprint(&b, "}")
	return b.String()
}

// elemSeq projects the backing map's entry sequence onto its keys.
type elemSeq struct {
	s seq.Sequence
}

func (e *elemSeq) First() interface{} {
	return e.s.First().(hashtriemap.Entry).Key()
}

func (e *elemSeq) Next() seq.Sequence {
	next := e.s.Next()
	if next == nil {
		return nil
	}
	return &elemSeq{s: next}
}

func (e *elemSeq) String() string {
	return seq.ConvertToString(e)
}

// TSet is a transient copy on write version of Set. Changes made to a
// transient set will not effect the original persistent
// structure. Changes to a transient set occur as mutations. These
// mutations are then made persistent when the transient is transformed
// into a persistent structure. These are useful when applying multiple
// transforms to a persistent set where the intermediate results will
// not be seen or stored anywhere.
type TSet struct {
	backingMap *hashtriemap.TMap
}

// Insert adds an element to the set as a mutation and the original
// TSet is returned.
func (s *TSet) Insert(elem interface{}) *TSet {
	s.backingMap = s.backingMap.Insert(elem, nil)
	return s
}

// Discard removes an element from the set as a mutation returning the
// original TSet.
func (s *TSet) Discard(elem interface{}) *TSet {
	s.backingMap = s.backingMap.Discard(elem)
	return s
}

// At returns the elem if it exists in the set otherwise it returns nil.
func (s *TSet) At(elem interface{}) interface{} {
	if s.backingMap.Contains(elem) {
		return elem
	}
	return nil
}

// Contains returns true if the element is in the set, false otherwise.
func (s *TSet) Contains(elem interface{}) bool {
	return s.backingMap.Contains(elem)
}

// Length returns the number of elements in the set.
func (s *TSet) Length() int {
	return s.backingMap.Length()
}

// AsPersistent will transform this transient set into a persistent
// set. Once this occurs any additional actions on the transient set
// will panic.
func (s *TSet) AsPersistent() *Set {
	return &Set{
		backingMap: s.backingMap.AsPersistent(),
	}
}
