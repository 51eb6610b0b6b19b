// Package list implements a persistent singly linked list. A list is
// immutable once constructed; PushFront returns a new list whose tail
// is the original, so every prior version remains valid and all
// versions share their common suffix.
package list // import "github.com/crate-py/rpds/list"

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/crate-py/rpds/hasher"
	"jsouthworth.net/go/dyn"
	"jsouthworth.net/go/seq"
)

// ErrEmpty is wrapped by errors returned when the head or tail of the
// empty list is requested.
var ErrEmpty = errors.New("empty list")

var errRangeSig = errors.New("Range requires a function: func(v vT) bool or func(v vT)")

const emptyHash = uintptr(0x2f1d13a6)

// List is a persistent linked list. The zero value for *List (nil) is
// the empty list and all methods are valid on it.
type List struct {
	first  interface{}
	rest   *List
	length int
}

// Empty returns the empty list.
func Empty() *List {
	return nil
}

// New converts a list of elements to a persistent list preserving
// their order.
func New(elems ...interface{}) *List {
	out := Empty()
	for i := len(elems) - 1; i >= 0; i-- {
		out = Cons(elems[i], out)
	}
	return out
}

// From will convert many different go types to a persistent list.
// Converting some types is more efficient than others and the
// mechanisms are described below.
//
// *List:
//    Returned directly as it is already immutable.
// []interface{}:
//    The elements are passed to New, preserving order.
// seq.Seqable:
//    Seq is called and each element is consed onto the result,
//    so the list comes out in reverse of the sequence order.
// seq.Sequence:
//    Each element is consed onto the result, so the list comes out
//    in reverse of the sequence order.
// []T:
//    Reflection is used to convert the slice and the elements are
//    passed to New, preserving order.
func From(value interface{}) *List {
	switch v := value.(type) {
	case nil:
		return Empty()
	case *List:
		return v
	case []interface{}:
		return New(v...)
	case seq.Seqable:
		return listFromSequence(v.Seq())
	case seq.Sequence:
		return listFromSequence(v)
	default:
		return listFromReflection(value)
	}
}

func listFromSequence(coll seq.Sequence) *List {
	out := Empty()
	for s := coll; s != nil; s = seq.Seq(seq.Next(s)) {
		out = Cons(seq.First(s), out)
	}
	return out
}

func listFromReflection(value interface{}) *List {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice {
		return New(value)
	}
	out := Empty()
	for i := v.Len() - 1; i >= 0; i-- {
		out = Cons(v.Index(i).Interface(), out)
	}
	return out
}

// Cons constructs a new list from the element and another list. The
// other list is shared, not copied.
func Cons(elem interface{}, list *List) *List {
	return &List{
		first:  elem,
		rest:   list,
		length: list.Length() + 1,
	}
}

// PushFront returns a new list with elem prepended. The original list
// is the tail of the result and is unaffected.
func (l *List) PushFront(elem interface{}) *List {
	return Cons(elem, l)
}

// First returns the first element of the list. An error wrapping
// ErrEmpty is returned on the empty list.
func (l *List) First() (interface{}, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: no first element", ErrEmpty)
	}
	return l.first, nil
}

// Rest returns the tail of the list without copying. An error wrapping
// ErrEmpty is returned on the empty list.
func (l *List) Rest() (*List, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: no rest", ErrEmpty)
	}
	return l.rest, nil
}

// IsEmpty returns true when the list has no elements.
func (l *List) IsEmpty() bool {
	return l == nil
}

// Length returns the number of elements in the list.
func (l *List) Length() int {
	if l == nil {
		return 0
	}
	return l.length
}

// Find whether the value exists in the list by walking every value.
// Returns the value and whether or not it was found.
func (l *List) Find(value interface{}) (interface{}, bool) {
	var out interface{}
	var found bool
	l.Range(func(v interface{}) bool {
		if dyn.Equal(v, value) {
			out = v
			found = true
			return false
		}
		return true
	})
	return out, found
}

// Equal tests if two lists are equal by comparing their elements
// pairwise in order. Equal implements the Equaler interface which
// allows for deep comparisons when collections nest.
func (l *List) Equal(o interface{}) bool {
	other, ok := o.(*List)
	if !ok {
		return ok
	}
	if l.Length() != other.Length() {
		return false
	}
	for a, b := l, other; a != nil; a, b = a.rest, b.rest {
		if !dyn.Equal(a.first, b.first) {
			return false
		}
	}
	return true
}

// Hash returns an order dependent hash of the elements of the list.
// Equal lists hash equal. Hash implements the hasher.Hasher interface
// so lists may be used as map keys and set elements. Hash panics if
// an element is unhashable.
func (l *List) Hash() uintptr {
	out := emptyHash
	for cur := l; cur != nil; cur = cur.rest {
		out = hasher.Combine(out, hasher.MustAny(cur.first, emptyHash))
	}
	return out
}

// Range calls the passed in function on each element of the list.
// The function passed in may be of many types:
//
// func(value interface{}) bool:
//    Takes a value of any type and returns if the loop should continue.
//    Useful to avoid reflection where not needed and to support
//    heterogenous lists.
// func(value interface{})
//    Takes a value of any type.
//    Useful to avoid reflection where not needed and to support
//    heterogenous lists.
// func(value T) bool:
//    Takes a value of the type of element stored in the list and
//    returns if the loop should continue. Useful for homogeneous lists.
//    Is called with reflection and will panic if the type is incorrect.
// func(value T)
//    Takes a value of the type of element stored in the list and
//    returns if the loop should continue. Useful for homogeneous lists.
//    Is called with reflection and will panic if the type is incorrect.
// Range will panic if passed anything that doesn't match one of these signatures
func (l *List) Range(do interface{}) {
	cont := true
	for list := l; list != nil && cont; list = list.rest {
		switch fn := do.(type) {
		case func(value interface{}) bool:
			cont = fn(list.first)
		case func(value interface{}):
			fn(list.first)
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
			outs := rv.Call([]reflect.Value{
				reflect.ValueOf(list.first)})
			if len(outs) != 0 {
				cont = outs[0].Interface().(bool)
			}
		}
	}
}

// Seq returns a lazy, restartable sequence of the elements of the
// list. The empty list has a nil sequence.
func (l *List) Seq() seq.Sequence {
	if l == nil {
		return nil
	}
	return &listSequence{l: l}
}

// String returns a string representation of the list.
func (l *List) String() string {
	if l == nil {
		return "()"
	}
	return seq.ConvertToString(l.Seq())
}

type listSequence struct {
	l *List
}

func (l *listSequence) First() interface{} {
	return l.l.first
}

func (l *listSequence) Next() seq.Sequence {
	return l.l.rest.Seq()
}

func (l *listSequence) String() string {
	return seq.ConvertToString(l)
}
