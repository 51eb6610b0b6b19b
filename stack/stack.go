// Package stack implements a persistent stack backed by the
// persistent list. A push is a cons, so every version shares its
// entire tail with the versions below it.
package stack // import "github.com/crate-py/rpds/stack"

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/crate-py/rpds/hasher"
	"github.com/crate-py/rpds/list"
	"jsouthworth.net/go/dyn"
	"jsouthworth.net/go/seq"
)

// ErrEmpty is wrapped by errors returned when the top of the empty
// stack is requested.
var ErrEmpty = errors.New("empty stack")

var errRangeSig = errors.New("Range requires a function: func(v vT) bool or func(v vT)")

const emptyHash = uintptr(0x51ed270b)

// Stack is a persistent stack. The zero value is the empty stack.
type Stack struct {
	backingList *list.List
}

var empty = Stack{}

// Empty returns the empty stack.
func Empty() *Stack {
	return &empty
}

// New converts a list of elements to a persistent stack by pushing
// them in order, so the last element ends up on top.
func New(elems ...interface{}) *Stack {
	l := list.Empty()
	for _, elem := range elems {
		l = l.PushFront(elem)
	}
	return fromList(l)
}

// From will convert many different go types to a persistent stack.
// Converting some types is more efficient than others and the
// mechanisms are described below.
//
// *Stack:
//    Returned directly as it is already immutable.
// *list.List:
//    Used directly as the backing list; the first element of the
//    list is the top of the stack.
// []interface{}:
//    New is called with the elements.
// seq.Seqable:
//    Seq is called on the value and each element is pushed, so the
//    last element of the sequence ends up on top.
// seq.Sequence:
//    Each element is pushed, so the last element ends up on top.
// []T:
//    Reflection is used to push each element of the slice in order.
func From(value interface{}) *Stack {
	switch v := value.(type) {
	case nil:
		return Empty()
	case *Stack:
		return v
	case *list.List:
		return fromList(v)
	case []interface{}:
		return New(v...)
	case seq.Seqable:
		return stackFromSequence(v.Seq())
	case seq.Sequence:
		return stackFromSequence(v)
	default:
		return stackFromReflection(value)
	}
}

func fromList(l *list.List) *Stack {
	if l.IsEmpty() {
		return Empty()
	}
	return &Stack{backingList: l}
}

func stackFromSequence(coll seq.Sequence) *Stack {
	l := list.Empty()
	for s := coll; s != nil; s = seq.Seq(seq.Next(s)) {
		l = l.PushFront(seq.First(s))
	}
	return fromList(l)
}

func stackFromReflection(value interface{}) *Stack {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice {
		return New(value)
	}
	l := list.Empty()
	for i := 0; i < v.Len(); i++ {
		l = l.PushFront(v.Index(i).Interface())
	}
	return fromList(l)
}

// Push returns a new stack with the element on top. The original
// stack is unaffected.
func (s *Stack) Push(elem interface{}) *Stack {
	return &Stack{
		backingList: s.backingList.PushFront(elem),
	}
}

// Pop returns a new stack without the top element. An error wrapping
// ErrEmpty is returned on the empty stack.
func (s *Stack) Pop() (*Stack, error) {
	rest, err := s.backingList.Rest()
	if err != nil {
		return nil, fmt.Errorf("%w: nothing to pop", ErrEmpty)
	}
	return fromList(rest), nil
}

// Peek returns the top element of the stack. An error wrapping
// ErrEmpty is returned on the empty stack.
func (s *Stack) Peek() (interface{}, error) {
	v, err := s.backingList.First()
	if err != nil {
		return nil, fmt.Errorf("%w: nothing to peek", ErrEmpty)
	}
	return v, nil
}

// IsEmpty returns true when the stack has no elements.
func (s *Stack) IsEmpty() bool {
	return s.backingList.IsEmpty()
}

// Length returns the number of elements in the stack.
func (s *Stack) Length() int {
	return s.backingList.Length()
}

// Find whether the value exists in the stack by walking every value.
// Returns the value and whether or not it was found.
func (s *Stack) Find(value interface{}) (interface{}, bool) {
	return s.backingList.Find(value)
}

// Equal tests if two stacks are equal by comparing their elements
// pairwise from the top down. Equal implements the Equaler interface
// which allows for deep comparisons when collections nest.
func (s *Stack) Equal(o interface{}) bool {
	other, ok := o.(*Stack)
	if !ok {
		return ok
	}
	return dyn.Equal(s.backingList, other.backingList)
}

// Hash returns an order dependent hash of the elements of the stack.
// Equal stacks hash equal. Hash implements the hasher.Hasher
// interface so stacks may be used as map keys and set elements. Hash
// panics if an element is unhashable.
func (s *Stack) Hash() uintptr {
	if s.IsEmpty() {
		return emptyHash
	}
	return hasher.Combine(emptyHash, s.backingList.Hash())
}

// Range calls the passed in function on each element of the stack
// from the top down. The function passed in may be of many types:
//
// func(value interface{}) bool:
//    Takes a value of any type and returns if the loop should continue.
//    Useful to avoid reflection where not needed and to support
//    heterogenous stacks.
// func(value interface{})
//    Takes a value of any type.
//    Useful to avoid reflection where not needed and to support
//    heterogenous stacks.
// func(value T) bool:
//    Takes a value of the type of element stored in the stack and
//    returns if the loop should continue. Useful for homogeneous stacks.
//    Is called with reflection and will panic if the type is incorrect.
// func(value T)
//    Takes a value of the type of element stored in the stack and
//    returns if the loop should continue. Useful for homogeneous stacks.
//    Is called with reflection and will panic if the type is incorrect.
// Range will panic if passed anything that doesn't match one of these signatures
func (s *Stack) Range(do interface{}) {
	switch do.(type) {
	case func(value interface{}) bool, func(value interface{}):
	default:
		rv := reflect.ValueOf(do)
		if rv.Kind() != reflect.Func {
			panic(errRangeSig)
		}
		rt := rv.Type()
		if rt.NumIn() != 1 || rt.NumOut() > 1 {
			panic(errRangeSig)
		}
		if rt.NumOut() == 1 && rt.Out(0).Kind() != reflect.Bool {
			panic(errRangeSig)
		}
	}
	s.backingList.Range(do)
}

// Seq returns a lazy, restartable sequence of the elements of the
// stack from the top down. The empty stack has a nil sequence.
func (s *Stack) Seq() seq.Sequence {
	return s.backingList.Seq()
}

// String returns a string representation of the stack.
func (s *Stack) String() string {
	var b strings.Builder
	fmt.Fprint(&b, "[ ")
	s.Range(func(elem interface{}) {
		fmt.Fprintf(&b, "%v ", elem)
	})
	fmt.Fprint(&b, "]")
	return b.String()
}
