package hashtriemap

import (
	"fmt"
	"sync/atomic"

	"jsouthworth.net/go/dyn"
	"jsouthworth.net/go/seq"
)

const (
	shiftBits = 5
	width     = 1 << shiftBits
	maskValue = width - 1
)

// trieNode is a subtree of the hash trie. All update operations are
// pure when called with the zero edit: they return a new node chain
// for the path to the change and share every other subtree. When
// called with a live transient edit they may mutate nodes tagged with
// that same edit in place.
type trieNode interface {
	insert(edit *uint32, shift uint, hash uintptr,
		k, v interface{}) (trieNode, bool)
	remove(edit *uint32, shift uint, hash uintptr,
		k interface{}) (trieNode, bool)
	lookup(shift uint, hash uintptr, k interface{}) (interface{}, bool)
	seq() seq.Sequence
	walk(fn func(Entry) bool) bool
}

// entry is a leaf slot. A nil key marks a slot holding a child node
// in its val field instead of a leaf, which is why nil is not a legal
// map key.
type entry struct {
	key, val interface{}
}

func (e entry) Key() interface{} {
	return e.key
}

func (e entry) Value() interface{} {
	return e.val
}

func (e entry) String() string {
	return fmt.Sprintf("[%v %v]", e.key, e.val)
}

func (e entry) isLeaf() bool {
	return e.key != nil
}

func (e entry) matches(k interface{}) bool {
	return dyn.Equal(k, e.key)
}

type entries []entry

func (e entries) insert(idx int, ent entry) entries {
	if cap(e) >= len(e)+1 {
		// The backing array may outlive pops made through a
		// transient, so it can be larger than the slice.
		out := append(e, entry{})
		copy(out[idx+1:], e[idx:])
		out[idx] = ent
		return out
	}
	out := make([]entry, len(e)+1)
	copy(out, e[:idx])
	out[idx] = ent
	copy(out[idx+1:], e[idx:])
	return out
}

func (e entries) set(idx int, ent entry) entries {
	e[idx] = ent
	return e
}

func (e entries) append(ent entry) entries {
	if cap(e) >= len(e)+1 {
		return append(e, ent)
	}
	// Grow by exactly one entry rather than letting append double
	// the backing array.
	out := make([]entry, len(e)+1)
	copy(out, e)
	out[len(e)] = ent
	return out
}

func (e entries) copy() entries {
	out := make([]entry, len(e))
	copy(out, e)
	return out
}

func (e entries) copyWithCap(cap int) entries {
	out := make([]entry, len(e), cap)
	copy(out, e)
	return out
}

func (e entries) remove(idx int) entries {
	out := e
	copy(out[idx:], out[idx+1:])
	out[len(out)-1] = entry{}
	return out[:len(out)-1]
}

// entrySeq is a lazy sequence over an entries slice, descending into
// child nodes as it encounters them.
type entrySeq struct {
	es    entries
	index int
	s     seq.Sequence
}

func entrySeqNew(es entries, index int, s seq.Sequence) *entrySeq {
	if s != nil {
		return &entrySeq{
			es:    es,
			index: index,
			s:     s,
		}
	}
	for i := index; i < len(es); i++ {
		ent := es[i]
		if ent.isLeaf() {
			return &entrySeq{
				es:    es,
				index: i,
			}
		}
		if ent.val == nil {
			continue
		}
		child, ok := ent.val.(trieNode)
		if !ok || child == nil {
			continue
		}
		childSeq := child.seq()
		if childSeq == nil {
			continue
		}
		return &entrySeq{
			es:    es,
			index: i + 1,
			s:     childSeq,
		}
	}
	return nil
}

func (e *entrySeq) First() interface{} {
	if e.s != nil {
		return e.s.First()
	}
	return e.es[e.index]
}

func (e *entrySeq) Next() seq.Sequence {
	if e.s != nil {
		out := entrySeqNew(e.es, e.index, e.s.Next())
		if out == nil {
			return nil
		}
		return out
	}
	out := entrySeqNew(e.es, e.index+1, nil)
	if out == nil {
		return nil
	}
	return out
}

func (e *entrySeq) String() string {
	return seq.ConvertToString(e)
}

func mask(hash uintptr, shift uint) uint {
	return uint((hash >> shift) & maskValue)
}

func bitpos(hash uintptr, shift uint) uint32 {
	return 1 << mask(hash, shift)
}

func isEditable(nodeEdit, edit *uint32) bool {
	return atomic.LoadUint32(edit) == 1 && edit == nodeEdit
}

func atomicUint(i uint32) *uint32 {
	atom := new(uint32)
	atomic.StoreUint32(atom, i)
	return atom
}

func atomicZero() *uint32 {
	return atomicUint(0)
}

func atomicOne() *uint32 {
	return atomicUint(1)
}
