package hashtriemap

import (
	"jsouthworth.net/go/dyn"
	"jsouthworth.net/go/seq"
)

// collisionNode buckets entries whose keys share a full hash. Lookups
// in a bucket are a linear scan with the equality predicate.
type collisionNode struct {
	hash  uintptr
	seed  uintptr
	edit  *uint32
	array entries
}

func (n *collisionNode) insert(
	edit *uint32,
	shift uint,
	hash uintptr,
	k, v interface{},
) (trieNode, bool) {
	if hash == n.hash {
		idx, ok := n.findIndex(k)
		if ok {
			if dyn.Equal(n.array[idx].val, v) {
				return n, false
			}
			return n.editAndSet(edit, idx, v), false
		}
		return n.editAndAppend(edit, entry{key: k, val: v}), true
	}
	// Different hash at this depth: the bucket becomes one slot of
	// a new bitmap node and the insert continues from there.
	out := &bitmapNode{
		edit:   edit,
		seed:   n.seed,
		bitmap: bitpos(n.hash, shift),
		array:  []entry{{val: n}},
	}
	return out.insert(edit, shift, hash, k, v)
}

func (n *collisionNode) findIndex(k interface{}) (int, bool) {
	for i, e := range n.array {
		if dyn.Equal(k, e.key) {
			return i, true
		}
	}
	return -1, false
}

func (n *collisionNode) ensureEditable(edit *uint32) *collisionNode {
	if isEditable(n.edit, edit) {
		return n
	}
	return &collisionNode{
		hash:  n.hash,
		seed:  n.seed,
		edit:  edit,
		array: n.array.copy(),
	}
}

func (n *collisionNode) editAndSet(
	edit *uint32,
	idx int,
	val interface{},
) *collisionNode {
	editable := n.ensureEditable(edit)
	editable.array[idx].val = val
	return editable
}

func (n *collisionNode) editAndAppend(edit *uint32, e entry) *collisionNode {
	if isEditable(n.edit, edit) {
		n.array = n.array.append(e)
		return n
	}
	return &collisionNode{
		hash:  n.hash,
		seed:  n.seed,
		edit:  edit,
		array: n.array.copyWithCap(len(n.array) + 1).append(e),
	}
}

func (n *collisionNode) remove(
	edit *uint32,
	shift uint,
	hash uintptr,
	k interface{},
) (trieNode, bool) {
	idx, ok := n.findIndex(k)
	if !ok {
		return n, false
	}
	if len(n.array) == 1 {
		return nil, true
	}
	editable := n.ensureEditable(edit)
	editable.array = editable.array.remove(idx)
	return editable, true
}

func (n *collisionNode) lookup(
	shift uint,
	hash uintptr,
	k interface{},
) (interface{}, bool) {
	idx, ok := n.findIndex(k)
	if !ok {
		return nil, false
	}
	return n.array[idx].val, true
}

func (n *collisionNode) seq() seq.Sequence {
	out := entrySeqNew(n.array, 0, nil)
	if out == nil {
		return nil
	}
	return out
}

func (n *collisionNode) walk(fn func(Entry) bool) bool {
	for _, ent := range n.array {
		if !ent.isLeaf() {
			continue
		}
		if !fn(ent) {
			return false
		}
	}
	return true
}
