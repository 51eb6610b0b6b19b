package hashtriemap

import (
	"math/bits"

	"github.com/crate-py/rpds/hasher"
	"jsouthworth.net/go/dyn"
	"jsouthworth.net/go/seq"
)

// bitmapCap is the population at which a bitmap node unpacks into a
// dense full node.
const bitmapCap = width / 2

// bitmapNode is the sparse branch node. Occupied child slots are
// recorded in a 32-bit bitmap and stored contiguously in hash chunk
// order; each slot is either a leaf entry or a child node.
type bitmapNode struct {
	bitmap uint32
	seed   uintptr
	array  entries
	edit   *uint32
}

func emptyBitmapNode(seed uintptr) *bitmapNode {
	return &bitmapNode{
		edit: zero,
		seed: seed,
	}
}

func (n *bitmapNode) insert(
	edit *uint32,
	shift uint,
	hash uintptr,
	k, v interface{},
) (trieNode, bool) {
	if n.slotOccupied(bitpos(hash, shift)) {
		return n.insertOccupied(edit, shift, hash, k, v)
	}
	return n.insertVacant(edit, shift, hash, k, v), true
}

func (n *bitmapNode) insertVacant(
	edit *uint32,
	shift uint,
	hash uintptr,
	k, v interface{},
) trieNode {
	if n.isFull() {
		idx := mask(hash, shift)
		child, _ := emptyBitmapNode(n.seed).
			insert(edit, shift+shiftBits, hash, k, v)
		return n.unpack(edit, shift, idx, child)
	}
	return n.addEntry(edit, shift, hash, k, v)
}

func (n *bitmapNode) insertOccupied(
	edit *uint32,
	shift uint,
	hashval uintptr,
	k, v interface{},
) (trieNode, bool) {
	bit := bitpos(hashval, shift)
	idx := n.index(bit)
	e := n.array[idx]
	switch {
	case !e.isLeaf():
		// Walk down into the child node.
		child, added := e.val.(trieNode).
			insert(edit, shift+shiftBits, hashval, k, v)
		if child == e.val {
			return n, added
		}
		editable := n.ensureEditable(edit)
		editable.array[idx].val = child
		return editable, added
	case e.matches(k):
		// Same key, replace the value.
		if dyn.Equal(v, e.val) {
			return n, false
		}
		editable := n.ensureEditable(edit)
		editable.array[idx].val = v
		return editable, false
	default:
		h1 := hasher.MustAny(e.key, n.seed)
		if h1 == hashval {
			// Both keys share the full hash. Bucket them.
			bucket := &collisionNode{
				edit:  edit,
				seed:  n.seed,
				hash:  h1,
				array: []entry{e, {key: k, val: v}},
			}
			editable := n.ensureEditable(edit)
			editable.array.set(idx, entry{val: bucket})
			return editable, true
		}

		// Hashes diverge deeper down. Push both leaves into a
		// new child node one level below.
		child, _ := emptyBitmapNode(n.seed).
			insert(edit, shift+shiftBits, h1, e.key, e.val)
		child, _ = child.
			insert(edit, shift+shiftBits, hashval, k, v)
		editable := n.ensureEditable(edit)
		editable.array.set(idx, entry{val: child})
		return editable, true
	}
}

func (n *bitmapNode) addEntry(
	edit *uint32,
	shift uint,
	hash uintptr,
	k, v interface{},
) *bitmapNode {
	bit := bitpos(hash, shift)
	idx := n.index(bit)
	// ensureEditable followed by insert would copy the array
	// twice, so the copy is done here with room for the new entry.
	var editable *bitmapNode
	if isEditable(n.edit, edit) {
		editable = n
	} else {
		editable = &bitmapNode{
			bitmap: n.bitmap,
			seed:   n.seed,
			edit:   edit,
			array:  n.array.copyWithCap(len(n.array) + 1),
		}
	}
	editable.array = editable.array.insert(idx, entry{key: k, val: v})
	editable.bitmap |= bit
	return editable
}

// unpack converts the node to a dense fullNode, placing child at
// slot idx and pushing every resident leaf one level down.
func (n *bitmapNode) unpack(
	edit *uint32,
	shift uint,
	idx uint,
	child trieNode,
) *fullNode {
	children := new(childArray)
	children.set(idx, child)
	var j uint
	for i := uint(0); i < width; i++ {
		if ((n.bitmap >> i) & 1) == 0 {
			continue
		}
		ent := n.array[j]
		if ent.isLeaf() {
			pushed, _ := emptyBitmapNode(n.seed).
				insert(edit,
					shift+shiftBits,
					hasher.MustAny(ent.key, n.seed),
					ent.key,
					ent.val)
			children.set(i, pushed)
		} else {
			children.set(i, ent.val.(trieNode))
		}
		j++
	}
	return &fullNode{
		seed:     n.seed,
		edit:     edit,
		count:    len(n.array) + 1,
		children: children,
	}
}

func (n *bitmapNode) remove(
	edit *uint32,
	shift uint,
	hash uintptr,
	k interface{},
) (trieNode, bool) {
	bit := bitpos(hash, shift)
	if !n.slotOccupied(bit) {
		return n, false
	}
	idx := n.index(bit)
	ent := n.array[idx]
	switch {
	case !ent.isLeaf():
		child, removed := ent.val.(trieNode).
			remove(edit, shift+shiftBits, hash, k)
		switch {
		case child == ent.val:
			return n, removed
		case child != nil:
			editable := n.ensureEditable(edit)
			editable.array.set(idx, entry{val: child})
			return editable, removed
		case n.bitmap == bit:
			// Last slot emptied, splice this node out.
			return nil, removed
		default:
			editable := n.ensureEditable(edit)
			editable.array = editable.array.remove(idx)
			editable.bitmap = editable.bitmap &^ bit
			return editable, removed
		}
	case dyn.Equal(k, ent.key):
		if n.bitmap == bit {
			return nil, true
		}
		editable := n.ensureEditable(edit)
		editable.array = editable.array.remove(idx)
		editable.bitmap = editable.bitmap &^ bit
		return editable, true
	default:
		return n, false
	}
}

func (n *bitmapNode) lookup(
	shift uint,
	hash uintptr,
	k interface{},
) (interface{}, bool) {
	bit := bitpos(hash, shift)
	if !n.slotOccupied(bit) {
		return nil, false
	}
	ent := n.array[n.index(bit)]
	if !ent.isLeaf() {
		return ent.val.(trieNode).lookup(shift+shiftBits, hash, k)
	}
	if dyn.Equal(ent.key, k) {
		return ent.val, true
	}
	return nil, false
}

func (n *bitmapNode) seq() seq.Sequence {
	out := entrySeqNew(n.array, 0, nil)
	if out == nil {
		return nil
	}
	return out
}

func (n *bitmapNode) walk(fn func(Entry) bool) bool {
	for _, ent := range n.array {
		if ent.isLeaf() {
			if !fn(ent) {
				return false
			}
			continue
		}
		child, ok := ent.val.(trieNode)
		if !ok || child == nil {
			continue
		}
		if !child.walk(fn) {
			return false
		}
	}
	return true
}

func (n *bitmapNode) index(bit uint32) int {
	return bits.OnesCount32(n.bitmap & (bit - 1))
}

func (n *bitmapNode) isFull() bool {
	return len(n.array) >= bitmapCap
}

func (n *bitmapNode) slotOccupied(bit uint32) bool {
	return n.bitmap&bit != 0
}

func (n *bitmapNode) ensureEditable(edit *uint32) *bitmapNode {
	if isEditable(n.edit, edit) {
		return n
	}
	return &bitmapNode{
		bitmap: n.bitmap,
		seed:   n.seed,
		array:  n.array.copy(),
		edit:   edit,
	}
}
