package hashtriemap

import (
	"jsouthworth.net/go/seq"
)

// fullNode is the dense branch node, used once a bitmap node's
// population crosses bitmapCap. Children are indexed directly by the
// hash chunk.
type fullNode struct {
	seed     uintptr
	count    int
	children *childArray
	edit     *uint32
}

func (n *fullNode) ensureEditable(edit *uint32) *fullNode {
	if isEditable(n.edit, edit) {
		return n
	}
	return &fullNode{
		seed:     n.seed,
		count:    n.count,
		children: n.children.copy(),
		edit:     edit,
	}
}

func (n *fullNode) editAndSet(edit *uint32, idx uint, child trieNode) *fullNode {
	editable := n.ensureEditable(edit)
	editable.children.set(idx, child)
	return editable
}

func (n *fullNode) insert(
	edit *uint32,
	shift uint,
	hash uintptr,
	key, val interface{},
) (trieNode, bool) {
	idx := mask(hash, shift)
	child := n.children[idx]
	if child == nil {
		newChild, added := emptyBitmapNode(n.seed).
			insert(edit, shift+shiftBits, hash, key, val)
		editable := n.editAndSet(edit, idx, newChild)
		editable.count++
		return editable, added
	}
	newChild, added := child.insert(edit, shift+shiftBits, hash, key, val)
	if newChild == child && !isEditable(n.edit, edit) {
		return n, added
	}
	return n.editAndSet(edit, idx, newChild), added
}

func (n *fullNode) remove(
	edit *uint32,
	shift uint,
	hash uintptr,
	k interface{},
) (trieNode, bool) {
	idx := mask(hash, shift)
	child := n.children[idx]
	if child == nil {
		return n, false
	}
	newChild, removed := child.remove(edit, shift+shiftBits, hash, k)
	switch newChild {
	case child:
		return n, removed
	case nil:
		if n.count <= bitmapCap/2 {
			return n.pack(edit, idx), removed
		}
		editable := n.editAndSet(edit, idx, newChild)
		editable.count--
		return editable, removed
	default:
		return n.editAndSet(edit, idx, newChild), removed
	}
}

// pack converts the node back to a sparse bitmapNode, dropping the
// child at idx.
func (n *fullNode) pack(edit *uint32, idx uint) *bitmapNode {
	var bitmap uint32
	var j int
	array := make(entries, n.count-1)
	for i := uint(0); i < uint(len(n.children)); i++ {
		if i == idx || n.children[i] == nil {
			continue
		}
		array[j].val = n.children[i]
		bitmap |= 1 << uint32(i)
		j++
	}
	return &bitmapNode{
		bitmap: bitmap,
		seed:   n.seed,
		array:  array,
		edit:   edit,
	}
}

func (n *fullNode) lookup(
	shift uint,
	hash uintptr,
	k interface{},
) (interface{}, bool) {
	child := n.children[mask(hash, shift)]
	if child == nil {
		return nil, false
	}
	return child.lookup(shift+shiftBits, hash, k)
}

func (n *fullNode) seq() seq.Sequence {
	out := childSeqNew(n.children, 0, nil)
	if out == nil {
		return nil
	}
	return out
}

func (n *fullNode) walk(fn func(Entry) bool) bool {
	for _, child := range n.children {
		if child == nil {
			continue
		}
		if !child.walk(fn) {
			return false
		}
	}
	return true
}

type childArray [width]trieNode

func (a *childArray) copy() *childArray {
	var tmp childArray
	copy(tmp[:], a[:])
	return &tmp
}

func (a *childArray) set(i uint, child trieNode) *childArray {
	a[i] = child
	return a
}

// childSeq is a lazy sequence over the children of a fullNode.
type childSeq struct {
	nodes *childArray
	index int
	s     seq.Sequence
}

func childSeqNew(nodes *childArray, index int, s seq.Sequence) *childSeq {
	if s != nil {
		return &childSeq{
			nodes: nodes,
			index: index,
			s:     s,
		}
	}
	for i := index; i < len(nodes); i++ {
		child := nodes[i]
		if child == nil {
			continue
		}
		nodeSeq := child.seq()
		if nodeSeq == nil {
			continue
		}
		return &childSeq{
			nodes: nodes,
			index: i + 1,
			s:     nodeSeq,
		}
	}
	return nil
}

func (s *childSeq) First() interface{} {
	return s.s.First()
}

func (s *childSeq) Next() seq.Sequence {
	out := childSeqNew(s.nodes, s.index, s.s.Next())
	if out == nil {
		return nil
	}
	return out
}

func (s *childSeq) String() string {
	return seq.ConvertToString(s)
}
