package hashtriemap

import "unsafe"

const (
	maxDepth = (unsafe.Sizeof(uintptr(0))*8 + shiftBits - 1) / shiftBits
)

// Iterator provides a mutable iterator over the map. This allows
// efficient, heap allocation-less access to the contents. Iterators
// are not safe for concurrent access so they may not be shared
// between goroutines.
func (m *Map) Iterator() Iterator {
	i := makeIterator(m.root)
	i.HasNext() // Make sure the initial iterator value is valid
	return i
}

// Iterator is a mutable iterator for a map. It has a fixed size
// stack, the size of which is computed from the maximum number of
// nested nodes possible based on the branching factor and the size of
// the hash type.
type Iterator struct {
	depth uintptr
	stack [maxDepth + 1]struct {
		n   trieNode
		cur int
	}
}

func makeIterator(n trieNode) Iterator {
	var i Iterator
	i.stack[0].n = n
	return i
}

// HasNext is true when there are more entries to be iterated over.
func (i *Iterator) HasNext() bool {
	state := i.stack[i.depth]
	switch n := state.n.(type) {
	case *fullNode:
		for j := state.cur; j < width; j++ {
			child := n.children[j]
			if child != nil {
				i.stack[i.depth].cur = j + 1
				i.pushNode(child)
				return i.HasNext()
			}
		}
		if i.depth == 0 {
			return false
		}
		i.popNode()
		return i.HasNext()
	case *bitmapNode:
		return i.scanEntries(n.array, state.cur)
	case *collisionNode:
		return i.scanEntries(n.array, state.cur)
	default:
		return false
	}
}

func (i *Iterator) scanEntries(es entries, cur int) bool {
	for j := cur; j < len(es); j++ {
		ent := es[j]
		if ent.isLeaf() {
			i.stack[i.depth].cur = j
			return true
		}
		child, ok := ent.val.(trieNode)
		if !ok || child == nil {
			continue
		}
		i.stack[i.depth].cur = j + 1
		i.pushNode(child)
		return i.HasNext()
	}
	if i.depth == 0 {
		return false
	}
	i.popNode()
	return i.HasNext()
}

// Next provides the next key value pair and increments the cursor.
func (i *Iterator) Next() (k, v interface{}) {
	state := i.stack[i.depth]
	switch n := state.n.(type) {
	case *bitmapNode:
		ent := n.array[state.cur]
		i.stack[i.depth].cur++
		return ent.key, ent.val
	case *collisionNode:
		ent := n.array[state.cur]
		i.stack[i.depth].cur++
		return ent.key, ent.val
	default:
		// HasNext always steps past branch-only nodes.
		panic("no such entry")
	}
}

func (i *Iterator) pushNode(n trieNode) {
	i.depth = i.depth + 1
	state := i.stack[i.depth]
	state.n = n
	state.cur = 0
	i.stack[i.depth] = state
}

func (i *Iterator) popNode() {
	state := i.stack[i.depth]
	state.n = nil
	state.cur = 0
	i.stack[i.depth] = state
	i.depth = i.depth - 1
}
