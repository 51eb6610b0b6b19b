// Package hashtriemap implements a persistent hash trie map (a hash
// array mapped trie in the style of Clojure's persistent hashmap, see
// https://lampwww.epfl.ch/papers/idealhashtrees.pdf). Every update
// returns a new map that shares all unmodified subtrees with the
// original, so prior versions stay valid and may be read concurrently
// without coordination.
//
// Keys must be hashable under the hasher package: scalars, arrays and
// structs of scalars, pointers, and any type implementing the
// hasher.Hasher capability interface. Key and value equality defaults
// to == and may be overridden per type by implementing
// Equal(other interface{}) bool.
package hashtriemap
