// Package hasher canonicalizes arbitrary values into seeded hashes
// and provides the equality predicate the collection packages use for
// keys and elements. The predicate is consistent with the hash: values
// that compare equal hash equal under the same seed.
//
// A type may take control of its own hashing by implementing the
// Hasher interface and of its own equality by implementing
// Equal(other interface{}) bool. The collection types in this module
// implement both, so maps, sets, lists and stacks nest as keys of
// other maps and sets.
//
// Values that cannot be hashed (slices, maps, funcs, nil, and structs
// with unexported fields) are reported with an error wrapping
// ErrUnhashable.
package hasher // import "github.com/crate-py/rpds/hasher"

import (
	"errors"
	"fmt"
	"reflect"

	"jsouthworth.net/go/dyn"
	"jsouthworth.net/go/hash"
)

// ErrUnhashable is wrapped by all errors returned for values that
// cannot produce a stable hash.
var ErrUnhashable = errors.New("unhashable value")

// Hasher is the capability interface for types that hash themselves.
type Hasher interface {
	Hash() uintptr
}

// Any returns a deterministic hash of v mixed with seed. Types
// implementing Hasher are dispatched to directly and ignore the seed,
// scalars are hashed with jsouthworth.net/go/hash, and arrays and
// structs are hashed recursively field by field. Values of slice, map,
// func or nil type return an error wrapping ErrUnhashable.
func Any(v interface{}, seed uintptr) (uintptr, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: nil", ErrUnhashable)
	}
	if h, ok := v.(Hasher); ok {
		return h.Hash(), nil
	}
	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return hash.Any(v, seed), nil
	}
	return reflectHash(reflect.ValueOf(v), seed)
}

func reflectHash(rv reflect.Value, seed uintptr) (uintptr, error) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.UnsafePointer:
		// Identity hash, consistent with == on these kinds.
		return hash.Any(uint64(rv.Pointer()), seed), nil
	case reflect.Array:
		out := seed
		for i := 0; i < rv.Len(); i++ {
			h, err := Any(rv.Index(i).Interface(), seed)
			if err != nil {
				return 0, err
			}
			out = Combine(out, h)
		}
		return out, nil
	case reflect.Struct:
		out := seed
		for i := 0; i < rv.NumField(); i++ {
			field := rv.Field(i)
			if !field.CanInterface() {
				return 0, fmt.Errorf(
					"%w: %s has unexported fields",
					ErrUnhashable, rv.Type())
			}
			h, err := Any(field.Interface(), seed)
			if err != nil {
				return 0, err
			}
			out = Combine(out, h)
		}
		return out, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnhashable, rv.Type())
	}
}

// MustAny is Any for callers on paths with no error return. It panics
// with the error Any would have returned; the panic value wraps
// ErrUnhashable so it can be matched after recover.
func MustAny(v interface{}, seed uintptr) uintptr {
	h, err := Any(v, seed)
	if err != nil {
		panic(err)
	}
	return h
}

// Combine mixes an accumulated hash with the hash of the next
// component. The mix is order dependent.
func Combine(acc, h uintptr) uintptr {
	return acc ^ (h + 0x9e3779b97f4a7c15 + (acc << 6) + (acc >> 2))
}

// Equal reports whether a and b are equal under the same predicate the
// collection types use. Types implementing Equal(other interface{})
// bool are dispatched to, otherwise == applies.
func Equal(a, b interface{}) bool {
	return dyn.Equal(a, b)
}
