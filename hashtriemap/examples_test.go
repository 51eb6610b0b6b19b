package hashtriemap

import (
	"fmt"

	"jsouthworth.net/go/dyn"
)

func ExampleEmpty() {
	// Empty returns a new empty map with a unique hash seed.
	m := Empty()
	fmt.Println(m)
	// Output: { }
}

func ExampleMap_Insert() {
	// Insert is similar to the go builtin m[k]=v operation, except
	// it does not modify the map in place.
	gm := map[string]bool{"a": true, "b": false}
	m := From(gm)

	m = m.Insert("c", true)
	gm["c"] = true

	fmt.Println(dyn.Equal(m, From(gm)))
	// Output: true
}

func ExampleMap_Remove() {
	m := New("a", 1)
	m, err := m.Remove("a")
	fmt.Println(m.Length(), err)

	_, err = m.Remove("a")
	fmt.Println(err)
	// Output:
	// 0 <nil>
	// key not found: a
}

func ExampleMap_Get() {
	m := New("a", 1)
	v, err := m.Get("a")
	fmt.Println(v, err)
	// Output: 1 <nil>
}

func ExampleMap_At() {
	gm := map[string]bool{"a": true, "b": false}
	m := From(gm)
	fmt.Println(m.At("a"))
	fmt.Println(gm["a"])
	// Output: true
	// true
}

func ExampleMap_AsNative() {
	m := New("a", true, "b", false)
	gm := m.AsNative()
	fmt.Printf("%T\n", gm)
	// Output: map[interface {}]interface {}
}
