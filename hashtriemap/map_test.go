package hashtriemap

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/crate-py/rpds/hasher"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"jsouthworth.net/go/dyn"
	"jsouthworth.net/go/seq"
)

type rmap struct {
	entries map[string]string
	m       *Map
}

func makeRandomMap(entries map[string]string) *rmap {
	m := Empty().AsTransient()
	for key, val := range entries {
		m = m.Insert(key, val)
	}
	return &rmap{
		entries: entries,
		m:       m.AsPersistent(),
	}
}

func unmakeRandomMap(r *rmap) map[string]string {
	return r.entries
}

var genRandomMap = gopter.DeriveGen(makeRandomMap, unmakeRandomMap,
	gen.MapOf(gen.Identifier(), gen.Identifier()),
)

func TestNew(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("New requires an even number of elements", prop.ForAll(
		func(elems []interface{}) (ok bool) {
			ok = true
			defer func() {
				_ = recover()
			}()
			_ = New(elems...)
			return false
		},
		gen.SliceOf(gen.Identifier(), reflect.TypeOf((*interface{})(nil)).Elem()).
			SuchThat(func(sl []interface{}) bool { return len(sl)%2 != 0 }),
	))
	properties.Property("New produces the expected map", prop.ForAll(
		func(elems []interface{}) bool {
			m := New(elems...)
			exp := make(map[interface{}]interface{})
			for i := 0; i < len(elems); i += 2 {
				exp[elems[i]] = elems[i+1]
			}
			for key, val := range exp {
				if m.At(key) != val {
					return false
				}
			}
			return m.Length() == len(exp)
		},
		gen.SliceOf(gen.Identifier(), reflect.TypeOf((*interface{})(nil)).Elem()).
			SuchThat(func(sl []interface{}) bool { return len(sl)%2 == 0 }),
	))
	properties.TestingRun(t)
}

func TestInsert(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("m.Insert(k,v).At(k) == v", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			return rm.m.Insert(k, v).At(k) == v
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.Property("insert of a new key grows the map by one", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			if rm.m.Contains(k) {
				return true
			}
			return rm.m.Insert(k, v).Length() == rm.m.Length()+1
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.Property("insert of an identical entry returns the same map", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			m := rm.m.Insert(k, v)
			return m.Insert(k, v) == m
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.Property("replacement keeps the length", prop.ForAll(
		func(rm *rmap, k, v1, v2 string) bool {
			m := rm.m.Insert(k, v1)
			return m.Insert(k, v2).Length() == m.Length()
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.Property("insert leaves the original unchanged", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			if rm.m.Contains(k) {
				return true
			}
			rm.m.Insert(k, v)
			if rm.m.Contains(k) {
				return false
			}
			return rm.m.Length() == len(rm.entries)
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.TestingRun(t)
}

func TestRemove(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("m.Insert(k,v).Remove(k) == m for absent k", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			if rm.m.Contains(k) {
				return true
			}
			m, err := rm.m.Insert(k, v).Remove(k)
			if err != nil {
				return false
			}
			return dyn.Equal(m, rm.m)
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.Property("removed keys are gone", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			m, err := rm.m.Insert(k, v).Remove(k)
			if err != nil {
				return false
			}
			return !m.Contains(k)
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.Property("Remove of an absent key reports ErrKeyNotFound", prop.ForAll(
		func(rm *rmap, k string) bool {
			if rm.m.Contains(k) {
				return true
			}
			_, err := rm.m.Remove(k)
			return errors.Is(err, ErrKeyNotFound)
		},
		genRandomMap,
		gen.Identifier(),
	))
	properties.Property("Discard of an absent key returns the same map", prop.ForAll(
		func(rm *rmap, k string) bool {
			if rm.m.Contains(k) {
				return true
			}
			return rm.m.Discard(k) == rm.m
		},
		genRandomMap,
		gen.Identifier(),
	))
	properties.Property("Discard of a present key shrinks by one", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			m := rm.m.Insert(k, v)
			out := m.Discard(k)
			return out.Length() == m.Length()-1 &&
				!out.Contains(k)
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.TestingRun(t)
}

func TestGet(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("Get of a present key returns its value", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			got, err := rm.m.Insert(k, v).Get(k)
			return err == nil && got == v
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.Property("Get of an absent key reports ErrKeyNotFound", prop.ForAll(
		func(rm *rmap, k string) bool {
			if rm.m.Contains(k) {
				return true
			}
			_, err := rm.m.Get(k)
			return errors.Is(err, ErrKeyNotFound)
		},
		genRandomMap,
		gen.Identifier(),
	))
	properties.Property("Get distinguishes nil values from absence", prop.ForAll(
		func(rm *rmap, k string) bool {
			m := rm.m.Insert(k, nil)
			v, err := m.Get(k)
			return err == nil && v == nil
		},
		genRandomMap,
		gen.Identifier(),
	))
	properties.TestingRun(t)
}

func TestOrderIndependence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("insertion order does not affect equality or hash", prop.ForAll(
		func(entries map[string]string) bool {
			keys := make([]string, 0, len(entries))
			for k := range entries {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fwd := Empty()
			for _, k := range keys {
				fwd = fwd.Insert(k, entries[k])
			}
			rev := Empty()
			for i := len(keys) - 1; i >= 0; i-- {
				rev = rev.Insert(keys[i], entries[keys[i]])
			}
			return dyn.Equal(fwd, rev) &&
				fwd.Hash() == rev.Hash()
		},
		gen.MapOf(gen.Identifier(), gen.Identifier()),
	))
	properties.TestingRun(t)
}

func TestEqual(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("maps with the same entries are equal", prop.ForAll(
		func(rm *rmap) bool {
			rebuilt := makeRandomMap(rm.entries).m
			return dyn.Equal(rm.m, rebuilt) &&
				rm.m.Hash() == rebuilt.Hash()
		},
		genRandomMap,
	))
	properties.Property("an extra entry breaks equality", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			if rm.m.Contains(k) {
				return true
			}
			return !dyn.Equal(rm.m.Insert(k, v), rm.m)
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.TestingRun(t)
}

func TestNestedMaps(t *testing.T) {
	inner1 := New("a", 1, "b", 2)
	inner2 := New("b", 2, "a", 1)
	if !dyn.Equal(inner1, inner2) {
		t.Fatal("equal inner maps are not equal")
	}
	if inner1.Hash() != inner2.Hash() {
		t.Fatal("equal inner maps hash differently")
	}
	outer := Empty().Insert(inner1, "x")
	if !outer.Contains(inner2) {
		t.Fatal("map key lookup did not use value equality")
	}
	if outer.At(inner2) != "x" {
		t.Fatal("map key lookup returned the wrong value")
	}
}

func TestUnhashableKeyPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, hasher.ErrUnhashable) {
			t.Fatalf("got %v, expected ErrUnhashable panic", r)
		}
	}()
	Empty().Insert([]int{1, 2}, "boom")
}

func TestLiterals(t *testing.T) {
	m := New("foo", "bar", "baz", "quux")
	if !dyn.Equal(m.Insert("spam", 37),
		New("foo", "bar", "baz", "quux", "spam", 37)) {
		t.Fatal("Insert of a new entry")
	}
	removed, err := m.Remove("foo")
	if err != nil {
		t.Fatal(err)
	}
	if !dyn.Equal(removed, New("baz", "quux")) {
		t.Fatal("Remove of a present key")
	}
	_, err = m.Remove("missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("got %v, expected ErrKeyNotFound", err)
	}
}

func TestRangeMap(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("Range visits every entry", prop.ForAll(
		func(rm *rmap) bool {
			seen := make(map[string]string)
			rm.m.Range(func(key, val interface{}) {
				seen[key.(string)] = val.(string)
			})
			if len(seen) != len(rm.entries) {
				return false
			}
			for k, v := range rm.entries {
				if seen[k] != v {
					return false
				}
			}
			return true
		},
		genRandomMap,
	))
	properties.Property("Range stops when the function returns false", prop.ForAll(
		func(rm *rmap) bool {
			if len(rm.entries) == 0 {
				return true
			}
			var n int
			rm.m.Range(func(key, val interface{}) bool {
				n++
				return false
			})
			return n == 1
		},
		genRandomMap,
	))
	properties.Property("Range dispatches typed functions", prop.ForAll(
		func(rm *rmap) bool {
			var n int
			rm.m.Range(func(k, v string) {
				n++
			})
			return n == len(rm.entries)
		},
		genRandomMap,
	))
	properties.TestingRun(t)
}

func TestSeqMap(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("Seq enumerates every entry and is restartable", prop.ForAll(
		func(rm *rmap) bool {
			s := rm.m.Seq()
			walk := func() bool {
				seen := make(map[string]string)
				for cur := s; cur != nil; cur = seq.Seq(seq.Next(cur)) {
					entry := seq.First(cur).(Entry)
					seen[entry.Key().(string)] =
						entry.Value().(string)
				}
				if len(seen) != len(rm.entries) {
					return false
				}
				for k, v := range rm.entries {
					if seen[k] != v {
						return false
					}
				}
				return true
			}
			return walk() && walk()
		},
		genRandomMap,
	))
	properties.TestingRun(t)
}

func TestTransient(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("Transform batches inserts", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			out := rm.m.Transform(func(t *TMap) *TMap {
				return t.Insert(k, v)
			})
			return out.At(k) == v &&
				(rm.m.Contains(k) || !dyn.Equal(out, rm.m))
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.Property("transients do not disturb their source", prop.ForAll(
		func(rm *rmap, k, v string) bool {
			if rm.m.Contains(k) {
				return true
			}
			t := rm.m.AsTransient()
			t.Insert(k, v)
			t.AsPersistent()
			return !rm.m.Contains(k)
		},
		genRandomMap,
		gen.Identifier(),
		gen.Identifier(),
	))
	properties.TestingRun(t)
}

func TestTransientAfterPersistentPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r != errTafterP {
			t.Fatalf("got %v, expected transient-after-persistent panic", r)
		}
	}()
	tm := Empty().AsTransient()
	tm.AsPersistent()
	tm.Insert("a", 1)
}

func TestFromMap(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("From(m) == m", prop.ForAll(
		func(rm *rmap) bool {
			return From(rm.m) == rm.m
		},
		genRandomMap,
	))
	properties.Property("From(map[kT]vT) builds the right map", prop.ForAll(
		func(entries map[string]string) bool {
			m := From(entries)
			if m.Length() != len(entries) {
				return false
			}
			for k, v := range entries {
				if m.At(k) != v {
					return false
				}
			}
			return true
		},
		gen.MapOf(gen.Identifier(), gen.Identifier()),
	))
	properties.Property("AsNative round trips", prop.ForAll(
		func(rm *rmap) bool {
			native := rm.m.AsNative()
			if len(native) != len(rm.entries) {
				return false
			}
			for k, v := range rm.entries {
				if native[k] != v {
					return false
				}
			}
			return true
		},
		genRandomMap,
	))
	properties.TestingRun(t)
}

func BenchmarkMapInsert(b *testing.B) {
	b.ReportAllocs()
	m := Empty()
	for i := 0; i < b.N; i++ {
		m = m.Insert(i, i)
	}
}

func BenchmarkTMapInsert(b *testing.B) {
	b.ReportAllocs()
	m := Empty().AsTransient()
	for i := 0; i < b.N; i++ {
		m = m.Insert(i, i)
	}
}

func BenchmarkNativeMapAssign(b *testing.B) {
	b.ReportAllocs()
	m := make(map[interface{}]interface{})
	for i := 0; i < b.N; i++ {
		m[i] = i
	}
}
