package ecs

import (
	"reflect"
	"sync"

	"github.com/rotisserie/eris"
)

// ErrPointerLikeSnapshot is returned when a projected value type could alias
// collection storage.
var ErrPointerLikeSnapshot = eris.New("snapshot value type is pointer-like")

// PlainValue is the set of projection results SnapshotFor accepts. Pointers,
// slices, maps, channels, funcs, interfaces and unsafe.Pointer are not in the
// set, so projecting to them does not compile.
type PlainValue interface {
	~bool | ~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~complex64 | ~complex128 |
		EntityHandle
}

// Snapshot pairs a handle with a value projected from the entity it names.
type Snapshot[V any] struct {
	Handle EntityHandle
	Value  V
}

// SnapshotFor projects the T component of every live entity carrying it.
// The projector receives a copy of the component. Results follow the live
// array; keep the handles and Resolve them later.
func SnapshotFor[T any, V PlainValue](c *EntityCollection, project func(T) V) []Snapshot[V] {
	return snapshot(c, project)
}

// SnapshotForValue is SnapshotFor for composite value types. V is checked once
// per type: any pointer-like part, however deeply nested, makes it fail with
// ErrPointerLikeSnapshot.
func SnapshotForValue[T, V any](c *EntityCollection, project func(T) V) ([]Snapshot[V], error) {
	vt := reflect.TypeOf((*V)(nil)).Elem()
	if !plainType(vt) {
		return nil, eris.Wrapf(ErrPointerLikeSnapshot, "project %s to %s",
			reflect.TypeOf((*T)(nil)).Elem(), vt)
	}
	return snapshot(c, project), nil
}

func snapshot[T, V any](c *EntityCollection, project func(T) V) []Snapshot[V] {
	id := uint(ComponentIDOf[T]())
	out := make([]Snapshot[V], 0, len(c.entities))
	for _, e := range c.entities {
		if !e.mask.Test(id) {
			continue
		}
		p, ok := e.components[ComponentID(id)].(*T)
		if !ok {
			continue
		}
		out = append(out, Snapshot[V]{Handle: e.handle, Value: project(*p)})
	}
	return out
}

var plainTypes sync.Map // reflect.Type -> bool

func plainType(t reflect.Type) bool {
	if v, ok := plainTypes.Load(t); ok {
		return v.(bool)
	}
	ok := checkPlain(t)
	plainTypes.Store(t, ok)
	return ok
}

func checkPlain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return checkPlain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !checkPlain(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		// Pointer, UnsafePointer, Uintptr, Slice, Map, Chan, Func, Interface.
		return false
	}
}
