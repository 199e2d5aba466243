package ecs

import (
	"fmt"
	"reflect"
	"sync"
)

// ComponentID identifies a registered component type. IDs are process-wide so
// that masks from different collections agree.
type ComponentID uint16

// MaxComponentTypes is the width of an entity's component mask.
const MaxComponentTypes = 256

var componentTypes = struct {
	mu    sync.RWMutex
	ids   map[reflect.Type]ComponentID
	names []string
}{ids: make(map[reflect.Type]ComponentID, 32)}

// ComponentIDOf returns the ID for T, registering it on first use.
func ComponentIDOf[T any]() ComponentID {
	return componentIDFor(reflect.TypeOf((*T)(nil)).Elem())
}

func componentIDFor(t reflect.Type) ComponentID {
	componentTypes.mu.RLock()
	id, ok := componentTypes.ids[t]
	componentTypes.mu.RUnlock()
	if ok {
		return id
	}

	componentTypes.mu.Lock()
	defer componentTypes.mu.Unlock()
	if id, ok := componentTypes.ids[t]; ok {
		return id
	}
	n := len(componentTypes.names)
	if n >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: more than %d component types registered (adding %s)", MaxComponentTypes, t))
	}
	id = ComponentID(n)
	componentTypes.ids[t] = id
	componentTypes.names = append(componentTypes.names, t.String())
	return id
}

// ComponentName returns the Go type name registered under id.
func ComponentName(id ComponentID) string {
	componentTypes.mu.RLock()
	defer componentTypes.mu.RUnlock()
	if int(id) >= len(componentTypes.names) {
		return fmt.Sprintf("component(%d)", id)
	}
	return componentTypes.names[id]
}

// AddComponent stores a copy of c on e and returns a pointer to the stored value.
// An existing component of the same type is replaced.
func AddComponent[T any](e *Entity, c T) *T {
	id := ComponentIDOf[T]()
	p := new(T)
	*p = c
	e.components[id] = p
	e.mask.Set(uint(id))
	return p
}

// Get returns the component of type T attached to e.
func Get[T any](e *Entity) (*T, bool) {
	if e == nil {
		return nil, false
	}
	id := ComponentIDOf[T]()
	if !e.mask.Test(uint(id)) {
		return nil, false
	}
	p, ok := e.components[id].(*T)
	return p, ok
}

func Has[T any](e *Entity) bool {
	return e != nil && e.mask.Test(uint(ComponentIDOf[T]()))
}

// RemoveComponent detaches T from e. It reports whether anything was removed.
func RemoveComponent[T any](e *Entity) bool {
	id := ComponentIDOf[T]()
	if !e.mask.Test(uint(id)) {
		return false
	}
	delete(e.components, id)
	e.mask.Clear(uint(id))
	return true
}
