package ecs

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func TestEntityHandle(t *testing.T) {
	h := EntityHandle{Slot: 3, Gen: 9}
	assert.True(t, h.Valid())
	assert.Equal(t, h, UnpackHandle(h.Pack()))
	assert.Equal(t, uint64(9)<<32|3, h.Pack())
	assert.Equal(t, "EntityHandle(3:9)", h.String())

	assert.False(t, InvalidHandle().Valid())
	assert.Equal(t, InvalidHandle(), InvalidHandle())
	assert.NotEqual(t, h, EntityHandle{Slot: 3, Gen: 10})
	assert.NotEqual(t, h, EntityHandle{Slot: 4, Gen: 9})
	assert.Equal(t, "EntityHandle(invalid)", InvalidHandle().String())

	c := newTestCollection()
	_, ok := c.Resolve(InvalidHandle())
	assert.False(t, ok)
	_, ok = c.Resolve(EntityHandle{Slot: 100})
	assert.False(t, ok)
	assert.False(t, c.HandleFor(nil).Valid())
}

func TestComponentIDs(t *testing.T) {
	a := ComponentIDOf[position]()
	assert.Equal(t, a, ComponentIDOf[position]())
	assert.NotEqual(t, a, ComponentIDOf[health]())
	assert.Equal(t, "ecs.position", ComponentName(a))
}
