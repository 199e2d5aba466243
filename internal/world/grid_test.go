package world

import (
	"testing"

	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(c *ecs.EntityCollection, x, y float64) *ecs.Entity {
	e := c.CreateEntity()
	ecs.AddComponent(e, component.Position{X: x, Y: y})
	return e
}

func ids(c *ecs.EntityCollection, hs []ecs.EntityHandle) []ecs.EntityID {
	var out []ecs.EntityID
	for _, h := range hs {
		if e, ok := c.Resolve(h); ok {
			out = append(out, e.ID())
		}
	}
	return out
}

func TestGrid_Nearby(t *testing.T) {
	c := ecs.NewEntityCollection()
	origin := place(c, 0, 0)
	near := place(c, 3, 4)     // distance 5
	across := place(c, -21, 0) // other cell, distance 21
	far := place(c, 100, 100)
	c.CreateEntity() // no position
	c.Merge()

	g := NewGrid(10)
	g.Rebuild(c)
	assert.Equal(t, 4, g.Len())

	assert.ElementsMatch(t, []ecs.EntityID{origin.ID(), near.ID()}, ids(c, g.Nearby(0, 0, 5)))
	assert.ElementsMatch(t, []ecs.EntityID{origin.ID(), near.ID(), across.ID()}, ids(c, g.Nearby(0, 0, 21)))
	assert.ElementsMatch(t, []ecs.EntityID{far.ID()}, ids(c, g.Nearby(99, 99, 2)))
	assert.Empty(t, g.Nearby(50, 50, 1))
	assert.Nil(t, g.Nearby(0, 0, -1))
}

func TestGrid_RebuildTracksRemoval(t *testing.T) {
	c := ecs.NewEntityCollection()
	a := place(c, 1, 1)
	place(c, 2, 2)
	c.Merge()

	g := NewGrid(0)
	g.Rebuild(c)
	stale := g.Nearby(1, 1, 0.5)
	require.Len(t, stale, 1)

	a.MarkForCleanup()
	c.Cleanup()
	_, ok := c.Resolve(stale[0])
	assert.False(t, ok, "handles from an old index do not resolve after removal")

	g.Rebuild(c)
	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.Nearby(1, 1, 0.5))
}
