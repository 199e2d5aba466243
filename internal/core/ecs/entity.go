package ecs

import (
	"fmt"

	"github.com/willf/bitset"
)

// EntityID is the logical identifier of an entity. It is scoped to the
// collection that created it and assigned in creation order starting at 0.
type EntityID int

// Entity is one logical object. It is owned by the EntityCollection that
// created it; callers hold *Entity only for the duration of a frame and keep
// EntityHandle values across frames.
type Entity struct {
	id         EntityID
	mask       *bitset.BitSet
	components map[ComponentID]any
	handle     EntityHandle
	cleanup    bool
	permanent  bool
	dead       bool
}

func newEntity(id EntityID, permanent bool) *Entity {
	return &Entity{
		id:         id,
		mask:       bitset.New(MaxComponentTypes),
		components: make(map[ComponentID]any, 4),
		handle:     InvalidHandle(),
		permanent:  permanent,
	}
}

func (e *Entity) ID() EntityID { return e.id }

// MarkForCleanup flags e for removal at the next Cleanup (or drop at the next
// Merge if it is still staged).
func (e *Entity) MarkForCleanup() { e.cleanup = true }

func (e *Entity) IsMarkedForCleanup() bool { return e.cleanup }
func (e *Entity) IsPermanent() bool        { return e.permanent }

// IsAlive is false once the entity has been removed from its collection.
func (e *Entity) IsAlive() bool { return !e.dead }

// Mask returns a copy of the component mask.
func (e *Entity) Mask() *bitset.BitSet { return e.mask.Clone() }

// HasAll reports whether e carries every component set in mask.
func (e *Entity) HasAll(mask *bitset.BitSet) bool { return e.mask.IsSuperSet(mask) }

func (e *Entity) ComponentCount() int { return int(e.mask.Count()) }

func (e *Entity) String() string {
	return fmt.Sprintf("Entity(id=%d %s)", e.id, e.handle)
}

// destroy drops every component so nothing reachable from a stale *Entity
// survives the entity.
func (e *Entity) destroy() {
	clear(e.components)
	e.mask.ClearAll()
	e.handle = InvalidHandle()
	e.dead = true
}
