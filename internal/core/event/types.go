package event

import "github.com/l1jgo/entitycore/internal/core/ecs"

// EntityMerged is emitted when a staged entity becomes live.
type EntityMerged struct {
	Handle ecs.EntityHandle
	ID     ecs.EntityID
}

// EntityRemoved is emitted when a live entity is removed. The handle no
// longer resolves by the time the event is delivered.
type EntityRemoved struct {
	Handle    ecs.EntityHandle
	ID        ecs.EntityID
	Permanent bool
}

// Attach wires c's lifecycle hooks to b.
func Attach(b *Bus, c *ecs.EntityCollection) {
	c.OnMerge(func(e *ecs.Entity) {
		Emit(b, EntityMerged{Handle: c.HandleFor(e), ID: e.ID()})
	})
	c.OnRemove(func(e *ecs.Entity) {
		Emit(b, EntityRemoved{Handle: c.HandleFor(e), ID: e.ID(), Permanent: e.IsPermanent()})
	})
}
