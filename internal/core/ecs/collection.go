package ecs

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrSlotsExhausted is returned by TryMerge when no slot is left for a staged entity.
var ErrSlotsExhausted = eris.New("entity slots exhausted")

// EntityCollection is one world's entity storage: the live dense array, the
// staged creation buffer, the slot table and the singleton map.
//
// A collection has no internal locking. Each goroutine that mutates entities
// should own its collection, usually bound with WithCollection.
type EntityCollection struct {
	uid uuid.UUID
	log *zap.Logger

	entities []*Entity
	staged   []*Entity
	spare    []*Entity
	live     map[EntityID]*Entity
	slots    slotTable

	singletons map[ComponentID]*Entity
	dummy      *Entity

	nextID         EntityID
	assignOnCreate bool

	onMerge  []func(*Entity)
	onRemove []func(*Entity)
}

// Option configures an EntityCollection.
type Option func(*EntityCollection)

func WithLogger(log *zap.Logger) Option {
	return func(c *EntityCollection) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSlotLimit caps the number of slots the collection may allocate.
func WithSlotLimit(n uint32) Option {
	return func(c *EntityCollection) {
		if n < MaxSlots {
			c.slots.limit = n
		}
	}
}

func NewEntityCollection(opts ...Option) *EntityCollection {
	c := &EntityCollection{
		uid:            uuid.New(),
		log:            zap.NewNop(),
		entities:       make([]*Entity, 0, 1024),
		staged:         make([]*Entity, 0, 64),
		spare:          make([]*Entity, 0, 64),
		live:           make(map[EntityID]*Entity, 1024),
		slots:          newSlotTable(),
		singletons:     make(map[ComponentID]*Entity),
		dummy:          newEntity(-1, true),
		assignOnCreate: AssignHandlesOnCreate,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("collection", c.uid.String()))
	return c
}

// UID identifies the collection in logs and persisted snapshots.
func (c *EntityCollection) UID() uuid.UUID { return c.uid }

// OnMerge registers fn to run for every entity promoted by Merge.
func (c *EntityCollection) OnMerge(fn func(*Entity)) { c.onMerge = append(c.onMerge, fn) }

// OnRemove registers fn to run for every live entity just before it is
// destroyed by Cleanup or DeleteAll. Components are still readable.
func (c *EntityCollection) OnRemove(fn func(*Entity)) { c.onRemove = append(c.onRemove, fn) }

// CreateEntity stages a new entity. It stays invisible to queries until Merge.
func (c *EntityCollection) CreateEntity() *Entity {
	return c.create(false)
}

// CreatePermanentEntity stages a new entity that survives DeleteAll(false).
func (c *EntityCollection) CreatePermanentEntity() *Entity {
	return c.create(true)
}

func (c *EntityCollection) create(permanent bool) *Entity {
	e := newEntity(c.nextID, permanent)
	c.nextID++
	if c.assignOnCreate {
		if h, ok := c.slots.acquire(e); ok {
			e.handle = h
		}
	}
	c.staged = append(c.staged, e)
	return e
}

// Merge promotes staged entities into the live array in creation order.
// Entities marked for cleanup while staged are dropped. If slots run out the
// remaining entities stay staged and a warning is logged.
func (c *EntityCollection) Merge() {
	if err := c.TryMerge(); err != nil {
		c.log.Warn("merge incomplete",
			zap.Int("staged", len(c.staged)),
			zap.Error(err),
		)
	}
}

// TryMerge is Merge that reports slot exhaustion instead of logging it.
func (c *EntityCollection) TryMerge() error {
	if len(c.staged) == 0 {
		return nil
	}

	// Hooks may stage new entities; those land in the fresh buffer and wait
	// for the next merge.
	pending := c.staged
	c.staged = c.spare[:0]

	var leftover []*Entity
	for i, e := range pending {
		if e.cleanup {
			if e.handle.Valid() {
				c.slots.release(e.handle)
			}
			e.destroy()
			continue
		}
		if !e.handle.Valid() {
			h, ok := c.slots.acquire(e)
			if !ok {
				leftover = append(leftover, pending[i:]...)
				break
			}
			e.handle = h
		}
		c.slots.setIndex(e.handle, len(c.entities))
		c.entities = append(c.entities, e)
		c.live[e.id] = e
		for _, fn := range c.onMerge {
			fn(e)
		}
	}

	clear(pending)
	c.spare = pending[:0]

	if len(leftover) > 0 {
		c.staged = append(leftover, c.staged...)
		return eris.Wrapf(ErrSlotsExhausted, "%d entities left staged", len(leftover))
	}
	return nil
}

// MarkIDForCleanup flags the entity with id for removal. The entity stays in
// the live array until Cleanup so iteration in the current frame is not
// disturbed. Staged entities are found too and will be dropped at Merge.
func (c *EntityCollection) MarkIDForCleanup(id EntityID) bool {
	if e, ok := c.live[id]; ok {
		e.cleanup = true
		return true
	}
	if e, ok := c.StagedByID(id); ok {
		e.cleanup = true
		return true
	}
	c.log.Debug("mark for cleanup: no such entity", zap.Int("id", int(id)))
	return false
}

// Cleanup swap-removes every live entity marked for cleanup and frees its
// slot. It returns the number of entities removed.
func (c *EntityCollection) Cleanup() int {
	return c.removeWhere(func(e *Entity) bool { return e.cleanup })
}

// DeleteAll removes every live entity, keeping permanents unless
// includePermanent is set. Staged entities are dropped under the same rule.
// Surviving permanents keep their slots and handles.
func (c *EntityCollection) DeleteAll(includePermanent bool) int {
	doomed := func(e *Entity) bool { return includePermanent || !e.permanent }

	kept := c.staged[:0]
	for _, e := range c.staged {
		if !doomed(e) {
			kept = append(kept, e)
			continue
		}
		if e.handle.Valid() {
			c.slots.release(e.handle)
		}
		e.destroy()
	}
	clear(c.staged[len(kept):])
	c.staged = kept

	n := c.removeWhere(doomed)
	for id, e := range c.singletons {
		if e.dead {
			delete(c.singletons, id)
		}
	}
	return n
}

// DeleteAllNoReallyIMeanAll is the hard reset: live and staged entities,
// permanents, singletons, the slot table and the id counter are all cleared.
// No handle issued before the reset resolves afterwards.
func (c *EntityCollection) DeleteAllNoReallyIMeanAll() {
	for _, e := range c.entities {
		e.destroy()
	}
	for _, e := range c.staged {
		e.destroy()
	}
	clear(c.entities)
	clear(c.staged)
	c.entities = c.entities[:0]
	c.staged = c.staged[:0]
	clear(c.live)
	clear(c.singletons)
	c.slots.reset()
	c.dummy = newEntity(-1, true)
	c.nextID = 0
	c.log.Debug("collection reset")
}

func (c *EntityCollection) removeWhere(pred func(*Entity) bool) int {
	removed := 0
	for i := 0; i < len(c.entities); {
		if !pred(c.entities[i]) {
			i++
			continue
		}
		c.removeAt(i)
		removed++
	}
	return removed
}

// removeAt moves the last live entity into position i and shrinks the array.
func (c *EntityCollection) removeAt(i int) {
	e := c.entities[i]
	last := len(c.entities) - 1
	if i != last {
		moved := c.entities[last]
		c.entities[i] = moved
		c.slots.setIndex(moved.handle, i)
	}
	c.entities[last] = nil
	c.entities = c.entities[:last]
	delete(c.live, e.id)

	for _, fn := range c.onRemove {
		fn(e)
	}
	c.slots.release(e.handle)
	e.destroy()
}

// HandleFor returns the handle naming e's current slot and generation, or the
// invalid handle when e has no slot (not merged yet, or already removed).
func (c *EntityCollection) HandleFor(e *Entity) EntityHandle {
	if e == nil {
		return InvalidHandle()
	}
	if s := c.slots.lookup(e.handle); s != nil && s.occupant == e {
		return e.handle
	}
	return InvalidHandle()
}

// Resolve returns the entity h was issued for, or false when the slot has
// since been freed or reused.
func (c *EntityCollection) Resolve(h EntityHandle) (*Entity, bool) {
	s := c.slots.lookup(h)
	if s == nil {
		return nil, false
	}
	return s.occupant, true
}

// EntityByID finds a live entity by id.
func (c *EntityCollection) EntityByID(id EntityID) (*Entity, bool) {
	e, ok := c.live[id]
	return e, ok
}

// StagedByID finds a staged entity by id.
func (c *EntityCollection) StagedByID(id EntityID) (*Entity, bool) {
	for _, e := range c.staged {
		if e.id == id {
			return e, true
		}
	}
	return nil, false
}

// Each calls fn for every live entity in array order. fn must not merge,
// clean up or delete.
func (c *EntityCollection) Each(fn func(*Entity)) {
	for _, e := range c.entities {
		fn(e)
	}
}

func (c *EntityCollection) Len() int       { return len(c.entities) }
func (c *EntityCollection) StagedLen() int { return len(c.staged) }
func (c *EntityCollection) SlotCount() int { return c.slots.size() }
func (c *EntityCollection) FreeSlots() int { return c.slots.freeCount() }

// NextID is the id the next created entity will get.
func (c *EntityCollection) NextID() EntityID { return c.nextID }
