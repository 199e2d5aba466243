package ecs

// MaxSlots bounds the slot index space. The last index is reserved for the
// invalid handle sentinel.
const MaxSlots = invalidSlot

// notLive is the live index of a slot whose occupant is staged or absent.
const notLive = -1

type slotEntry struct {
	gen      uint32
	index    int // position in the live array, notLive when not merged
	occupant *Entity
}

// slotTable manages slot allocation with generational indices and a free list.
type slotTable struct {
	entries  []slotEntry
	freeList []uint32
	limit    uint32
	base     uint32 // generation given to newly allocated slots
}

func newSlotTable() slotTable {
	return slotTable{
		entries:  make([]slotEntry, 0, 1024),
		freeList: make([]uint32, 0, 256),
		limit:    MaxSlots,
	}
}

// acquire hands out a slot for e, reusing the most recently freed one first.
func (t *slotTable) acquire(e *Entity) (EntityHandle, bool) {
	if n := len(t.freeList); n > 0 {
		idx := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		s := &t.entries[idx]
		s.occupant = e
		s.index = notLive
		return EntityHandle{Slot: idx, Gen: s.gen}, true
	}
	if uint32(len(t.entries)) >= t.limit {
		return InvalidHandle(), false
	}
	idx := uint32(len(t.entries))
	t.entries = append(t.entries, slotEntry{gen: t.base, occupant: e, index: notLive})
	return EntityHandle{Slot: idx, Gen: t.base}, true
}

// release frees the slot named by h and bumps its generation. Stale handles
// are ignored.
func (t *slotTable) release(h EntityHandle) bool {
	s := t.lookup(h)
	if s == nil {
		return false
	}
	s.gen++
	s.occupant = nil
	s.index = notLive
	t.freeList = append(t.freeList, h.Slot)
	return true
}

// lookup returns the slot entry when h is current, nil otherwise.
func (t *slotTable) lookup(h EntityHandle) *slotEntry {
	if !h.Valid() || int(h.Slot) >= len(t.entries) {
		return nil
	}
	s := &t.entries[h.Slot]
	if s.occupant == nil || s.gen != h.Gen {
		return nil
	}
	return s
}

func (t *slotTable) setIndex(h EntityHandle, index int) {
	if s := t.lookup(h); s != nil {
		s.index = index
	}
}

// reset forgets every slot. New slots start one generation past anything
// handed out before, so handles issued before the reset never resolve again.
func (t *slotTable) reset() {
	var span uint32
	for i := range t.entries {
		if d := t.entries[i].gen - t.base + 1; d > span {
			span = d
		}
		t.entries[i] = slotEntry{}
	}
	t.base += span
	t.entries = t.entries[:0]
	t.freeList = t.freeList[:0]
}

func (t *slotTable) size() int      { return len(t.entries) }
func (t *slotTable) freeCount() int { return len(t.freeList) }
