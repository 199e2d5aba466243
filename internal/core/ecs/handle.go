package ecs

import (
	"fmt"
	"math"
)

// invalidSlot marks a handle that names no slot at all.
const invalidSlot = math.MaxUint32

// EntityHandle names a slot plus the generation it had when the handle was
// issued. It never owns the entity; resolution goes through the collection.
type EntityHandle struct {
	Slot uint32
	Gen  uint32
}

// InvalidHandle returns the sentinel handle. It never resolves.
func InvalidHandle() EntityHandle {
	return EntityHandle{Slot: invalidSlot}
}

func (h EntityHandle) Valid() bool { return h.Slot != invalidSlot }

// Pack encodes the generation in the upper 32 bits and the slot in the lower 32 bits.
func (h EntityHandle) Pack() uint64 {
	return uint64(h.Gen)<<32 | uint64(h.Slot)
}

func UnpackHandle(v uint64) EntityHandle {
	return EntityHandle{Slot: uint32(v), Gen: uint32(v >> 32)}
}

func (h EntityHandle) String() string {
	if !h.Valid() {
		return "EntityHandle(invalid)"
	}
	return fmt.Sprintf("EntityHandle(%d:%d)", h.Slot, h.Gen)
}
