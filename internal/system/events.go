package system

import (
	"context"
	"time"

	"github.com/l1jgo/entitycore/internal/core/event"
	coresys "github.com/l1jgo/entitycore/internal/core/system"
)

// EventDispatchSystem delivers the events emitted during the previous tick.
// Phase 0 (Input), registered before the other input systems.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ context.Context, _ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
