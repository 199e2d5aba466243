package system

import (
	"context"
	"time"
)

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: external commands, scripts
	PhasePreUpdate               // 1: merge entities staged last tick
	PhaseUpdate                  // 2: simulation logic
	PhasePostUpdate              // 3: spawning, lifetime expiry
	PhaseOutput                  // 4: snapshots, digests
	PhasePersist                 // 5: snapshot persistence
	PhaseCleanup                 // 6: remove entities marked for cleanup
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "Input"
	case PhasePreUpdate:
		return "PreUpdate"
	case PhaseUpdate:
		return "Update"
	case PhasePostUpdate:
		return "PostUpdate"
	case PhaseOutput:
		return "Output"
	case PhasePersist:
		return "Persist"
	case PhaseCleanup:
		return "Cleanup"
	default:
		return "Unknown"
	}
}

// System is the interface every ECS system implements. The context carries
// the entity collection the system operates on.
type System interface {
	Phase() Phase
	Update(ctx context.Context, dt time.Duration)
}

// Func adapts a function to the System interface.
type Func struct {
	P  Phase
	Fn func(ctx context.Context, dt time.Duration)
}

func (f Func) Phase() Phase                                  { return f.P }
func (f Func) Update(ctx context.Context, dt time.Duration) { f.Fn(ctx, dt) }
