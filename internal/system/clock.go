package system

import (
	"context"
	"time"

	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	coresys "github.com/l1jgo/entitycore/internal/core/system"
)

// ClockSystem advances the Clock singleton. Phase 0 (Input). Collections
// without a clock are left alone.
type ClockSystem struct{}

func NewClockSystem() *ClockSystem { return &ClockSystem{} }

func (s *ClockSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ClockSystem) Update(ctx context.Context, _ time.Duration) {
	if clk, ok := ecs.SingletonComponent[component.Clock](ecs.Current(ctx)); ok {
		clk.Tick++
	}
}
