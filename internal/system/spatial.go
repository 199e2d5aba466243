package system

import (
	"context"
	"time"

	"github.com/l1jgo/entitycore/internal/core/ecs"
	coresys "github.com/l1jgo/entitycore/internal/core/system"
	"github.com/l1jgo/entitycore/internal/world"
)

// SpatialIndexSystem rebuilds the world grid from current positions.
// Phase 2 (Update), registered after MovementSystem so later phases query
// this tick's positions.
type SpatialIndexSystem struct {
	grid *world.Grid
}

func NewSpatialIndexSystem(grid *world.Grid) *SpatialIndexSystem {
	return &SpatialIndexSystem{grid: grid}
}

func (s *SpatialIndexSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SpatialIndexSystem) Update(ctx context.Context, _ time.Duration) {
	s.grid.Rebuild(ecs.Current(ctx))
}
