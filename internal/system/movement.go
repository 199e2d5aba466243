package system

import (
	"context"
	"time"

	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	coresys "github.com/l1jgo/entitycore/internal/core/system"
)

// MovementSystem integrates Velocity into Position for every live entity
// carrying both. Phase 2 (Update).
//
// When the collection has a Bounds singleton, entities bounce off its edges:
// the position is reflected back inside and the velocity component on that
// axis flips sign.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem { return &MovementSystem{} }

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(ctx context.Context, dt time.Duration) {
	c := ecs.Current(ctx)
	sec := dt.Seconds()
	bounds, bounded := ecs.SingletonComponent[component.Bounds](c)

	ecs.Each2(c, func(_ *ecs.Entity, p *component.Position, v *component.Velocity) {
		p.X += v.DX * sec
		p.Y += v.DY * sec
		if bounded {
			p.X, v.DX = reflectAxis(p.X, v.DX, bounds.MinX, bounds.MaxX)
			p.Y, v.DY = reflectAxis(p.Y, v.DY, bounds.MinY, bounds.MaxY)
		}
	})
}

// reflectAxis folds x back into [lo, hi]. A degenerate range pins x to lo.
func reflectAxis(x, v, lo, hi float64) (float64, float64) {
	if hi <= lo {
		return lo, 0
	}
	for x < lo || x > hi {
		if x < lo {
			x = 2*lo - x
		} else {
			x = 2*hi - x
		}
		v = -v
	}
	return x, v
}
