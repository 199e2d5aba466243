package system

import (
	"context"
	"time"

	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	coresys "github.com/l1jgo/entitycore/internal/core/system"
	"go.uber.org/zap"
)

// LifetimeSystem counts down Lifetime components and marks entities whose
// lifetime ran out. Phase 3 (PostUpdate). Marked entities stay visible to
// the rest of the tick and are removed by the cleanup phase.
type LifetimeSystem struct {
	log *zap.Logger
}

func NewLifetimeSystem(log *zap.Logger) *LifetimeSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &LifetimeSystem{log: log}
}

func (s *LifetimeSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *LifetimeSystem) Update(ctx context.Context, _ time.Duration) {
	q := ecs.QueryIn(ctx, ecs.QueryOptions{IgnoreTempWarning: true}).
		Where(ecs.WhereHasComponent[component.Lifetime]()).
		WhereNotMarkedForCleanup()

	expired := 0
	for e := range q.Gen() {
		lt, _ := ecs.Get[component.Lifetime](e)
		lt.Ticks--
		if lt.Ticks <= 0 {
			e.MarkForCleanup()
			expired++
		}
	}
	if expired > 0 {
		s.log.Debug("lifetimes expired", zap.Int("count", expired))
	}
}
