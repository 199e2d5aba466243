package system

import (
	"context"
	"time"

	"github.com/l1jgo/entitycore/internal/core/ecs"
	coresys "github.com/l1jgo/entitycore/internal/core/system"
	"go.uber.org/zap"
)

// SpawnFunc stages one entity built from a named template.
type SpawnFunc func(c *ecs.EntityCollection, name string) (*ecs.Entity, error)

// SpawnSystem stages a template entity every N ticks. Phase 3 (PostUpdate).
// Spawned entities are merged at the start of the next tick.
type SpawnSystem struct {
	spawn     SpawnFunc
	template  string
	every     int
	log       *zap.Logger
	tickCount int
}

func NewSpawnSystem(spawn SpawnFunc, template string, every int, log *zap.Logger) *SpawnSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &SpawnSystem{spawn: spawn, template: template, every: every, log: log}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SpawnSystem) Update(ctx context.Context, _ time.Duration) {
	if s.every <= 0 || s.spawn == nil {
		return
	}
	s.tickCount++
	if s.tickCount%s.every != 0 {
		return
	}
	if _, err := s.spawn(ecs.Current(ctx), s.template); err != nil {
		s.log.Warn("spawn failed", zap.String("template", s.template), zap.Error(err))
	}
}
