package system

import (
	"context"
	"time"

	"github.com/l1jgo/entitycore/internal/core/ecs"
	"go.uber.org/zap"
)

// MergeSystem promotes entities staged during the previous tick so they are
// visible to this tick's queries. Phase 1 (PreUpdate).
type MergeSystem struct{}

func NewMergeSystem() *MergeSystem { return &MergeSystem{} }

func (s *MergeSystem) Phase() Phase { return PhasePreUpdate }

func (s *MergeSystem) Update(ctx context.Context, _ time.Duration) {
	ecs.MergeEntityArrays(ctx)
}

// CleanupSystem removes entities marked for cleanup at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	log *zap.Logger
}

func NewCleanupSystem(log *zap.Logger) *CleanupSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupSystem{log: log}
}

func (s *CleanupSystem) Phase() Phase { return PhaseCleanup }

func (s *CleanupSystem) Update(ctx context.Context, _ time.Duration) {
	if n := ecs.Cleanup(ctx); n > 0 {
		s.log.Debug("entities cleaned up", zap.Int("count", n))
	}
}
