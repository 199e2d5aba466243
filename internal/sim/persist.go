package sim

import (
	"context"
	"time"

	"github.com/l1jgo/entitycore/internal/core/ecs"
	coresys "github.com/l1jgo/entitycore/internal/core/system"
	"github.com/l1jgo/entitycore/internal/persist"
	"go.uber.org/zap"
)

// SnapshotStore persists one tick of one world.
type SnapshotStore interface {
	Save(ctx context.Context, hdr persist.SnapshotHeader, rows []persist.SnapshotRow) error
}

// SnapshotSystem saves the positioned entities every N ticks.
// Phase 5 (Persist). Save errors are logged; the simulation keeps running.
type SnapshotSystem struct {
	store     SnapshotStore
	every     int
	log       *zap.Logger
	tickCount int64
	saved     int
}

func NewSnapshotSystem(store SnapshotStore, every int, log *zap.Logger) *SnapshotSystem {
	if log == nil {
		log = zap.NewNop()
	}
	if every <= 0 {
		every = 1
	}
	return &SnapshotSystem{store: store, every: every, log: log}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SnapshotSystem) Update(ctx context.Context, _ time.Duration) {
	s.tickCount++
	if s.tickCount%int64(s.every) != 0 {
		return
	}
	c := ecs.Current(ctx)
	rows := Rows(c)
	hdr := persist.SnapshotHeader{
		World:       c.UID(),
		Tick:        s.tickCount,
		EntityCount: len(rows),
		Digest:      DigestRows(rows),
	}
	if err := s.store.Save(ctx, hdr, rows); err != nil {
		s.log.Error("snapshot save failed", zap.Int64("tick", s.tickCount), zap.Error(err))
		return
	}
	s.saved++
	s.log.Debug("snapshot saved", zap.Int64("tick", s.tickCount), zap.Int("entities", len(rows)))
}

// Saved returns the number of successful saves.
func (s *SnapshotSystem) Saved() int { return s.saved }
