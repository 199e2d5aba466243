package sim

import (
	"context"
	"time"

	"github.com/l1jgo/entitycore/internal/core/ecs"
	coresys "github.com/l1jgo/entitycore/internal/core/system"
	"github.com/l1jgo/entitycore/internal/net/packet"
)

// Publisher fans a world digest out to observers.
type Publisher interface {
	Publish(d packet.WorldDigest) int
}

// FeedSystem publishes the world digest every N ticks. Phase 4 (Output).
type FeedSystem struct {
	world     string
	pub       Publisher
	every     int
	tickCount int64
}

func NewFeedSystem(world string, pub Publisher, every int) *FeedSystem {
	if every <= 0 {
		every = 1
	}
	return &FeedSystem{world: world, pub: pub, every: every}
}

func (s *FeedSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *FeedSystem) Update(ctx context.Context, _ time.Duration) {
	s.tickCount++
	if s.tickCount%int64(s.every) != 0 {
		return
	}
	c := ecs.Current(ctx)
	s.pub.Publish(packet.WorldDigest{
		World:    s.world,
		Tick:     s.tickCount,
		Entities: int32(c.Len()),
		Staged:   int32(c.StagedLen()),
		Digest:   Digest(c),
	})
}
