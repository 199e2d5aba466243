package sim

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/l1jgo/entitycore/internal/config"
	"github.com/l1jgo/entitycore/internal/data"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result summarises one finished world.
type Result struct {
	Name     string
	UID      uuid.UUID
	Ticks    int64
	Entities int
	Digest   uint64
	Stats    Stats
	Saved    int
}

// OptionsFor derives the options of world i from the configuration. Each
// world gets its own seed so worlds diverge unless seeds are pinned.
func OptionsFor(cfg *config.Config, i int, templates *data.TemplateTable, store SnapshotStore, feed Publisher, log *zap.Logger) Options {
	sim := cfg.Simulation
	opts := Options{
		Name:            fmt.Sprintf("world-%d", i),
		Seed:            sim.Seed + int64(i),
		Step:            sim.TickRate,
		SlotLimit:       cfg.Collection.SlotLimit,
		InitialEntities: sim.InitialEntities,
		SpawnEvery:      sim.SpawnEvery,
		SpawnTemplate:   sim.SpawnTemplate,
		Templates:       templates,
		Store:           store,
		SaveEvery:       cfg.Database.SaveEvery,
		Feed:            feed,
		FeedEvery:       cfg.Feed.Every,
		Log:             log,
	}
	if cfg.Scripting.Enabled {
		opts.ScriptDir = cfg.Scripting.Dir
		opts.OnTick = cfg.Scripting.OnTick
	}
	return opts
}

// RunWorlds runs cfg.Simulation.Worlds isolated worlds concurrently, one
// goroutine each. The first failing world cancels the others.
func RunWorlds(ctx context.Context, cfg *config.Config, templates *data.TemplateTable, store SnapshotStore, feed Publisher, log *zap.Logger) ([]Result, error) {
	results := make([]Result, cfg.Simulation.Worlds)
	g, gctx := errgroup.WithContext(ctx)

	for i := range results {
		g.Go(func() error {
			w, err := New(OptionsFor(cfg, i, templates, store, feed, log))
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Run(gctx, cfg.Simulation.Ticks, cfg.Simulation.TickRate); err != nil {
				return err
			}
			results[i] = Result{
				Name:     w.Name(),
				UID:      w.UID(),
				Ticks:    w.Tick(),
				Entities: w.Collection().Len(),
				Digest:   w.Digest(),
				Stats:    w.Stats(),
				Saved:    w.SnapshotsSaved(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
