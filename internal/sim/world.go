package sim

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	"github.com/l1jgo/entitycore/internal/core/event"
	coresys "github.com/l1jgo/entitycore/internal/core/system"
	"github.com/l1jgo/entitycore/internal/data"
	"github.com/l1jgo/entitycore/internal/scripting"
	"github.com/l1jgo/entitycore/internal/system"
	"github.com/l1jgo/entitycore/internal/world"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultStep is the simulated time advanced per tick when none is given.
const DefaultStep = 200 * time.Millisecond

// Options configures one World.
type Options struct {
	Name            string
	Seed            int64
	Step            time.Duration // simulated time per tick
	CellSize        float64       // spatial grid cell edge, 0 = default
	SlotLimit       uint32
	InitialEntities int
	SpawnEvery      int
	SpawnTemplate   string
	Templates       *data.TemplateTable // nil disables template spawning
	ScriptDir       string              // "" disables scripting
	OnTick          string
	Store           SnapshotStore // nil disables persistence
	SaveEvery       int
	Feed            Publisher // nil disables the digest feed
	FeedEvery       int
	Log             *zap.Logger
}

// Stats counts lifecycle events delivered through the world's bus.
type Stats struct {
	Merged    int
	Removed   int
	Permanent int // removed entities that were permanent
}

// World is one isolated simulation: an entity collection, the systems that
// drive it and the bus its lifecycle events travel on. A World is owned by
// a single goroutine.
type World struct {
	name   string
	c      *ecs.EntityCollection
	runner *coresys.Runner
	bus    *event.Bus
	lua    *scripting.Engine
	tpl    *data.TemplateTable
	grid   *world.Grid
	rng    *rand.Rand
	step   time.Duration
	log    *zap.Logger
	tick   int64
	stats  Stats
	snaps  *SnapshotSystem
}

// New builds a world, stages its singletons and initial population and
// merges them so the first tick starts from a settled collection.
func New(opts Options) (*World, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("world", opts.Name))
	step := opts.Step
	if step <= 0 {
		step = DefaultStep
	}

	w := &World{
		name:   opts.Name,
		c:      ecs.NewEntityCollection(ecs.WithLogger(log), ecs.WithSlotLimit(opts.SlotLimit)),
		runner: coresys.NewRunner(),
		bus:    event.NewBus(),
		tpl:    opts.Templates,
		grid:   world.NewGrid(opts.CellSize),
		rng:    rand.New(rand.NewSource(opts.Seed)),
		step:   step,
		log:    log,
	}

	event.Attach(w.bus, w.c)
	event.Subscribe(w.bus, func(event.EntityMerged) { w.stats.Merged++ })
	event.Subscribe(w.bus, func(ev event.EntityRemoved) {
		w.stats.Removed++
		if ev.Permanent {
			w.stats.Permanent++
		}
	})

	if opts.ScriptDir != "" {
		eng, err := scripting.NewEngine(opts.ScriptDir, log)
		if err != nil {
			return nil, eris.Wrapf(err, "world %s", opts.Name)
		}
		eng.Bind(w.c, func(name string) (*ecs.Entity, error) { return w.spawn(w.c, name) })
		eng.BindGrid(w.grid)
		w.lua = eng
	}

	if err := w.populate(opts); err != nil {
		w.Close()
		return nil, err
	}
	w.grid.Rebuild(w.c)

	w.runner.Register(system.NewEventDispatchSystem(w.bus))
	w.runner.Register(system.NewClockSystem())
	if w.lua != nil && opts.OnTick != "" {
		w.runner.Register(system.NewScriptSystem(w.lua, opts.OnTick, log))
	}
	w.runner.Register(coresys.NewMergeSystem())
	w.runner.Register(system.NewMovementSystem())
	w.runner.Register(system.NewSpatialIndexSystem(w.grid))
	w.runner.Register(system.NewLifetimeSystem(log))
	if w.tpl != nil {
		w.runner.Register(system.NewSpawnSystem(w.spawn, opts.SpawnTemplate, opts.SpawnEvery, log))
	}
	if opts.Feed != nil {
		w.runner.Register(NewFeedSystem(opts.Name, opts.Feed, opts.FeedEvery))
	}
	if opts.Store != nil {
		w.snaps = NewSnapshotSystem(opts.Store, opts.SaveEvery, log)
		w.runner.Register(w.snaps)
	}
	w.runner.Register(coresys.NewCleanupSystem(log))

	return w, nil
}

func (w *World) spawn(c *ecs.EntityCollection, name string) (*ecs.Entity, error) {
	if w.tpl == nil {
		return nil, eris.Wrapf(data.ErrUnknownTemplate, "%q: no templates loaded", name)
	}
	return w.tpl.Spawn(c, name, w.rng)
}

func (w *World) populate(opts Options) error {
	if w.tpl == nil {
		return nil
	}
	for _, name := range w.tpl.Names() {
		if w.tpl.Get(name).Singleton == "" {
			continue
		}
		if _, err := w.spawn(w.c, name); err != nil {
			return eris.Wrapf(err, "world %s: singleton %s", w.name, name)
		}
	}
	for range opts.InitialEntities {
		if _, err := w.spawn(w.c, opts.SpawnTemplate); err != nil {
			return eris.Wrapf(err, "world %s: initial population", w.name)
		}
	}
	if err := w.c.TryMerge(); err != nil {
		return eris.Wrapf(err, "world %s", w.name)
	}
	return nil
}

// Step runs one tick with the world's collection bound to ctx.
func (w *World) Step(ctx context.Context) {
	w.runner.Tick(ecs.WithCollection(ctx, w.c), w.step)
	w.tick++
}

// Run steps the world ticks times, or until ctx is done when ticks is 0.
// A positive rate paces ticks on a ticker; otherwise they run back to back.
func (w *World) Run(ctx context.Context, ticks int, rate time.Duration) error {
	var pace <-chan time.Time
	if rate > 0 {
		ticker := time.NewTicker(rate)
		defer ticker.Stop()
		pace = ticker.C
	}

	for n := 0; ticks == 0 || n < ticks; n++ {
		if pace != nil {
			select {
			case <-pace:
			case <-ctx.Done():
				return w.stopped(ctx, ticks)
			}
		} else if ctx.Err() != nil {
			return w.stopped(ctx, ticks)
		}
		w.Step(ctx)
	}
	w.flush()
	w.log.Info("world finished",
		zap.Int64("ticks", w.tick),
		zap.Int("entities", w.c.Len()),
		zap.Int("merged", w.stats.Merged),
		zap.Int("removed", w.stats.Removed))
	return nil
}

// stopped maps cancellation to the run's outcome: an open-ended run ends
// cleanly, a bounded one reports that it was cut short.
func (w *World) stopped(ctx context.Context, ticks int) error {
	w.flush()
	w.log.Info("world stopped", zap.Int64("ticks", w.tick))
	if ticks == 0 {
		return nil
	}
	return eris.Wrapf(ctx.Err(), "world %s stopped at tick %d of %d", w.name, w.tick, ticks)
}

// flush delivers events still queued from the last tick.
func (w *World) flush() {
	w.bus.SwapBuffers()
	w.bus.DispatchAll()
}

// Close releases the scripting engine.
func (w *World) Close() {
	if w.lua != nil {
		w.lua.Close()
		w.lua = nil
	}
}

func (w *World) Name() string                      { return w.name }
func (w *World) UID() uuid.UUID                    { return w.c.UID() }
func (w *World) Tick() int64                       { return w.tick }
func (w *World) Collection() *ecs.EntityCollection { return w.c }
func (w *World) Bus() *event.Bus                   { return w.bus }
func (w *World) Grid() *world.Grid                 { return w.grid }
func (w *World) Stats() Stats                      { return w.stats }
func (w *World) Digest() uint64                    { return Digest(w.c) }

// Register adds a system to the world's runner.
func (w *World) Register(s coresys.System) { w.runner.Register(s) }

// SnapshotsSaved returns the number of persisted snapshots, 0 without a store.
func (w *World) SnapshotsSaved() int {
	if w.snaps == nil {
		return 0
	}
	return w.snaps.Saved()
}
