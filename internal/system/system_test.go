package system

import (
	"context"
	"testing"
	"time"

	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	"github.com/l1jgo/entitycore/internal/core/event"
	"github.com/l1jgo/entitycore/internal/scripting"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func bind(c *ecs.EntityCollection) context.Context {
	return ecs.WithCollection(context.Background(), c)
}

func mover(c *ecs.EntityCollection, p component.Position, v component.Velocity) *ecs.Entity {
	e := c.CreateEntity()
	ecs.AddComponent(e, p)
	ecs.AddComponent(e, v)
	return e
}

func TestMovementSystem_Integrates(t *testing.T) {
	c := ecs.NewEntityCollection()
	e := mover(c, component.Position{}, component.Velocity{DX: 2, DY: -4})
	second := mover(c, component.Position{}, component.Velocity{DX: 1})
	c.Merge()
	late := mover(c, component.Position{}, component.Velocity{DX: 1})

	NewMovementSystem().Update(bind(c), 500*time.Millisecond)

	p, _ := ecs.Get[component.Position](e)
	assert.Equal(t, component.Position{X: 1, Y: -2}, *p)
	p, _ = ecs.Get[component.Position](second)
	assert.Equal(t, 0.5, p.X)
	p, _ = ecs.Get[component.Position](late)
	assert.Zero(t, p.X, "entities staged this tick do not move")
}

func TestMovementSystem_BouncesOffBounds(t *testing.T) {
	c := ecs.NewEntityCollection()
	arena := c.CreatePermanentEntity()
	ecs.AddComponent(arena, component.Bounds{MaxX: 10, MaxY: 10})
	ecs.RegisterSingleton[component.Bounds](c, arena)
	e := mover(c, component.Position{X: 9, Y: 5}, component.Velocity{DX: 4, DY: -6})
	c.Merge()

	NewMovementSystem().Update(bind(c), time.Second)

	p, _ := ecs.Get[component.Position](e)
	v, _ := ecs.Get[component.Velocity](e)
	assert.InDelta(t, 7, p.X, 1e-9)
	assert.InDelta(t, 1, p.Y, 1e-9)
	assert.Equal(t, component.Velocity{DX: -4, DY: 6}, *v)

	b, _ := ecs.SingletonComponent[component.Bounds](c)
	assert.True(t, b.Contains(*p))
}

func TestReflectAxis(t *testing.T) {
	x, v := reflectAxis(-3, -1, 0, 10)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 1.0, v)

	x, v = reflectAxis(25, 1, 0, 10)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 1.0, v, "two reflections restore the direction")

	x, v = reflectAxis(5, 1, 2, 2)
	assert.Equal(t, 2.0, x)
	assert.Zero(t, v)
}

func TestLifetimeSystem_MarksExpired(t *testing.T) {
	c := ecs.NewEntityCollection()
	short := c.CreateEntity()
	ecs.AddComponent(short, component.Lifetime{Ticks: 2})
	immortal := c.CreateEntity()
	c.Merge()

	ctx := bind(c)
	s := NewLifetimeSystem(nil)

	s.Update(ctx, 0)
	assert.False(t, short.IsMarkedForCleanup())
	s.Update(ctx, 0)
	assert.True(t, short.IsMarkedForCleanup())
	assert.False(t, immortal.IsMarkedForCleanup())

	lt, _ := ecs.Get[component.Lifetime](short)
	s.Update(ctx, 0)
	assert.Equal(t, 0, lt.Ticks, "marked entities are not counted down again")

	assert.Equal(t, 1, c.Cleanup())
	assert.False(t, short.IsAlive())
}

func TestSpawnSystem_Interval(t *testing.T) {
	c := ecs.NewEntityCollection()
	var names []string
	spawn := func(c *ecs.EntityCollection, name string) (*ecs.Entity, error) {
		names = append(names, name)
		return c.CreateEntity(), nil
	}

	s := NewSpawnSystem(spawn, "particle", 3, nil)
	ctx := bind(c)
	for range 7 {
		s.Update(ctx, 0)
	}
	assert.Equal(t, []string{"particle", "particle"}, names)
	assert.Equal(t, 2, c.StagedLen())
	assert.Zero(t, c.Len())

	disabled := NewSpawnSystem(spawn, "particle", 0, nil)
	disabled.Update(ctx, 0)
	assert.Len(t, names, 2)
}

func TestSpawnSystem_LogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	spawn := func(*ecs.EntityCollection, string) (*ecs.Entity, error) {
		return nil, eris.New("no such template")
	}
	NewSpawnSystem(spawn, "ghost", 1, zap.New(core)).Update(bind(ecs.NewEntityCollection()), 0)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ghost", logs.All()[0].ContextMap()["template"])
}

func TestClockSystem(t *testing.T) {
	c := ecs.NewEntityCollection()
	ctx := bind(c)
	s := NewClockSystem()
	s.Update(ctx, 0) // no clock registered

	clk := c.CreatePermanentEntity()
	ecs.AddComponent(clk, component.Clock{})
	ecs.RegisterSingleton[component.Clock](c, clk)
	c.Merge()

	for range 3 {
		s.Update(ctx, 0)
	}
	got, ok := ecs.SingletonComponent[component.Clock](c)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Tick)
}

func TestEventDispatchSystem_DeliversNextTick(t *testing.T) {
	c := ecs.NewEntityCollection()
	bus := event.NewBus()
	event.Attach(bus, c)

	var merged []ecs.EntityID
	event.Subscribe(bus, func(ev event.EntityMerged) { merged = append(merged, ev.ID) })

	e := c.CreateEntity()
	c.Merge()
	assert.Empty(t, merged)
	assert.Equal(t, 1, bus.Pending())

	NewEventDispatchSystem(bus).Update(bind(c), 0)
	assert.Equal(t, []ecs.EntityID{e.ID()}, merged)
	assert.Zero(t, bus.Pending())
}

func TestScriptSystem(t *testing.T) {
	eng, err := scripting.NewEngine("", nil)
	require.NoError(t, err)
	defer eng.Close()

	c := ecs.NewEntityCollection()
	eng.Bind(c, nil)
	require.NoError(t, eng.DoString(`
		function on_tick(tick)
			last_tick = tick
			entities.create()
		end
		function get_last() return last_tick end
		function broken(tick) error("boom") end
	`))

	s := NewScriptSystem(eng, "on_tick", nil)
	s.Update(bind(c), 0)
	s.Update(bind(c), 0)
	assert.Equal(t, 2, c.StagedLen())

	last, err := eng.CallNumber("get_last")
	require.NoError(t, err)
	assert.Equal(t, 2.0, last)

	core, logs := observer.New(zapcore.ErrorLevel)
	NewScriptSystem(eng, "broken", zap.New(core)).Update(bind(c), 0)
	assert.Equal(t, 1, logs.FilterMessage("lua tick failed").Len())
}
