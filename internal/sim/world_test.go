package sim

import (
	"context"
	"testing"

	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	"github.com/l1jgo/entitycore/internal/data"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTemplates(t *testing.T) *data.TemplateTable {
	t.Helper()
	table, err := data.LoadTemplateTable("../../data/yaml/templates.yaml")
	require.NoError(t, err)
	return table
}

func newTestWorld(t *testing.T, opts Options) *World {
	t.Helper()
	if opts.Templates == nil {
		opts.Templates = loadTemplates(t)
	}
	if opts.SpawnTemplate == "" {
		opts.SpawnTemplate = "particle"
	}
	w, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func TestNew_PopulatesSingletons(t *testing.T) {
	w := newTestWorld(t, Options{Name: "w", InitialEntities: 10})
	c := w.Collection()

	assert.Equal(t, 12, c.Len(), "arena, clock and the initial population")
	assert.Zero(t, c.StagedLen())
	assert.True(t, ecs.HasSingleton[component.Bounds](c))
	assert.True(t, ecs.HasSingleton[component.Clock](c))
	assert.Equal(t, 2, ecs.NewQuery(c, ecs.QueryOptions{}).WherePermanent(true).Count())
	assert.Equal(t, 10, w.Grid().Len(), "particles are indexed before the first tick")
}

func TestWorld_LifetimeAndSpawn(t *testing.T) {
	w := newTestWorld(t, Options{Name: "w", InitialEntities: 10, SpawnEvery: 5})
	require.NoError(t, w.Run(context.Background(), 30, 0))
	c := w.Collection()

	// The initial particles expire on tick 30. Spawns on ticks 5..25 are
	// live, the tick 30 spawn is still staged.
	assert.Equal(t, int64(30), w.Tick())
	assert.Equal(t, 7, c.Len())
	assert.Equal(t, 1, c.StagedLen())
	assert.Equal(t, Stats{Merged: 17, Removed: 10}, w.Stats())

	clk, ok := ecs.SingletonComponent[component.Clock](c)
	require.True(t, ok)
	assert.Equal(t, int64(30), clk.Tick)

	bounds, ok := ecs.SingletonComponent[component.Bounds](c)
	require.True(t, ok)
	for _, r := range Rows(c) {
		assert.True(t, bounds.Contains(component.Position{X: r.X, Y: r.Y}), "entity %d escaped", r.EntityID)
	}
}

func TestWorld_DeterministicDigest(t *testing.T) {
	run := func(seed int64) uint64 {
		w := newTestWorld(t, Options{Name: "w", Seed: seed, InitialEntities: 20, SpawnEvery: 3})
		for range 40 {
			w.Step(context.Background())
		}
		return w.Digest()
	}
	assert.Equal(t, run(42), run(42))
	assert.NotEqual(t, run(42), run(43))
}

func TestWorld_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := newTestWorld(t, Options{Name: "open"})
	assert.NoError(t, w.Run(ctx, 0, 0), "open-ended runs stop cleanly")
	assert.Zero(t, w.Tick())

	w = newTestWorld(t, Options{Name: "bounded"})
	err := w.Run(ctx, 10, 0)
	require.Error(t, err)
	assert.True(t, eris.Is(err, context.Canceled))
}

func TestWorld_Scripting(t *testing.T) {
	w := newTestWorld(t, Options{
		Name:            "scripted",
		InitialEntities: 5,
		ScriptDir:       "../../scripts",
		OnTick:          "on_tick",
	})
	require.NoError(t, w.Run(context.Background(), 20, 0))
	c := w.Collection()

	// Tick 20 stages a beacon and retires the oldest particle.
	assert.Equal(t, 1, c.StagedLen())
	beacon, ok := c.StagedByID(c.NextID() - 1)
	require.True(t, ok)
	tag, _ := ecs.Get[component.Tag](beacon)
	assert.Equal(t, "beacon", tag.Name)
	assert.Equal(t, 6, c.Len())
	assert.Equal(t, 1, w.Stats().Removed)
	_, ok = c.EntityByID(2)
	assert.False(t, ok, "the first particle was retired")
}

func TestWorld_NoTemplates(t *testing.T) {
	w, err := New(Options{Name: "bare"})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.spawn(w.Collection(), "particle")
	assert.True(t, eris.Is(err, data.ErrUnknownTemplate))

	w.Collection().CreateEntity()
	w.Step(context.Background())
	assert.Equal(t, 1, w.Collection().Len())
	assert.Equal(t, DigestRows(nil), w.Digest(), "no positioned entities")
}

func TestNew_UnknownSpawnTemplate(t *testing.T) {
	_, err := New(Options{Name: "w", Templates: loadTemplates(t), SpawnTemplate: "ghost", InitialEntities: 1})
	require.Error(t, err)
	assert.True(t, eris.Is(err, data.ErrUnknownTemplate))
}
