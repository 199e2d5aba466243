package sim

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/l1jgo/entitycore/internal/config"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	"github.com/l1jgo/entitycore/internal/data"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Simulation.Worlds = 4
	cfg.Simulation.Ticks = 25
	cfg.Simulation.InitialEntities = 32
	cfg.Simulation.SpawnEvery = 2
	cfg.Simulation.Seed = 7
	return cfg
}

func TestRunWorlds_IsolatedAndReproducible(t *testing.T) {
	cfg := testConfig()
	templates := loadTemplates(t)
	defLive, defStaged := ecs.Default().Len(), ecs.Default().StagedLen()

	results, err := RunWorlds(context.Background(), cfg, templates, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	uids := map[uuid.UUID]bool{}
	for i, r := range results {
		assert.Equal(t, int64(25), r.Ticks)
		assert.NotZero(t, r.Entities)
		uids[r.UID] = true

		// Running the same world alone gives the same result.
		w, err := New(OptionsFor(cfg, i, templates, nil, nil, nil))
		require.NoError(t, err)
		require.NoError(t, w.Run(context.Background(), cfg.Simulation.Ticks, 0))
		assert.Equal(t, r.Digest, w.Digest(), "world %d", i)
		assert.Equal(t, r.Entities, w.Collection().Len())
		assert.Equal(t, r.Stats, w.Stats())
		w.Close()
	}
	assert.Len(t, uids, 4)

	assert.Equal(t, defLive, ecs.Default().Len(), "worlds never touch the default collection")
	assert.Equal(t, defStaged, ecs.Default().StagedLen())
}

func TestRunWorlds_FailureCancelsAll(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.SpawnTemplate = "ghost"

	_, err := RunWorlds(context.Background(), cfg, loadTemplates(t), nil, nil, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, data.ErrUnknownTemplate))
}

func TestOptionsFor(t *testing.T) {
	cfg := testConfig()
	cfg.Scripting.Dir = "scripts"
	cfg.Scripting.OnTick = "on_tick"

	opts := OptionsFor(cfg, 2, nil, nil, nil, nil)
	assert.Equal(t, "world-2", opts.Name)
	assert.Equal(t, int64(9), opts.Seed)
	assert.Empty(t, opts.ScriptDir, "scripting disabled")

	cfg.Scripting.Enabled = true
	opts = OptionsFor(cfg, 0, nil, nil, nil, nil)
	assert.Equal(t, "scripts", opts.ScriptDir)
	assert.Equal(t, "on_tick", opts.OnTick)
}
