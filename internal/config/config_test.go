package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[simulation]
worlds = 4
tick_rate = "50ms"
spawn_template = "drone"

[collection]
slot_limit = 4096

[logging]
level = "debug"
format = "json"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Simulation.Worlds)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, "drone", cfg.Simulation.SpawnTemplate)
	assert.Equal(t, 100, cfg.Simulation.Ticks, "unset keys keep their defaults")
	assert.Equal(t, uint32(4096), cfg.Collection.SlotLimit)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Database.Enabled)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("[simulation]\nworlds = 0\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("[database]\nenabled = true\ndsn = \"\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("[feed]\nenabled = true\nbind = \"\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("not toml ==="))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_RepoConfig(t *testing.T) {
	cfg, err := Load("../../config/entitysim.toml")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Simulation.Worlds)
	assert.Zero(t, cfg.Simulation.TickRate)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.Scripting.Enabled)
	assert.Equal(t, "on_tick", cfg.Scripting.OnTick)
	assert.False(t, cfg.Feed.Enabled)
	assert.Equal(t, 10, cfg.Feed.Every)
}
