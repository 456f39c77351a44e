package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/flock/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
field:
  width: 320
timing:
  tick: 10ms
  enemy_spawn: "2s"
motion:
  enemy_speed: "7"
seed: 42
redis:
  addr: localhost:6379
`))
	require.NoError(t, err)

	assert.Equal(t, 320.0, cfg.Field.Width)
	assert.Equal(t, 600.0, cfg.Field.Height, "untouched nested keys keep defaults")
	assert.Equal(t, 10*time.Millisecond, cfg.Timing.Tick)
	assert.Equal(t, 2*time.Second, cfg.Timing.EnemySpawn)
	assert.Equal(t, 200*time.Millisecond, cfg.Timing.FireSample)
	assert.Equal(t, 7.0, cfg.Motion.EnemySpeed, "weakly typed input")
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "flock:", cfg.Redis.Prefix)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := config.Parse([]byte("tick_rate: 5\n"))
	assert.Error(t, err)
}

func TestParse_Validates(t *testing.T) {
	_, err := config.Parse([]byte("field:\n  width: 0\n"))
	assert.ErrorContains(t, err, "field must have positive size")

	_, err = config.Parse([]byte("timing:\n  tick: 0s\n"))
	assert.ErrorContains(t, err, "timing.tick")
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("star_count: 10\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.StarCount)
}

func TestField_Visible(t *testing.T) {
	f := config.Field{Width: 100, Height: 50}
	assert.True(t, f.Visible(0))
	assert.True(t, f.Visible(50))
	assert.False(t, f.Visible(-1))
	assert.False(t, f.Visible(51))
}
