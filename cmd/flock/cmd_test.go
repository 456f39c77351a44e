package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/flock/pkg/adapters/redis"
	"github.com/aretw0/flock/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

// resetFlags restores defaults, since the command tree is package-level and
// flag values persist across Execute calls. Subcommands also keep the first
// context they were given, so it is cleared too.
func resetFlags(cmd *cobra.Command) {
	var unset context.Context
	cmd.SetContext(unset)
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const fastYAML = `
timing:
  tick: 1ms
  enemy_spawn: 2ms
  fire_sample: 1ms
star_count: 5
seed: 3
log_level: error
`

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "flock version")
}

func TestRunCommand(t *testing.T) {
	path := writeConfig(t, fastYAML)
	out, err := execute(t, "run", "--config", path, "--ticks", "15", "--status-every", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Run summary")
	assert.Contains(t, out, "ticks")
}

func TestRunCommand_PublishesToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	path := writeConfig(t, fastYAML)

	_, err := execute(t, "run", "--config", path, "--ticks", "10", "--quiet", "--redis", mr.Addr())
	require.NoError(t, err)
	assert.True(t, mr.Exists("flock:scene"))
	assert.False(t, mr.Exists("flock:lease"), "lease released on exit")
}

func TestRunCommand_BadConfig(t *testing.T) {
	path := writeConfig(t, "hit_box: -1\n")
	_, err := execute(t, "run", "--config", path, "--quiet")
	assert.ErrorContains(t, err, "hit_box")
}

func TestWatchCommand_PrintsLatest(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.New(mr.Addr())
	defer store.Client().Close()
	require.NoError(t, store.Publish(context.Background(), domain.Scene{Frame: 321, Score: 4}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	out, err := executeContext(t, ctx, "watch", "--redis", mr.Addr())
	require.NoError(t, err)
	assert.Contains(t, out, "321")
}

func TestWatchCommand_NeedsRedis(t *testing.T) {
	_, err := execute(t, "watch", "--config", writeConfig(t, "seed: 1\n"))
	assert.ErrorContains(t, err, "redis address")
}
