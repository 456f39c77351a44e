package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/flock"
	"github.com/aretw0/flock/internal/logging"
	"github.com/aretw0/flock/pkg/adapters/redis"
	"github.com/aretw0/flock/pkg/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// cellSize is the field size of one terminal cell.
const cellSize = 10

// leaseTTL bounds how long a crashed publisher blocks its redis prefix.
const leaseTTL = 5 * time.Minute

// loadConfig reads --config and applies the persistent overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		cfg.Redis.Addr = addr
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		return logging.NewJSON(level), nil
	}
	return logging.New(level), nil
}

// fitTerminal sizes the field to the terminal attached to stdout.
// It reports false when stdout is not a terminal.
func fitTerminal(cfg *config.Config) bool {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return false
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols == 0 || rows == 0 {
		return false
	}
	cfg.Field = config.Field{Width: float64(cols * cellSize), Height: float64(rows * cellSize)}
	return true
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// redisSink connects to cfg.Redis and claims the publisher lease. The
// returned release func must be called on exit.
func redisSink(ctx context.Context, cfg config.Config, owner string) (*redis.Store, func(), error) {
	store := redis.New(cfg.Redis.Addr, redis.WithPrefix(cfg.Redis.Prefix), redis.WithTTL(cfg.Redis.TTL))
	if err := store.Ping(ctx); err != nil {
		return nil, nil, err
	}
	release, err := store.AcquireLease(ctx, owner, leaseTTL)
	if err != nil {
		_ = store.Client().Close()
		return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
	}
	return store, func() {
		_ = release(context.Background())
		_ = store.Client().Close()
	}, nil
}

func leaseOwner(command string) string {
	host, _ := os.Hostname()
	return fmt.Sprintf("flock-%s@%s:%d", command, host, os.Getpid())
}

// withRedis appends the redis sink option when configured.
func withRedis(ctx context.Context, cfg config.Config, command string, opts []flock.Option, logger *slog.Logger) ([]flock.Option, func(), error) {
	if cfg.Redis.Addr == "" {
		return opts, func() {}, nil
	}
	store, release, err := redisSink(ctx, cfg, leaseOwner(command))
	if err != nil {
		return nil, nil, err
	}
	logger.Info("publishing scenes to redis", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
	return append(opts, flock.WithSink("redis", store)), release, nil
}
