package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/flock/internal/presentation/tui"
	"github.com/aretw0/flock/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the scenes another flock process publishes to Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("watch needs a redis address (--redis or redis.addr)")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := redis.New(cfg.Redis.Addr, redis.WithPrefix(cfg.Redis.Prefix))
		defer store.Client().Close()

		out := cmd.OutOrStdout()
		if latest, err := store.Latest(ctx); err == nil {
			fmt.Fprintln(out, tui.StatusLine(latest.Frame, len(latest.Enemies), len(latest.Shots), latest.Score))
		}

		scenes, err := store.Watch(ctx)
		if err != nil {
			return err
		}
		for s := range scenes {
			fmt.Fprintln(out, tui.StatusLine(s.Frame, len(s.Enemies), len(s.Shots), s.Score))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
