package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/flock"
	"github.com/aretw0/flock/internal/presentation/tui"
	"github.com/aretw0/flock/pkg/adapters/memory"
	"github.com/aretw0/flock/pkg/domain"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the headless simulation",
	Long: `Runs the spaceships simulation without a display. An autopilot moves the hero
and fires; scenes go to the configured sinks and a summary is printed at the end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("ticks") {
			cfg.MaxTicks, _ = cmd.Flags().GetUint64("ticks")
		}
		if fit, _ := cmd.Flags().GetBool("fit-terminal"); fit && !fitTerminal(&cfg) {
			return fmt.Errorf("--fit-terminal: stdout is not a terminal")
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}
		autopilot, _ := cmd.Flags().GetBool("autopilot")
		quiet, _ := cmd.Flags().GetBool("quiet")
		every, _ := cmd.Flags().GetUint64("status-every")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		opts := []flock.Option{
			flock.WithLogger(logger),
			flock.WithAutopilot(autopilot),
			flock.WithSink("memory", memory.NewStore()),
		}
		if !quiet && every > 0 {
			lineEnd := "\n"
			if isTerminal() {
				lineEnd = "\r"
			}
			opts = append(opts, flock.WithSceneHook(func(s domain.Scene) {
				if s.Frame%every == 0 {
					fmt.Fprint(out, tui.StatusLine(s.Frame, len(s.Enemies), len(s.Shots), s.Score), lineEnd)
				}
			}))
		}
		opts, release, err := withRedis(ctx, cfg, "run", opts, logger)
		if err != nil {
			return err
		}
		defer release()

		eng, err := flock.New(cfg, opts...)
		if err != nil {
			return err
		}

		if !quiet {
			tui.PrintBanner(out)
		}
		stats, runErr := eng.Run(ctx)
		if quiet {
			return runErr
		}

		sinks := []string{"memory"}
		if cfg.Redis.Addr != "" {
			sinks = append(sinks, "redis")
		}
		summary := tui.Summary{
			Frames:     stats.Frames,
			Ticks:      stats.Ticks,
			Score:      stats.Score,
			Collisions: stats.Collisions,
			Dropped:    stats.Dropped,
			Elapsed:    stats.Elapsed,
			Sinks:      sinks,
			Err:        runErr,
		}
		rendered, err := tui.NewRenderer()(summary.Markdown())
		if err != nil {
			rendered = summary.Markdown()
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, rendered)
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Uint64("ticks", 0, "Stop after this many animation ticks (0 runs until interrupted)")
	runCmd.Flags().Bool("autopilot", true, "Sweep the hero across the field and fire automatically")
	runCmd.Flags().Bool("fit-terminal", false, "Size the field to the terminal")
	runCmd.Flags().Uint64("status-every", 25, "Print a status line every N frames (0 disables)")
	runCmd.Flags().BoolP("quiet", "q", false, "Print nothing but errors")
}
