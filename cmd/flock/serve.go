package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/flock"
	httpAdapter "github.com/aretw0/flock/pkg/adapters/http"
	"github.com/aretw0/flock/pkg/adapters/memory"
	"github.com/aretw0/flock/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation behind an HTTP server",
	Long: `Runs the simulation and serves the latest scene (GET /scene), a live scene
stream (GET /events, or GET /ws with input messages), player input
(POST /input/move, POST /input/fire) and Prometheus metrics (GET /metrics).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.HTTP.Port, _ = cmd.Flags().GetString("port")
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}
		autopilot, _ := cmd.Flags().GetBool("autopilot")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		store := memory.NewStore()
		streams := httpAdapter.NewStreamManager(logger)
		opts := []flock.Option{
			flock.WithLogger(logger),
			flock.WithMetrics(metrics),
			flock.WithAutopilot(autopilot),
			flock.WithSink("memory", store),
			flock.WithSink("sse", streams),
		}
		opts, release, err := withRedis(ctx, cfg, "serve", opts, logger)
		if err != nil {
			return err
		}
		defer release()

		eng, err := flock.New(cfg, opts...)
		if err != nil {
			return err
		}

		// Streaming requests end with the process context.
		srv := &http.Server{
			Addr:        ":" + cfg.HTTP.Port,
			BaseContext: func(net.Listener) context.Context { return ctx },
			Handler: httpAdapter.NewHandler(store,
				httpAdapter.WithStreams(streams),
				httpAdapter.WithController(eng),
				httpAdapter.WithGatherer(reg),
				httpAdapter.WithLogger(logger),
			),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting flock server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		runCtx, cancelRun := context.WithCancel(ctx)
		defer cancelRun()
		simErrors := make(chan error, 1)
		go func() {
			_, err := eng.Run(runCtx)
			simErrors <- err
		}()

		var runErr error
		select {
		case err := <-serverErrors:
			runErr = fmt.Errorf("server error: %w", err)
			cancelRun()
			<-simErrors
		case err := <-simErrors:
			// The simulation ended (failure or max_ticks); keep serving the
			// final scene until interrupted.
			if err != nil {
				runErr = err
			} else {
				logger.Info("simulation finished; serving the final scene")
				<-ctx.Done()
			}
		}

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("graceful shutdown did not complete", "err", err)
			_ = srv.Close()
		}
		logger.Info("flock server stopped")
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides config)")
	serveCmd.Flags().Bool("autopilot", false, "Drive the hero automatically instead of via POST /input")
}
