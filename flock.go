package flock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/flock/internal/logging"
	"github.com/aretw0/flock/internal/relay"
	"github.com/aretw0/flock/pkg/adapters/memory"
	"github.com/aretw0/flock/pkg/clock"
	"github.com/aretw0/flock/pkg/config"
	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/loop"
	"github.com/aretw0/flock/pkg/observability"
	"github.com/aretw0/flock/pkg/ports"
	"github.com/aretw0/flock/pkg/scene"
	"github.com/aretw0/flock/pkg/stream"
)

// Version is the flock release.
const Version = "0.1.0"

var (
	// ErrAlreadyRan is returned when Run is called a second time.
	ErrAlreadyRan = errors.New("engine already ran")
	// ErrExternalInput is returned by Move and Fire when the engine reads
	// input from a caller-provided source.
	ErrExternalInput = errors.New("input is provided externally")
)

// Engine is the high-level entry point for the flock library.
// It owns the driver loop, the clocks and the simulation, and relays every
// composed scene to the configured sinks.
type Engine struct {
	cfg       config.Config
	loop      *loop.Loop
	tick      *clock.Clock
	spawn     *clock.Clock
	fire      *clock.Clock
	pilot     *memory.Input
	input     ports.InputSource
	autopilot bool
	sim       *scene.Simulation
	relay     *relay.Relay
	relayOpts []relay.Option
	sinks     []string
	metrics   *observability.Metrics
	hooks     domain.LifecycleHooks
	onScene   func(domain.Scene)
	logger    *slog.Logger
	ran       atomic.Bool

	// Touched only on the driver goroutine until Run returns.
	stats  Stats
	halted bool
	err    error
}

// Stats summarises a finished run.
type Stats struct {
	Frames     uint64
	Ticks      uint64
	Score      int
	Collisions int
	Dropped    uint64
	Elapsed    time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithMetrics records into m and reports sink deliveries to it.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithSink adds a named scene sink. Sinks run off the driver goroutine and
// receive the latest scene; a slow sink skips frames.
func WithSink(name string, sink ports.SceneSink) Option {
	return func(e *Engine) {
		e.sinks = append(e.sinks, name)
		e.relayOpts = append(e.relayOpts, relay.WithSink(name, sink))
	}
}

// WithInput reads input from src instead of the built-in controllable source.
// src must emit on the driver goroutine.
func WithInput(src ports.InputSource) Option {
	return func(e *Engine) {
		e.input = src
	}
}

// WithAutopilot drives the built-in input source from the animation clock.
func WithAutopilot(enabled bool) Option {
	return func(e *Engine) {
		e.autopilot = enabled
	}
}

// WithSceneHook calls fn with every scene on the driver goroutine.
// fn must not block.
func WithSceneHook(fn func(domain.Scene)) Option {
	return func(e *Engine) {
		e.onScene = fn
	}
}

// New initializes a new Engine for cfg.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	e.loop = loop.New(loop.WithLogger(e.logger))
	e.tick = clock.New(e.loop, cfg.Timing.Tick, clock.WithName("tick"), clock.WithLogger(e.logger))
	e.spawn = clock.New(e.loop, cfg.Timing.EnemySpawn, clock.WithName("spawn"), clock.WithLogger(e.logger))
	e.fire = clock.New(e.loop, cfg.Timing.FireSample, clock.WithName("fire"), clock.WithLogger(e.logger))

	e.pilot = memory.NewInput()
	if e.input == nil {
		e.input = e.pilot
	}

	hooks := observability.LoggingHooks(e.logger).Merge(e.hooks)
	if e.metrics != nil {
		hooks = hooks.Merge(e.metrics.Hooks())
		e.relayOpts = append(e.relayOpts, relay.WithPublishHook(e.metrics.Published))
	}
	hooks = hooks.Merge(domain.LifecycleHooks{
		OnCollision: func(*domain.Collision) { e.stats.Collisions++ },
	})

	e.sim = scene.New(cfg, scene.Clocks{
		Tick:  e.gate(e.tick.Stream()),
		Spawn: e.gate(e.spawn.Stream()),
		Fire:  e.gate(e.fire.Stream()),
	}, e.input,
		scene.WithScheduler(e.loop),
		scene.WithLifecycleHooks(hooks),
		scene.WithLogger(e.logger),
	)
	e.relay = relay.New(append(e.relayOpts, relay.WithLogger(e.logger))...)
	return e, nil
}

// Simulation returns the composed streams, for callers that subscribe to
// constituents directly. Subscriptions must be made on the driver goroutine.
func (e *Engine) Simulation() *scene.Simulation {
	return e.sim
}

// Move reports a pointer position. Safe for concurrent use.
func (e *Engine) Move(x float64) error {
	if e.input != ports.InputSource(e.pilot) {
		return ErrExternalInput
	}
	return e.loop.Post(func() { e.pilot.Move(x) })
}

// Fire requests a shot. Safe for concurrent use.
func (e *Engine) Fire() error {
	if e.input != ports.InputSource(e.pilot) {
		return ErrExternalInput
	}
	return e.loop.Post(e.pilot.Fire)
}

// Run drives the simulation until ctx is done, cfg.MaxTicks ticks have been
// processed, or a stream fails. Cancellation is a clean stop. A failure is
// returned wrapped; the stats are valid either way.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	if !e.ran.CompareAndSwap(false, true) {
		return Stats{}, ErrAlreadyRan
	}
	start := time.Now()

	relayCtx, stopRelay := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.relay.Run(relayCtx)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var subs stream.Composite
	e.loop.Do(func() {
		subs.Add(e.tick.Stream().Subscribe(stream.Observer[domain.Tick]{Next: e.countTick}))
		subs.Add(e.sim.Scenes().Subscribe(stream.Observer[domain.Scene]{
			Next:     e.publish,
			Error:    e.fail,
			Complete: e.halt,
		}))
		if e.autopilot && e.input == ports.InputSource(e.pilot) {
			subs.Add(memory.Autopilot(e.pilot, e.gate(e.tick.Stream()), e.cfg.Field.Width))
		}
	})

	// Every subscription is in place; connect the clocks last.
	for _, c := range []*clock.Clock{e.tick, e.spawn, e.fire} {
		conn, err := c.Connect(runCtx)
		if err != nil {
			return e.finish(&subs, stopRelay, &wg, start, fmt.Errorf("failed to connect clock: %w", err))
		}
		subs.Add(conn)
	}
	e.logger.Info("simulation started",
		"tick", e.cfg.Timing.Tick,
		"max_ticks", e.cfg.MaxTicks,
		"sinks", len(e.sinks),
	)

	err := e.loop.Run(runCtx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		e.logger.Info("simulation canceled")
		err = nil
	}
	if e.err != nil {
		err = fmt.Errorf("simulation failed: %w", e.err)
	}
	return e.finish(&subs, stopRelay, &wg, start, err)
}

func (e *Engine) finish(subs *stream.Composite, stopRelay context.CancelFunc, wg *sync.WaitGroup, start time.Time, err error) (Stats, error) {
	e.loop.Stop()
	e.loop.Do(subs.Dispose)
	stopRelay()
	wg.Wait()

	e.stats.Dropped = e.relay.Dropped()
	e.stats.Elapsed = time.Since(start)
	e.logger.Info("simulation stopped",
		"frames", e.stats.Frames,
		"ticks", e.stats.Ticks,
		"score", e.stats.Score,
	)
	return e.stats, err
}

// gate hides ticks once the run has halted, so ticks already queued on the
// loop do not produce frames after the limit.
func (e *Engine) gate(ticks stream.Stream[domain.Tick]) stream.Stream[domain.Tick] {
	return stream.Filter(ticks, func(domain.Tick) bool { return !e.halted })
}

func (e *Engine) countTick(domain.Tick) {
	if e.halted {
		return
	}
	e.stats.Ticks++
	if e.cfg.MaxTicks > 0 && e.stats.Ticks == e.cfg.MaxTicks {
		// Re-settle so the halt runs after the frame of this tick is flushed.
		e.loop.Settle(func() { e.loop.Settle(e.halt) })
	}
}

func (e *Engine) publish(s domain.Scene) {
	if e.halted {
		return
	}
	e.stats.Frames++
	e.stats.Score = s.Score
	e.relay.Offer(s)
	if e.onScene != nil {
		e.onScene(s)
	}
}

func (e *Engine) fail(err error) {
	e.logger.Error("simulation failed", "err", err)
	e.err = err
	e.halt()
}

// halt stops the run. Tasks already queued still run but produce no frames.
func (e *Engine) halt() {
	if e.halted {
		return
	}
	e.halted = true
	e.loop.Stop()
}
