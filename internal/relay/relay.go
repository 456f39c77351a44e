// Package relay moves scenes from the driver goroutine to slow sinks.
//
// Offer never blocks: it replaces any scene not yet delivered, so a slow sink
// sees fewer frames but always the newest one, and the simulation never waits
// on I/O.
package relay

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/ports"
)

type target struct {
	name string
	sink ports.SceneSink
}

// Relay delivers the latest offered scene to every registered sink.
type Relay struct {
	targets []target
	timeout time.Duration
	logger  *slog.Logger
	onSent  func(sink string, err error)

	mu      sync.Mutex
	latest  domain.Scene
	pending bool
	dropped uint64
	wake    chan struct{}
}

// Option configures a Relay.
type Option func(*Relay)

// WithSink adds a named sink. Sinks are published to in registration order.
func WithSink(name string, sink ports.SceneSink) Option {
	return func(r *Relay) {
		r.targets = append(r.targets, target{name: name, sink: sink})
	}
}

// WithTimeout bounds each Publish call (default 1s).
func WithTimeout(d time.Duration) Option {
	return func(r *Relay) {
		r.timeout = d
	}
}

// WithLogger sets the relay logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithPublishHook is called after every Publish with the sink name and result.
func WithPublishHook(fn func(sink string, err error)) Option {
	return func(r *Relay) {
		r.onSent = fn
	}
}

// New creates a relay. Call Run to start delivering.
func New(opts ...Option) *Relay {
	r := &Relay{
		timeout: time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sinks returns the number of registered sinks.
func (r *Relay) Sinks() int {
	return len(r.targets)
}

// Offer queues scene for delivery, replacing an undelivered one.
func (r *Relay) Offer(scene domain.Scene) {
	r.mu.Lock()
	if r.pending {
		r.dropped++
	}
	r.latest = scene
	r.pending = true
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Dropped returns how many scenes were replaced before delivery.
func (r *Relay) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Run delivers scenes until ctx is done, then delivers the last pending
// scene once more so sinks end on the final frame.
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.deliver(context.WithoutCancel(ctx))
			return nil
		case <-r.wake:
			r.deliver(ctx)
		}
	}
}

func (r *Relay) deliver(ctx context.Context) {
	r.mu.Lock()
	if !r.pending {
		r.mu.Unlock()
		return
	}
	scene := r.latest
	r.pending = false
	r.mu.Unlock()

	for _, t := range r.targets {
		pctx, cancel := context.WithTimeout(ctx, r.timeout)
		err := t.sink.Publish(pctx, scene)
		cancel()
		if err != nil {
			r.logger.Warn("scene delivery failed", "sink", t.name, "frame", scene.Frame, "err", err)
		}
		if r.onSent != nil {
			r.onSent(t.name, err)
		}
	}
}
