// Package clock provides the shared, multicast tick source that drives every
// animation in lockstep.
//
// A Clock is hot and connectable: subscribers may attach at any time, but
// ticks only start flowing after Connect, which is allowed once. The owner
// wires every initial subscription first and connects last, so no subscriber
// misses the first tick.
package clock

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/stream"
)

// Poster hands work to the driver loop.
type Poster interface {
	Post(fn func()) error
}

// Clock multicasts periodic ticks through the driver loop.
type Clock struct {
	name      string
	interval  time.Duration
	poster    Poster
	subject   *stream.Subject[domain.Tick]
	seq       uint64
	connected atomic.Bool
	logger    *slog.Logger
}

// Option configures a Clock.
type Option func(*Clock)

// WithLogger sets the clock logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Clock) {
		c.logger = logger
	}
}

// WithName labels the clock in logs.
func WithName(name string) Option {
	return func(c *Clock) {
		c.name = name
	}
}

// New creates an unconnected clock that ticks every interval.
func New(poster Poster, interval time.Duration, opts ...Option) *Clock {
	c := &Clock{
		name:     "clock",
		interval: interval,
		poster:   poster,
		subject:  stream.NewSubject[domain.Tick](),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream returns the multicast tick stream.
func (c *Clock) Stream() stream.Stream[domain.Tick] {
	return c.subject
}

// Interval returns the tick period.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Connect starts the timer goroutine. Ticks are posted to the loop, so every
// subscriber sees each tick within the same driver turn. The returned
// subscription stops the timer; it does not complete the tick stream.
// A second call returns domain.ErrAlreadyConnected.
func (c *Clock) Connect(ctx context.Context) (stream.Subscription, error) {
	if !c.connected.CompareAndSwap(false, true) {
		return nil, domain.ErrAlreadyConnected
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(c.interval)
	c.logger.Debug("clock connected", "clock", c.name, "interval", c.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.logger.Debug("clock disconnected", "clock", c.name)
				return
			case now := <-ticker.C:
				if err := c.poster.Post(func() { c.emit(now) }); err != nil {
					c.logger.Debug("clock stopped posting", "clock", c.name, "err", err)
					return
				}
			}
		}
	}()

	return stream.Once(cancel), nil
}

// emit runs on the driver goroutine.
func (c *Clock) emit(now time.Time) {
	c.seq++
	c.subject.Next(domain.Tick{Seq: c.seq, At: now})
}

// Manual is a clock driven explicitly by Tick, for deterministic runs and
// tests. It enforces the same connect-once rule as Clock.
type Manual struct {
	subject   *stream.Subject[domain.Tick]
	seq       uint64
	start     time.Time
	step      time.Duration
	connected bool
}

// NewManual creates a manual clock whose virtual time advances by step per tick.
func NewManual(step time.Duration) *Manual {
	return &Manual{
		subject: stream.NewSubject[domain.Tick](),
		start:   time.Unix(0, 0).UTC(),
		step:    step,
	}
}

// Stream returns the multicast tick stream.
func (m *Manual) Stream() stream.Stream[domain.Tick] {
	return m.subject
}

// Connect arms the clock; ticks before Connect are dropped.
func (m *Manual) Connect() error {
	if m.connected {
		return domain.ErrAlreadyConnected
	}
	m.connected = true
	return nil
}

// Tick emits one tick synchronously. It returns false if the clock is not connected.
func (m *Manual) Tick() bool {
	if !m.connected {
		return false
	}
	m.seq++
	m.subject.Next(domain.Tick{Seq: m.seq, At: m.start.Add(time.Duration(m.seq) * m.step)})
	return true
}

// Subscribers returns the number of live subscriptions.
func (m *Manual) Subscribers() int {
	return m.subject.Len()
}
