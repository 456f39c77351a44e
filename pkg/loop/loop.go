// Package loop provides the single driver goroutine that runs every stream
// callback in flock.
//
// Producers on other goroutines (timers, input devices, HTTP handlers) never
// touch streams directly. They Post a task; the loop runs tasks one at a time,
// in FIFO order, and after each task drains the deferred work registered with
// Defer. One task plus its deferred work is one logical instant. Work
// registered with Settle runs at the very end of the instant, once every
// deferred function has drained.
package loop

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Post once the loop has been stopped.
var ErrStopped = errors.New("loop stopped")

// Loop is a FIFO task queue with a single consumer.
type Loop struct {
	mu      sync.Mutex
	tasks   []func()
	wake    chan struct{}
	stopped bool

	// Touched only by the driver goroutine.
	deferred []func()
	settled  []func()

	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger for loop lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates an idle loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post enqueues fn. Safe for concurrent use.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Defer registers fn to run after the current task, before the next one.
// It must be called from the driver goroutine.
func (l *Loop) Defer(fn func()) {
	l.deferred = append(l.deferred, fn)
}

// Settle registers fn to run once the deferred work of the current task has
// drained. Deferred work raised by fn drains before the next settled function.
// It must be called from the driver goroutine.
func (l *Loop) Settle(fn func()) {
	l.settled = append(l.settled, fn)
}

// Do runs fn as a task on the calling goroutine, followed by its deferred
// work. It is meant for tests and for callers that drive the loop manually;
// it must not be used while Run is active on another goroutine.
func (l *Loop) Do(fn func()) {
	fn()
	l.flush()
}

// RunPending runs every queued task, including tasks posted while draining,
// and returns how many ran.
func (l *Loop) RunPending() int {
	n := 0
	for {
		fn, ok := l.next()
		if !ok {
			return n
		}
		l.Do(fn)
		n++
	}
}

// Run processes tasks until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("loop started")
	defer l.logger.Debug("loop stopped")

	for {
		l.RunPending()

		l.mu.Lock()
		stopped := l.stopped
		l.mu.Unlock()
		if stopped {
			return nil
		}

		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Stop rejects further posts. Tasks already queued still run if Run is active.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	fn := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return fn, true
}

// flush drains deferred work, then settled work one function at a time;
// either may register more of both.
func (l *Loop) flush() {
	for {
		for len(l.deferred) > 0 {
			fn := l.deferred[0]
			l.deferred[0] = nil
			l.deferred = l.deferred[1:]
			fn()
		}
		if len(l.settled) == 0 {
			return
		}
		fn := l.settled[0]
		l.settled[0] = nil
		l.settled = l.settled[1:]
		fn()
	}
}
