// Package combine implements the dynamic fan-in combinator: a combine-latest
// over a changing set of inner streams that prunes each inner stream as soon
// as it completes.
package combine

import (
	"slices"

	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/stream"
)

// Option configures Active.
type Option func(*options)

type options struct {
	name          string
	sched         stream.Scheduler
	emitOnRemoval bool
	hooks         domain.LifecycleHooks
}

// WithName labels the combinator in lifecycle events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithScheduler coalesces snapshot emission to one per scheduler turn.
// Every update and removal made during the turn is reflected in that single
// snapshot. Without it each inner value emits immediately.
func WithScheduler(s stream.Scheduler) Option {
	return func(o *options) {
		o.sched = s
	}
}

// WithEmitOnRemoval makes a slot removal produce a snapshot as well, so a
// consumer sees an entity disappear even when no other slot updates.
func WithEmitOnRemoval() Option {
	return func(o *options) {
		o.emitOnRemoval = true
	}
}

// WithLifecycleHooks registers OnSlotOpen, OnSlotClose and OnSnapshot.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// Active subscribes to every inner stream produced by outer and emits, on each
// inner update, the latest value of every still-open inner stream in slot order.
//
// Slots are appended on arrival and spliced out when their inner stream
// completes, so positions are stable while a stream is open and reused after.
// The result completes once outer has completed and no slot is open. Any
// error, from outer or from an inner stream, is forwarded immediately and
// releases every open subscription. Disposing the result releases outer and
// every open inner subscription synchronously.
func Active[T any](outer stream.Stream[stream.Stream[T]], opts ...Option) stream.Stream[[]T] {
	o := options{name: "active", sched: stream.Immediate}
	for _, opt := range opts {
		opt(&o)
	}

	return stream.Create(func(s stream.Sink[[]T]) func() {
		c := &combiner[T]{sink: s, opts: o}
		sub := outer.Subscribe(stream.Observer[stream.Stream[T]]{
			Next:     c.open,
			Error:    c.fail,
			Complete: c.outerComplete,
		})
		if c.done {
			sub.Dispose()
		} else {
			c.outer = sub
		}
		return c.dispose
	})
}

type slot[T any] struct {
	sub      stream.Subscription
	value    T
	hasValue bool
	// ended: the inner stream terminated on its own and already tore down.
	ended bool
	// cancelled: the combinator shut down before Subscribe returned.
	cancelled bool
}

type combiner[T any] struct {
	sink      stream.Sink[[]T]
	opts      options
	outer     stream.Subscription
	slots     []*slot[T]
	outerDone bool
	dirty     bool
	scheduled bool
	done      bool
}

func (c *combiner[T]) open(inner stream.Stream[T]) {
	if c.done {
		return
	}

	sl := &slot[T]{}
	c.slots = append(c.slots, sl)
	c.slotEvent(c.opts.hooks.OnSlotOpen, len(c.slots)-1, len(c.slots))

	sub := inner.Subscribe(stream.Observer[T]{
		Next: func(v T) { c.update(sl, v) },
		Error: func(err error) {
			sl.ended = true
			c.fail(err)
		},
		Complete: func() { c.remove(sl) },
	})

	switch {
	case sl.ended:
		// Completed or failed during Subscribe; its teardown already ran.
	case sl.cancelled:
		sub.Dispose()
	default:
		sl.sub = sub
	}
}

// update records v for sl. The index is looked up now, not at subscribe
// time, because earlier removals shift later slots down.
func (c *combiner[T]) update(sl *slot[T], v T) {
	if c.done {
		return
	}
	idx := c.indexOf(sl)
	if idx < 0 {
		return
	}
	c.slots[idx].value = v
	c.slots[idx].hasValue = true
	c.markDirty()
}

func (c *combiner[T]) remove(sl *slot[T]) {
	sl.ended = true
	if c.done {
		return
	}
	idx := c.indexOf(sl)
	if idx < 0 {
		return
	}
	c.slots = slices.Delete(c.slots, idx, idx+1)
	c.slotEvent(c.opts.hooks.OnSlotClose, idx, len(c.slots))

	if len(c.slots) == 0 && c.outerDone {
		c.shutdown()
		c.sink.Complete()
		return
	}
	if c.opts.emitOnRemoval && sl.hasValue {
		c.markDirty()
	}
}

func (c *combiner[T]) outerComplete() {
	if c.done {
		return
	}
	c.outerDone = true
	if len(c.slots) == 0 {
		c.shutdown()
		c.sink.Complete()
	}
}

func (c *combiner[T]) fail(err error) {
	if c.done {
		return
	}
	c.shutdown()
	c.sink.Error(err)
}

// dispose is the teardown installed on the result subscription.
func (c *combiner[T]) dispose() {
	if c.done {
		return
	}
	c.shutdown()
}

// shutdown releases outer and every open inner subscription exactly once and
// discards any pending snapshot.
func (c *combiner[T]) shutdown() {
	c.done = true
	c.dirty = false

	slots := c.slots
	c.slots = nil
	for i := len(slots) - 1; i >= 0; i-- {
		sl := slots[i]
		if !sl.ended {
			if sl.sub != nil {
				sl.sub.Dispose()
			} else {
				sl.cancelled = true
			}
		}
		c.slotEvent(c.opts.hooks.OnSlotClose, i, i)
	}

	if c.outer != nil {
		c.outer.Dispose()
	}
}

func (c *combiner[T]) markDirty() {
	c.dirty = true
	if c.scheduled {
		return
	}
	c.scheduled = true
	c.opts.sched.Defer(c.flush)
}

func (c *combiner[T]) flush() {
	c.scheduled = false
	if c.done || !c.dirty {
		return
	}
	c.dirty = false

	snapshot := make([]T, 0, len(c.slots))
	for _, sl := range c.slots {
		if sl.hasValue {
			snapshot = append(snapshot, sl.value)
		}
	}
	if c.opts.hooks.OnSnapshot != nil {
		c.opts.hooks.OnSnapshot(&domain.SnapshotEvent{Combinator: c.opts.name, Size: len(snapshot)})
	}
	c.sink.Next(snapshot)
}

func (c *combiner[T]) indexOf(sl *slot[T]) int {
	return slices.Index(c.slots, sl)
}

func (c *combiner[T]) slotEvent(hook func(*domain.SlotEvent), idx, open int) {
	if hook != nil {
		hook(&domain.SlotEvent{Combinator: c.opts.name, Index: idx, Open: open})
	}
}
