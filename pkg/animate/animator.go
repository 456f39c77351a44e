package animate

import (
	"sync/atomic"

	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/stream"
)

var lastID atomic.Uint64

// NextID returns a process-wide unique entity id.
func NextID() uint64 {
	return lastID.Add(1)
}

// Animator binds a clock, a step function and a continuation predicate, and
// keeps a registry of live animations so that other components can request
// termination by id.
type Animator struct {
	kind  domain.Kind
	clock stream.Stream[domain.Tick]
	step  StepFunc
	cont  ContinueFunc
	live  map[uint64]*handle
	hooks domain.LifecycleHooks
}

type handle struct {
	terminated bool
	subs       int
}

// Option configures an Animator.
type Option func(*Animator)

// WithLifecycleHooks registers observability hooks (OnEntityEnd).
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Animator) {
		a.hooks = hooks
	}
}

// NewAnimator creates an animator for entities of the given kind.
func NewAnimator(kind domain.Kind, clock stream.Stream[domain.Tick], step StepFunc, cont ContinueFunc, opts ...Option) *Animator {
	a := &Animator{
		kind:  kind,
		clock: clock,
		step:  step,
		cont:  cont,
		live:  make(map[uint64]*handle),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Spawn returns the animation of e. A zero id is replaced with a fresh one and
// an empty kind with the animator's kind. The entity is registered while at
// least one subscription to its animation is open.
func (a *Animator) Spawn(e domain.Entity) stream.Stream[domain.Entity] {
	if e.ID == 0 {
		e.ID = NextID()
	}
	if e.Kind == "" {
		e.Kind = a.kind
	}

	h := &handle{}
	inner := animate(e, a.clock, a.step, a.cont,
		func() bool { return h.terminated },
		func(last domain.Entity, reason string, err error) {
			a.release(last.ID, h)
			if a.hooks.OnEntityEnd != nil {
				a.hooks.OnEntityEnd(&domain.EntityEvent{Entity: last, Reason: reason, Err: err})
			}
		},
	)

	return stream.Func[domain.Entity](func(o stream.Observer[domain.Entity]) stream.Subscription {
		h.subs++
		a.live[e.ID] = h
		return inner.Subscribe(o)
	})
}

// Each maps a stream of arrivals to a stream of animations, one per arrival.
func (a *Animator) Each(arrivals stream.Stream[domain.Entity]) stream.Stream[stream.Stream[domain.Entity]] {
	return stream.Map(arrivals, a.Spawn)
}

// Terminate asks the animation of id to end on its next tick. It returns true
// only for the first request against a live entity.
func (a *Animator) Terminate(id uint64) bool {
	h, ok := a.live[id]
	if !ok || h.terminated {
		return false
	}
	h.terminated = true
	return true
}

// IsTerminated reports whether termination was already requested for id.
func (a *Animator) IsTerminated(id uint64) bool {
	h, ok := a.live[id]
	return ok && h.terminated
}

// Alive reports whether id is registered and no termination was requested.
func (a *Animator) Alive(id uint64) bool {
	h, ok := a.live[id]
	return ok && !h.terminated
}

// Live returns the number of registered entities.
func (a *Animator) Live() int {
	return len(a.live)
}

func (a *Animator) release(id uint64, h *handle) {
	h.subs--
	if h.subs <= 0 && a.live[id] == h {
		delete(a.live, id)
	}
}
