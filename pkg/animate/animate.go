// Package animate turns one entity plus a shared clock into a self-terminating
// stream of position snapshots.
//
// The animator owns the entity's working copy. Every other component receives
// value snapshots and asks for termination through Animator.Terminate rather
// than by touching the entity.
package animate

import (
	"fmt"

	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/stream"
)

// StepFunc maps the previous position to the next one.
type StepFunc func(y float64) (float64, error)

// ContinueFunc decides whether the animation keeps going with the new position.
type ContinueFunc func(y float64) bool

// Animate returns the animation of e driven by clock.
//
// On subscribe the starting entity is emitted before any tick. On each tick
// the next position is computed; if cont rejects it, or the entity was marked
// terminated, the stream completes and the rejected position is never
// emitted. An entity that starts with Terminated set ends on its first tick.
// A step error ends this stream only, wrapped in domain.ErrStepFailed.
// Completion releases the clock subscription but never affects the clock.
func Animate(e domain.Entity, clock stream.Stream[domain.Tick], step StepFunc, cont ContinueFunc) stream.Stream[domain.Entity] {
	return animate(e, clock, step, cont, nil, nil)
}

func animate(
	e domain.Entity,
	clock stream.Stream[domain.Tick],
	step StepFunc,
	cont ContinueFunc,
	terminated func() bool,
	onEnd func(domain.Entity, string, error),
) stream.Stream[domain.Entity] {
	return stream.Create(func(s stream.Sink[domain.Entity]) func() {
		cur := e
		reason := domain.ReasonDisposed
		var cause error

		s.Next(cur)
		if s.Closed() {
			notify(onEnd, cur, reason, nil)
			return nil
		}

		sub := clock.Subscribe(stream.Observer[domain.Tick]{
			Next: func(domain.Tick) {
				// A synchronous clock keeps ticking until Subscribe returns.
				if s.Closed() {
					return
				}
				next, err := step(cur.Y)
				if err != nil {
					reason, cause = domain.ReasonStepFailed, err
					s.Error(fmt.Errorf("%w: entity %d: %w", domain.ErrStepFailed, cur.ID, err))
					return
				}
				if cur.Terminated || (terminated != nil && terminated()) {
					reason = domain.ReasonTerminated
					cur.Terminated = true
					s.Complete()
					return
				}
				if !cont(next) {
					reason = domain.ReasonOutOfBounds
					s.Complete()
					return
				}
				cur.Y = next
				s.Next(cur)
			},
			Error:    s.Error,
			Complete: s.Complete,
		})

		return func() {
			sub.Dispose()
			notify(onEnd, cur, reason, cause)
		}
	})
}

func notify(onEnd func(domain.Entity, string, error), e domain.Entity, reason string, err error) {
	if onEnd != nil {
		onEnd(e, reason, err)
	}
}
