package stream

// Scheduler defers work until the current unit of driver work has finished.
// The driver loop implements it so that several signals raised by one clock
// tick can be observed as a single logical instant.
type Scheduler interface {
	Defer(fn func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func())

// Defer calls f(fn).
func (f SchedulerFunc) Defer(fn func()) {
	f(fn)
}

// Settler is implemented by schedulers that can also run work at the end of
// the current unit, after every deferred function has drained.
type Settler interface {
	Settle(fn func())
}

// Immediate runs deferred work inline.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Coalesce forwards only the latest value of src per scheduler turn. If sched
// is also a Settler the value is emitted after all deferred work of the turn,
// so upstream operators that coalesce through Defer are already flushed. On
// completion a pending value is flushed first.
func Coalesce[T any](src Stream[T], sched Scheduler) Stream[T] {
	schedule := sched.Defer
	if st, ok := sched.(Settler); ok {
		schedule = st.Settle
	}
	return Create(func(s Sink[T]) func() {
		var latest T
		pending, scheduled := false, false
		flush := func() {
			scheduled = false
			if !pending || s.Closed() {
				return
			}
			pending = false
			s.Next(latest)
		}
		return src.Subscribe(Observer[T]{
			Next: func(v T) {
				latest, pending = v, true
				if !scheduled {
					scheduled = true
					schedule(flush)
				}
			},
			Error: s.Error,
			Complete: func() {
				flush()
				s.Complete()
			},
		}).Dispose
	})
}
