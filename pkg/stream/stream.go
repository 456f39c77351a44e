package stream

// Observer receives the signals of a subscription.
// Nil callbacks are ignored.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// Subscription is the handle returned by Subscribe.
// Dispose must be idempotent.
type Subscription interface {
	Dispose()
}

// Stream is a push-based source of values.
type Stream[T any] interface {
	Subscribe(Observer[T]) Subscription
}

// Func adapts a plain function to the Stream interface.
type Func[T any] func(Observer[T]) Subscription

// Subscribe calls f(o).
func (f Func[T]) Subscribe(o Observer[T]) Subscription {
	return f(o)
}

// Disposer adapts a function to the Subscription interface.
// It is not idempotent on its own; wrap it with Once when that matters.
type Disposer func()

// Dispose calls d.
func (d Disposer) Dispose() {
	if d != nil {
		d()
	}
}

// Once returns a Subscription that runs fn at most once.
func Once(fn func()) Subscription {
	done := false
	return Disposer(func() {
		if done {
			return
		}
		done = true
		if fn != nil {
			fn()
		}
	})
}

// Sink is the producer side of a subscription created with Create.
type Sink[T any] interface {
	Next(T)
	Error(error)
	Complete()
	// Closed reports whether a terminal signal was sent or the
	// subscription was disposed.
	Closed() bool
}

// Create builds a Stream from a producer. The producer runs once per
// subscription and returns a teardown function (which may be nil).
//
// The teardown runs exactly once, on the first of Error, Complete or Dispose,
// even when the terminal signal is sent before the producer has returned.
// No signal is delivered after that point.
func Create[T any](producer func(Sink[T]) func()) Stream[T] {
	return Func[T](func(o Observer[T]) Subscription {
		s := &subscriber[T]{obs: o}
		s.setTeardown(producer(s))
		return s
	})
}

type subscriber[T any] struct {
	obs      Observer[T]
	closed   bool
	released bool
	teardown func()
}

func (s *subscriber[T]) Next(v T) {
	if s.closed {
		return
	}
	if s.obs.Next != nil {
		s.obs.Next(v)
	}
}

func (s *subscriber[T]) Error(err error) {
	if s.closed {
		return
	}
	s.closed = true
	if s.obs.Error != nil {
		s.obs.Error(err)
	}
	s.release()
}

func (s *subscriber[T]) Complete() {
	if s.closed {
		return
	}
	s.closed = true
	if s.obs.Complete != nil {
		s.obs.Complete()
	}
	s.release()
}

func (s *subscriber[T]) Closed() bool {
	return s.closed
}

func (s *subscriber[T]) Dispose() {
	s.closed = true
	s.release()
}

func (s *subscriber[T]) release() {
	if s.released {
		return
	}
	s.released = true
	if s.teardown != nil {
		fn := s.teardown
		s.teardown = nil
		fn()
	}
}

// setTeardown installs the producer's teardown. If the subscription already
// ended while the producer was running, the teardown runs immediately.
func (s *subscriber[T]) setTeardown(fn func()) {
	if s.released {
		if fn != nil {
			fn()
		}
		return
	}
	s.teardown = fn
}

// Composite disposes a group of subscriptions together. Subscriptions added
// after Dispose are disposed immediately.
type Composite struct {
	subs     []Subscription
	disposed bool
}

// Add registers sub with the group.
func (c *Composite) Add(sub Subscription) {
	if sub == nil {
		return
	}
	if c.disposed {
		sub.Dispose()
		return
	}
	c.subs = append(c.subs, sub)
}

// Dispose releases every registered subscription in reverse order.
func (c *Composite) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	subs := c.subs
	c.subs = nil
	for i := len(subs) - 1; i >= 0; i-- {
		subs[i].Dispose()
	}
}
