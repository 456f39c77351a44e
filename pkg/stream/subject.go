package stream

// Subject is a hot, multicast Stream. Every value passed to Next is delivered
// to all current subscribers in subscription order. Subscribers that arrive
// after a terminal signal receive that signal immediately.
type Subject[T any] struct {
	entries []*subjectEntry[T]
	done    bool
	err     error
}

type subjectEntry[T any] struct {
	obs    Observer[T]
	active bool
}

// NewSubject creates an empty Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe registers o. Disposing the returned subscription removes it.
func (s *Subject[T]) Subscribe(o Observer[T]) Subscription {
	if s.done {
		if s.err != nil {
			if o.Error != nil {
				o.Error(s.err)
			}
		} else if o.Complete != nil {
			o.Complete()
		}
		return Disposer(nil)
	}

	e := &subjectEntry[T]{obs: o, active: true}
	s.entries = append(s.entries, e)
	return Disposer(func() {
		if !e.active {
			return
		}
		e.active = false
		s.remove(e)
	})
}

// Next delivers v to every active subscriber.
func (s *Subject[T]) Next(v T) {
	if s.done {
		return
	}
	// Copy so subscribers may dispose or subscribe while we iterate.
	for _, e := range s.snapshot() {
		if e.active && e.obs.Next != nil {
			e.obs.Next(v)
		}
	}
}

// Error terminates the subject with err.
func (s *Subject[T]) Error(err error) {
	if s.done {
		return
	}
	s.done = true
	s.err = err
	for _, e := range s.drain() {
		if e.obs.Error != nil {
			e.obs.Error(err)
		}
	}
}

// Complete terminates the subject.
func (s *Subject[T]) Complete() {
	if s.done {
		return
	}
	s.done = true
	for _, e := range s.drain() {
		if e.obs.Complete != nil {
			e.obs.Complete()
		}
	}
}

// Closed reports whether a terminal signal was sent.
func (s *Subject[T]) Closed() bool {
	return s.done
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	return len(s.entries)
}

func (s *Subject[T]) snapshot() []*subjectEntry[T] {
	out := make([]*subjectEntry[T], len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Subject[T]) drain() []*subjectEntry[T] {
	out := s.entries
	s.entries = nil
	for _, e := range out {
		e.active = false
	}
	return out
}

func (s *Subject[T]) remove(target *subjectEntry[T]) {
	for i, e := range s.entries {
		if e == target {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return
		}
	}
}
