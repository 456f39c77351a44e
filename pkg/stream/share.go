package stream

// Share multicasts src through a Subject. The first subscriber connects to
// src; when the last one disposes, the upstream subscription is released.
// After src terminates, the next subscriber starts a fresh connection.
func Share[T any](src Stream[T]) Stream[T] {
	return &shared[T]{src: src}
}

type shared[T any] struct {
	src Stream[T]
	cur *connection[T]
}

type connection[T any] struct {
	subject *Subject[T]
	sub     Subscription
	refs    int
	ended   bool
}

func (sh *shared[T]) Subscribe(o Observer[T]) Subscription {
	c := sh.cur
	if c == nil {
		c = &connection[T]{subject: NewSubject[T]()}
		sh.cur = c
	}

	inner := c.subject.Subscribe(o)
	c.refs++
	if c.refs == 1 {
		sub := sh.src.Subscribe(Observer[T]{
			Next: c.subject.Next,
			Error: func(err error) {
				sh.end(c)
				c.subject.Error(err)
			},
			Complete: func() {
				sh.end(c)
				c.subject.Complete()
			},
		})
		if c.ended {
			sub.Dispose()
		} else {
			c.sub = sub
		}
	}

	return Once(func() {
		inner.Dispose()
		if c.ended {
			return
		}
		c.refs--
		if c.refs == 0 {
			sh.end(c)
			if c.sub != nil {
				c.sub.Dispose()
			}
		}
	})
}

func (sh *shared[T]) end(c *connection[T]) {
	c.ended = true
	if sh.cur == c {
		sh.cur = nil
	}
}
