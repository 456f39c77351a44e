package stream

// CombineLatestAll emits the latest value of every source whenever any of
// them emits, once all of them have emitted at least once. It completes when
// all sources have completed, or as soon as a source completes without ever
// emitting (nothing could be combined after that).
func CombineLatestAll[T any](sources ...Stream[T]) Stream[[]T] {
	return Create(func(s Sink[[]T]) func() {
		n := len(sources)
		if n == 0 {
			s.Complete()
			return nil
		}

		values := make([]T, n)
		has := make([]bool, n)
		ready, active := 0, n
		subs := make([]Subscription, 0, n)

		for i, src := range sources {
			if s.Closed() {
				break
			}
			subs = append(subs, src.Subscribe(Observer[T]{
				Next: func(v T) {
					values[i] = v
					if !has[i] {
						has[i] = true
						ready++
					}
					if ready == n {
						out := make([]T, n)
						copy(out, values)
						s.Next(out)
					}
				},
				Error: s.Error,
				Complete: func() {
					active--
					if active == 0 || !has[i] {
						s.Complete()
					}
				},
			}))
		}
		return func() { disposeAll(subs) }
	})
}

// CombineLatest2 joins two streams with latest-value semantics.
func CombineLatest2[A, B, R any](a Stream[A], b Stream[B], fn func(A, B) R) Stream[R] {
	return Map(CombineLatestAll(boxed(a), boxed(b)), func(vs []any) R {
		return fn(unbox[A](vs[0]), unbox[B](vs[1]))
	})
}

// CombineLatest3 joins three streams with latest-value semantics.
func CombineLatest3[A, B, C, R any](a Stream[A], b Stream[B], c Stream[C], fn func(A, B, C) R) Stream[R] {
	return Map(CombineLatestAll(boxed(a), boxed(b), boxed(c)), func(vs []any) R {
		return fn(unbox[A](vs[0]), unbox[B](vs[1]), unbox[C](vs[2]))
	})
}

func boxed[T any](src Stream[T]) Stream[any] {
	return Map(src, func(v T) any { return v })
}

func unbox[T any](v any) T {
	t, _ := v.(T)
	return t
}
