package stream

// forward relays the terminal signals of an upstream subscription to s.
func forward[T, R any](s Sink[R], next func(T)) Observer[T] {
	return Observer[T]{
		Next:     next,
		Error:    s.Error,
		Complete: s.Complete,
	}
}

// Map transforms every value with fn.
func Map[T, R any](src Stream[T], fn func(T) R) Stream[R] {
	return Create(func(s Sink[R]) func() {
		return src.Subscribe(forward(s, func(v T) {
			s.Next(fn(v))
		})).Dispose
	})
}

// Filter drops values for which keep returns false.
func Filter[T any](src Stream[T], keep func(T) bool) Stream[T] {
	return Create(func(s Sink[T]) func() {
		return src.Subscribe(forward(s, func(v T) {
			if keep(v) {
				s.Next(v)
			}
		})).Dispose
	})
}

// Scan folds every value into an accumulator and emits each intermediate
// accumulator. The seed itself is not emitted.
func Scan[T, A any](src Stream[T], seed A, fold func(A, T) A) Stream[A] {
	return Create(func(s Sink[A]) func() {
		acc := seed
		return src.Subscribe(forward(s, func(v T) {
			acc = fold(acc, v)
			s.Next(acc)
		})).Dispose
	})
}

// StartWith emits values synchronously on subscribe, then mirrors src.
func StartWith[T any](src Stream[T], values ...T) Stream[T] {
	return Create(func(s Sink[T]) func() {
		for _, v := range values {
			if s.Closed() {
				return nil
			}
			s.Next(v)
		}
		if s.Closed() {
			return nil
		}
		return src.Subscribe(forward(s, s.Next)).Dispose
	})
}

// Sample emits the most recent value of src each time sampler emits,
// provided src produced something new since the previous sample.
func Sample[T, S any](src Stream[T], sampler Stream[S]) Stream[T] {
	return Create(func(s Sink[T]) func() {
		var latest T
		fresh := false
		srcSub := src.Subscribe(forward(s, func(v T) {
			latest = v
			fresh = true
		}))
		if s.Closed() {
			return srcSub.Dispose
		}
		samplerSub := sampler.Subscribe(Observer[S]{
			Next: func(S) {
				if fresh {
					fresh = false
					s.Next(latest)
				}
			},
			Error: s.Error,
		})
		return func() {
			srcSub.Dispose()
			samplerSub.Dispose()
		}
	})
}

// WithLatestFrom combines each value of src with the latest value of other.
// Values of src that arrive before other has emitted are dropped.
func WithLatestFrom[T, U, R any](src Stream[T], other Stream[U], fn func(T, U) R) Stream[R] {
	return Create(func(s Sink[R]) func() {
		var latest U
		has := false
		otherSub := other.Subscribe(Observer[U]{
			Next: func(v U) {
				latest = v
				has = true
			},
			Error: s.Error,
		})
		if s.Closed() {
			return otherSub.Dispose
		}
		srcSub := src.Subscribe(forward(s, func(v T) {
			if has {
				s.Next(fn(v, latest))
			}
		}))
		return func() {
			srcSub.Dispose()
			otherSub.Dispose()
		}
	})
}

func disposeAll(subs []Subscription) {
	for _, sub := range subs {
		if sub != nil {
			sub.Dispose()
		}
	}
}
