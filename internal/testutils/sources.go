package testutils

import "github.com/aretw0/flock/pkg/stream"

// Of emits values in order and completes.
func Of[T any](values ...T) stream.Stream[T] {
	return stream.Create(func(s stream.Sink[T]) func() {
		for _, v := range values {
			if s.Closed() {
				return nil
			}
			s.Next(v)
		}
		s.Complete()
		return nil
	})
}

// Empty completes immediately without emitting.
func Empty[T any]() stream.Stream[T] {
	return Of[T]()
}

// Never neither emits nor terminates.
func Never[T any]() stream.Stream[T] {
	return stream.Func[T](func(stream.Observer[T]) stream.Subscription {
		return stream.Disposer(nil)
	})
}

// Throw fails immediately with err.
func Throw[T any](err error) stream.Stream[T] {
	return stream.Create(func(s stream.Sink[T]) func() {
		s.Error(err)
		return nil
	})
}

// Collect subscribes to a synchronous src and returns everything it emitted
// before terminating. A source still open when Subscribe returns is disposed.
func Collect[T any](src stream.Stream[T]) ([]T, error) {
	var (
		values []T
		failed error
	)
	sub := src.Subscribe(stream.Observer[T]{
		Next:  func(v T) { values = append(values, v) },
		Error: func(err error) { failed = err },
	})
	sub.Dispose()
	return values, failed
}
