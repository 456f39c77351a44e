package testutils

import (
	"testing"

	"github.com/aretw0/flock/pkg/stream"
	"github.com/stretchr/testify/require"
)

// Recorder captures every signal of a subscription for assertions.
type Recorder[T any] struct {
	Values      []T
	Err         error
	Errors      int
	Completions int
}

// Observer returns an observer that records into r.
func (r *Recorder[T]) Observer() stream.Observer[T] {
	return stream.Observer[T]{
		Next: func(v T) { r.Values = append(r.Values, v) },
		Error: func(err error) {
			r.Err = err
			r.Errors++
		},
		Complete: func() { r.Completions++ },
	}
}

// Last returns the most recent value. It fails the test if nothing was recorded.
func (r *Recorder[T]) Last(t *testing.T) T {
	t.Helper()
	require.NotEmpty(t, r.Values, "no values recorded")
	return r.Values[len(r.Values)-1]
}

// Terminated reports whether an error or completion was recorded.
func (r *Recorder[T]) Terminated() bool {
	return r.Errors > 0 || r.Completions > 0
}

// Record subscribes to src and returns the recorder and the subscription.
func Record[T any](src stream.Stream[T]) (*Recorder[T], stream.Subscription) {
	r := &Recorder[T]{}
	sub := src.Subscribe(r.Observer())
	return r, sub
}

// TeardownCounter wraps a source so tests can count subscriptions and
// teardowns. The wrapped stream never terminates on its own; values and
// completion are driven through the returned subject.
type TeardownCounter[T any] struct {
	Subject    *stream.Subject[T]
	Subscribed int
	TornDown   int
}

// NewTeardownCounter creates a counter around a fresh subject.
func NewTeardownCounter[T any]() *TeardownCounter[T] {
	return &TeardownCounter[T]{Subject: stream.NewSubject[T]()}
}

// Stream returns a stream backed by the subject whose teardown is counted.
func (c *TeardownCounter[T]) Stream() stream.Stream[T] {
	return stream.Create(func(s stream.Sink[T]) func() {
		c.Subscribed++
		sub := c.Subject.Subscribe(stream.Observer[T]{
			Next:     s.Next,
			Error:    s.Error,
			Complete: s.Complete,
		})
		return func() {
			c.TornDown++
			sub.Dispose()
		}
	})
}
