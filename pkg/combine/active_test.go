package combine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/flock/internal/testutils"
	"github.com/aretw0/flock/pkg/animate"
	"github.com/aretw0/flock/pkg/clock"
	"github.com/aretw0/flock/pkg/combine"
	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/loop"
	"github.com/aretw0/flock/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOuter[T any]() *stream.Subject[stream.Stream[T]] {
	return stream.NewSubject[stream.Stream[T]]()
}

func counters(n int) []*testutils.TeardownCounter[int] {
	out := make([]*testutils.TeardownCounter[int], n)
	for i := range out {
		out[i] = testutils.NewTeardownCounter[int]()
	}
	return out
}

func TestActive_WorkedExample(t *testing.T) {
	// A arrives at t=0 (10, +5, while <30); B arrives at t=1 (0, +5, while <10).
	l := loop.New()
	m := clock.NewManual(40 * time.Millisecond)
	require.NoError(t, m.Connect())

	step := func(y float64) (float64, error) { return y + 5, nil }
	below := func(limit float64) animate.ContinueFunc {
		return func(y float64) bool { return y < limit }
	}

	outer := newOuter[domain.Entity]()
	rec, _ := testutils.Record(combine.Active[domain.Entity](outer, combine.WithScheduler(l)))

	l.Do(func() {
		outer.Next(animate.Animate(domain.Entity{ID: 1, Y: 10}, m.Stream(), step, below(30)))
	})
	l.Do(func() {
		m.Tick()
		outer.Next(animate.Animate(domain.Entity{ID: 2, Y: 0}, m.Stream(), step, below(10)))
		outer.Complete()
	})
	l.Do(func() { m.Tick() }) // t=2
	l.Do(func() { m.Tick() }) // t=3: B's next value 10 fails
	assert.Equal(t, 0, rec.Completions)
	l.Do(func() { m.Tick() }) // t=4: A's next value 30 fails

	var got [][]float64
	for _, snap := range rec.Values {
		row := []float64{}
		for _, e := range snap {
			row = append(row, e.Y)
		}
		got = append(got, row)
	}
	assert.Equal(t, [][]float64{{10}, {15, 0}, {20, 5}, {25}}, got)
	assert.Equal(t, 1, rec.Completions)
	assert.Equal(t, 0, m.Subscribers())
}

func TestActive_SlotStability(t *testing.T) {
	inners := counters(4)
	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer))

	for _, c := range inners[:3] {
		outer.Next(c.Stream())
	}
	// No snapshot references a slot that has not emitted.
	inners[1].Subject.Next(11)
	assert.Equal(t, []int{11}, rec.Last(t))

	inners[0].Subject.Next(1)
	inners[2].Subject.Next(21)
	assert.Equal(t, []int{1, 11, 21}, rec.Last(t))

	// Removing slot 0 shifts the others down; updates must land on the
	// right slot through the dynamic lookup.
	inners[0].Subject.Complete()
	inners[2].Subject.Next(22)
	assert.Equal(t, []int{11, 22}, rec.Last(t))

	// A new arrival takes the end of the list.
	outer.Next(inners[3].Stream())
	inners[3].Subject.Next(31)
	inners[1].Subject.Next(12)
	assert.Equal(t, []int{12, 22, 31}, rec.Last(t))
}

func TestActive_CompletionFanIn(t *testing.T) {
	inners := counters(2)
	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer))

	outer.Next(inners[0].Stream())
	outer.Next(inners[1].Stream())
	inners[0].Subject.Next(1)
	inners[1].Subject.Next(2)

	outer.Complete()
	assert.Equal(t, 0, rec.Completions, "inner streams still open")

	inners[0].Subject.Complete()
	assert.Equal(t, 0, rec.Completions)
	inners[1].Subject.Complete()
	assert.Equal(t, 1, rec.Completions, "completes exactly once, not per inner")
}

func TestActive_EmptyInnersDoNotCompleteWhileOuterOpen(t *testing.T) {
	inner := testutils.NewTeardownCounter[int]()
	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer))

	outer.Next(inner.Stream())
	inner.Subject.Next(1)
	inner.Subject.Complete()

	assert.Equal(t, 0, rec.Completions, "outer may still produce more")
	outer.Complete()
	assert.Equal(t, 1, rec.Completions)
}

func TestActive_OuterWithoutInners(t *testing.T) {
	never, _ := testutils.Record(combine.Active(testutils.Never[stream.Stream[int]]()))
	assert.Empty(t, never.Values)
	assert.False(t, never.Terminated())

	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer))
	assert.Equal(t, 0, rec.Completions)
	outer.Complete()
	assert.Empty(t, rec.Values)
	assert.Equal(t, 1, rec.Completions)
}

func TestActive_DisposalReleasesAll(t *testing.T) {
	inners := counters(3)
	outer := newOuter[int]()
	rec, sub := testutils.Record(combine.Active[int](outer))

	for i, c := range inners {
		outer.Next(c.Stream())
		c.Subject.Next(i)
	}
	emitted := len(rec.Values)

	sub.Dispose()
	sub.Dispose()

	for i, c := range inners {
		assert.Equal(t, 1, c.Subscribed)
		assert.Equal(t, 1, c.TornDown, "inner %d", i)
		c.Subject.Next(100)
		c.Subject.Complete()
	}
	outer.Next(testutils.Of(1))
	outer.Complete()

	assert.Equal(t, 0, outer.Len(), "outer subscription released")
	assert.Len(t, rec.Values, emitted, "no emissions after disposal")
	assert.False(t, rec.Terminated())
}

func TestActive_NoStaleSlotsWithinOneTurn(t *testing.T) {
	l := loop.New()
	inners := counters(3)
	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer, combine.WithScheduler(l)))

	l.Do(func() {
		for i, c := range inners {
			outer.Next(c.Stream())
			c.Subject.Next(i)
		}
	})
	require.Len(t, rec.Values, 1, "one snapshot per turn")
	assert.Equal(t, []int{0, 1, 2}, rec.Values[0])

	l.Do(func() {
		inners[2].Subject.Next(20)
		inners[0].Subject.Complete()
		inners[1].Subject.Complete()
	})
	require.Len(t, rec.Values, 2)
	assert.Equal(t, []int{20}, rec.Values[1], "both completed slots excluded together")
}

func TestActive_ImmediateSchedulerEmitsPerValue(t *testing.T) {
	inners := counters(2)
	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer))

	outer.Next(inners[0].Stream())
	outer.Next(inners[1].Stream())
	inners[0].Subject.Next(1)
	inners[1].Subject.Next(2)
	inners[0].Subject.Next(3)

	assert.Equal(t, [][]int{{1}, {1, 2}, {3, 2}}, rec.Values)
}

func TestActive_InnerErrorFailsFast(t *testing.T) {
	inners := counters(3)
	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer))

	for _, c := range inners {
		outer.Next(c.Stream())
	}
	boom := errors.New("boom")
	inners[1].Subject.Error(boom)

	assert.ErrorIs(t, rec.Err, boom)
	assert.Equal(t, 1, rec.Errors)
	for i, c := range inners {
		assert.Equal(t, 1, c.TornDown, "inner %d", i)
	}
	assert.Equal(t, 0, outer.Len())
}

func TestActive_OuterErrorFailsFast(t *testing.T) {
	inners := counters(2)
	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer))

	for _, c := range inners {
		outer.Next(c.Stream())
	}
	boom := errors.New("outer")
	outer.Error(boom)

	assert.ErrorIs(t, rec.Err, boom)
	for _, c := range inners {
		assert.Equal(t, 1, c.TornDown)
	}
}

func TestActive_InnerCompletingDuringSubscribe(t *testing.T) {
	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer))

	outer.Next(testutils.Of(1, 2))
	assert.Equal(t, [][]int{{1}, {2}}, rec.Values)

	live := testutils.NewTeardownCounter[int]()
	outer.Next(live.Stream())
	live.Subject.Next(9)
	assert.Equal(t, []int{9}, rec.Last(t), "synchronously completed slot is gone")
}

func TestActive_DisposeDuringInitialEmission(t *testing.T) {
	inner := testutils.NewTeardownCounter[int]()
	outer := newOuter[int]()

	var sub stream.Subscription
	got := 0
	sub = combine.Active[int](outer).Subscribe(stream.Observer[[]int]{
		Next: func([]int) {
			got++
			sub.Dispose()
		},
	})

	outer.Next(stream.StartWith(inner.Stream(), 1))
	inner.Subject.Next(2)

	assert.Equal(t, 1, got)
	assert.Equal(t, 1, inner.Subscribed)
	assert.Equal(t, 1, inner.TornDown, "inner subscribed after shutdown is still released once")
}

func TestActive_EmitOnRemoval(t *testing.T) {
	inners := counters(2)
	outer := newOuter[int]()
	rec, _ := testutils.Record(combine.Active[int](outer, combine.WithEmitOnRemoval()))

	outer.Next(inners[0].Stream())
	outer.Next(inners[1].Stream())
	inners[0].Subject.Next(1)
	inners[1].Subject.Next(2)
	inners[1].Subject.Complete()

	assert.Equal(t, []int{1}, rec.Last(t))
	inners[0].Subject.Complete()
	assert.Equal(t, []int{}, rec.Last(t))
}

func TestActive_LifecycleHooks(t *testing.T) {
	var opened, closed, snapshots int
	var lastOpen int
	hooks := domain.LifecycleHooks{
		OnSlotOpen: func(e *domain.SlotEvent) {
			opened++
			lastOpen = e.Open
		},
		OnSlotClose: func(e *domain.SlotEvent) {
			closed++
			lastOpen = e.Open
		},
		OnSnapshot: func(e *domain.SnapshotEvent) {
			snapshots++
			assert.Equal(t, "enemies", e.Combinator)
		},
	}

	inners := counters(2)
	outer := newOuter[int]()
	_, sub := testutils.Record(combine.Active[int](outer,
		combine.WithName("enemies"), combine.WithLifecycleHooks(hooks)))

	outer.Next(inners[0].Stream())
	outer.Next(inners[1].Stream())
	assert.Equal(t, 2, lastOpen)
	inners[0].Subject.Next(1)
	inners[0].Subject.Complete()
	assert.Equal(t, 1, lastOpen)
	sub.Dispose()

	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, closed)
	assert.Equal(t, 1, snapshots)
	assert.Equal(t, 0, lastOpen)
}
