package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/flock/internal/testutils"
	"github.com/aretw0/flock/pkg/clock"
	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/loop"
	"github.com/aretw0/flock/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_ConnectOnce(t *testing.T) {
	l := loop.New()
	c := clock.New(l, time.Hour)

	sub, err := c.Connect(context.Background())
	require.NoError(t, err)
	defer sub.Dispose()

	_, err = c.Connect(context.Background())
	assert.ErrorIs(t, err, domain.ErrAlreadyConnected)
}

func TestClock_TicksReachAllSubscribersThroughLoop(t *testing.T) {
	l := loop.New()
	c := clock.New(l, 5*time.Millisecond)

	a, _ := testutils.Record(c.Stream())
	b, _ := testutils.Record(c.Stream())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub, err := c.Connect(ctx)
	require.NoError(t, err)

	// Stop the loop from inside once three ticks were seen.
	c.Stream().Subscribe(stream.Observer[domain.Tick]{
		Next: func(tick domain.Tick) {
			if tick.Seq == 3 {
				sub.Dispose()
				l.Stop()
			}
		},
	})

	require.NoError(t, l.Run(ctx))
	require.GreaterOrEqual(t, len(a.Values), 3)
	assert.Equal(t, a.Values[:3], b.Values[:3], "subscribers observe identical ticks")
	assert.Equal(t, uint64(1), a.Values[0].Seq)
}

func TestManual_DropsTicksBeforeConnect(t *testing.T) {
	m := clock.NewManual(40 * time.Millisecond)
	rec, sub := testutils.Record(m.Stream())

	assert.False(t, m.Tick())
	require.NoError(t, m.Connect())
	assert.ErrorIs(t, m.Connect(), domain.ErrAlreadyConnected)
	assert.True(t, m.Tick())

	require.Len(t, rec.Values, 1)
	assert.Equal(t, uint64(1), rec.Values[0].Seq)
	assert.Equal(t, 1, m.Subscribers())
	sub.Dispose()
	assert.Equal(t, 0, m.Subscribers())
}
