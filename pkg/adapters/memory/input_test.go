package memory_test

import (
	"testing"
	"time"

	"github.com/aretw0/flock/internal/testutils"
	"github.com/aretw0/flock/pkg/adapters/memory"
	"github.com/aretw0/flock/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_MulticastsEvents(t *testing.T) {
	in := memory.NewInput()
	moves, _ := testutils.Record(in.PointerMoves())
	fires, _ := testutils.Record(in.Fires())

	in.Move(10)
	in.Move(20)
	in.Fire()

	assert.Equal(t, []float64{10, 20}, moves.Values)
	assert.Len(t, fires.Values, 1)
}

func TestAutopilot_SweepsAndFires(t *testing.T) {
	m := clock.NewManual(time.Millisecond)
	require.NoError(t, m.Connect())

	in := memory.NewInput()
	moves, _ := testutils.Record(in.PointerMoves())
	fires, _ := testutils.Record(in.Fires())

	sub := memory.Autopilot(in, m.Stream(), 100, memory.WithFireEvery(2), memory.WithSweepPeriod(4))
	for range 4 {
		m.Tick()
	}

	require.Len(t, moves.Values, 4)
	assert.InDelta(t, 100, moves.Values[0], 1e-9, "quarter sweep")
	assert.InDelta(t, 50, moves.Values[1], 1e-9)
	assert.InDelta(t, 0, moves.Values[2], 1e-9)
	assert.InDelta(t, 50, moves.Values[3], 1e-9)
	assert.Len(t, fires.Values, 2)

	sub.Dispose()
	m.Tick()
	assert.Len(t, moves.Values, 4)
}
