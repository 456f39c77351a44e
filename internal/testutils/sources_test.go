package testutils_test

import (
	"errors"
	"testing"

	"github.com/aretw0/flock/internal/testutils"
	"github.com/aretw0/flock/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	values, err := testutils.Collect(stream.Map(testutils.Of(1, 2, 3), func(v int) int { return v * 2 }))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, values)

	boom := errors.New("boom")
	_, err = testutils.Collect(testutils.Throw[int](boom))
	assert.ErrorIs(t, err, boom)
}

func TestEmptyAndNever(t *testing.T) {
	empty, _ := testutils.Record(testutils.Empty[int]())
	assert.Empty(t, empty.Values)
	assert.Equal(t, 1, empty.Completions)

	never, sub := testutils.Record(testutils.Never[int]())
	sub.Dispose()
	assert.False(t, never.Terminated())
}
