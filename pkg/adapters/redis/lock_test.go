package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/flock/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLease_Exclusive(t *testing.T) {
	mr, store := newStore(t)
	ctx := context.Background()

	release, err := store.AcquireLease(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("flock:lease"))

	_, err = store.AcquireLease(ctx, "b", time.Minute)
	assert.ErrorIs(t, err, redis.ErrLeaseHeld)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("flock:lease"))

	_, err = store.AcquireLease(ctx, "b", time.Minute)
	assert.NoError(t, err)
}

func TestLease_Expires(t *testing.T) {
	mr, store := newStore(t)
	ctx := context.Background()

	staleRelease, err := store.AcquireLease(ctx, "a", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	_, err = store.AcquireLease(ctx, "b", time.Minute)
	require.NoError(t, err)

	require.NoError(t, staleRelease(ctx))
	assert.True(t, mr.Exists("flock:lease"), "a stale holder must not drop the new lease")
}
