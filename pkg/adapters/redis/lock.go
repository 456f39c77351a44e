package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrLeaseHeld is returned when another publisher holds the lease.
	ErrLeaseHeld = errors.New("publisher lease held by another process")
)

// ReleaseFunc gives a lease back.
type ReleaseFunc func(ctx context.Context) error

// AcquireLease claims exclusive publishing rights on the store prefix, so
// two simulations never interleave scenes on the same key. The lease expires
// after ttl even if it is never released.
func (s *Store) AcquireLease(ctx context.Context, owner string, ttl time.Duration) (ReleaseFunc, error) {
	key := s.prefix + "lease"
	val := owner + ":" + strconv.FormatInt(time.Now().UnixNano(), 10)

	ok, err := s.client.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error acquiring lease: %w", err)
	}
	if !ok {
		return nil, ErrLeaseHeld
	}

	return func(ctx context.Context) error {
		// Only delete the lease if we still hold it.
		script := `
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			else
				return 0
			end
		`
		return s.client.Eval(ctx, script, []string{key}, val).Err()
	}, nil
}
