package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/adapters/redis"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunLockerContract(t, redis.NewLocker(client, "intake:"))
}

func TestRedisLocker_ReleaseOnlyOwnLock(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "intake:")

	unlock, err := locker.Lock(ctx, "report.csv", time.Second)
	require.NoError(t, err)

	// Lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	unlock2, err := locker.Lock(ctx, "report.csv", time.Minute)
	require.NoError(t, err)

	// Stale release must not remove the new owner's key.
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("intake:lock:report.csv"))

	require.NoError(t, unlock2(ctx))
	assert.False(t, mr.Exists("intake:lock:report.csv"))
}
