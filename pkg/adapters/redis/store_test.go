package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/intake/pkg/adapters/redis"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	defer store.Close()

	ports.RunResultStoreContract(t, store)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))

	rec := domain.Record{ID: "abc", FileName: "a.csv", Rule: domain.RuleFileName, Result: "ok", CreatedAt: time.Now()}
	require.NoError(t, store.Save(context.Background(), rec))

	assert.True(t, mr.Exists("test:result:abc"))
	assert.True(t, mr.Exists("test:index"))
	assert.True(t, mr.Exists("test:file:a.csv"))
}

func TestRedisStore_TTLPrunesIndex(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))

	now := time.Now()
	require.NoError(t, store.Save(ctx, domain.Record{ID: "old", FileName: "a.csv", CreatedAt: now}))

	mr.FastForward(2 * time.Minute)

	require.NoError(t, store.Save(ctx, domain.Record{ID: "new", FileName: "a.csv", CreatedAt: now.Add(time.Second)}))

	got, err := store.List(ctx, domain.Filter{FileName: "a.csv"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)

	members, err := mr.ZMembers("intake:file:a.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, members, "expired id should be pruned from the index")
}

func TestRedisStore_EqualTimestampsOrderByIDDesc(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	defer store.Close()

	at := time.Now()
	for _, id := range []string{"b", "c", "a"} {
		require.NoError(t, store.Save(ctx, domain.Record{ID: id, FileName: "f.csv", CreatedAt: at}))
	}

	got, err := store.List(ctx, domain.Filter{FileName: "f.csv"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})
}
