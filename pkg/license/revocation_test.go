package license

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisRevocations, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRevocations(rdb, "test"), mr
}

func TestRevocationStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]RevocationStore{
		"Memory": NewMemoryRevocations(),
		"Redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, revoked, err := store.Revoked(ctx, "lic-1")
			require.NoError(t, err)
			assert.False(t, revoked)

			require.NoError(t, store.Revoke(ctx, "lic-1", "chargeback", 0))
			reason, revoked, err := store.Revoked(ctx, "lic-1")
			require.NoError(t, err)
			assert.True(t, revoked)
			assert.Equal(t, "chargeback", reason)

			require.NoError(t, store.Revoke(ctx, "lic-2", "", 0))
			reason, revoked, err = store.Revoked(ctx, "lic-2")
			require.NoError(t, err)
			assert.True(t, revoked)
			assert.Equal(t, "revoked", reason)
		})
	}
}

func TestRedisRevocationTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "lic-1", "temporary", time.Minute))
	assert.True(t, mr.Exists("test:revoked:lic-1"))

	mr.FastForward(2 * time.Minute)
	_, revoked, err := store.Revoked(ctx, "lic-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationTTL(t *testing.T) {
	store := NewMemoryRevocations()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "lic-1", "temporary", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, revoked, err := store.Revoked(ctx, "lic-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevocationsUnavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, _, err := store.Revoked(context.Background(), "lic-1")
	assert.ErrorIs(t, err, ErrRevocationUnavailable)
	assert.ErrorIs(t, store.Revoke(context.Background(), "lic-1", "x", 0), ErrRevocationUnavailable)
}
