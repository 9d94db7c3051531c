package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupCache_SeenAndMarkSeen(t *testing.T) {
	client, _ := newTestRedisClient(t)
	cache := NewDedupCache(client)
	ctx := context.Background()

	seen, err := cache.Seen(ctx, "acc-1", "r1")
	require.NoError(t, err)
	assert.False(t, seen, "unseen pair should miss")

	require.NoError(t, cache.MarkSeen(ctx, "acc-1", "r1", time.Hour))

	seen, err = cache.Seen(ctx, "acc-1", "r1")
	require.NoError(t, err)
	assert.True(t, seen)

	// Other callers with the same request id are independent.
	seen, err = cache.Seen(ctx, "acc-2", "r1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDedupCache_TTLExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewDedupCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkSeen(ctx, "acc-1", "r1", time.Minute))

	mr.FastForward(2 * time.Minute)

	seen, err := cache.Seen(ctx, "acc-1", "r1")
	require.NoError(t, err)
	assert.False(t, seen, "expired key should miss")
}

func TestDedupCache_RedisDownSurfacesError(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewDedupCache(client)
	ctx := context.Background()

	mr.Close()

	_, err := cache.Seen(ctx, "acc-1", "r1")
	assert.Error(t, err)
}
