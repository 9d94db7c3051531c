package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupCache implements usecase.DedupCache using Redis. It only holds
// ids the durable store has already consumed, so losing a key merely
// costs one round trip to postgres; it can never admit a duplicate.
type DedupCache struct {
	client *redis.Client
	prefix string
}

// NewDedupCache creates a new DedupCache.
func NewDedupCache(client *redis.Client) *DedupCache {
	return &DedupCache{
		client: client,
		prefix: "dedup:",
	}
}

func (c *DedupCache) key(accountID, requestID string) string {
	return c.prefix + accountID + ":" + requestID
}

// Seen reports whether the (account, request id) pair is cached.
func (c *DedupCache) Seen(ctx context.Context, accountID, requestID string) (bool, error) {
	err := c.client.Get(ctx, c.key(accountID, requestID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// MarkSeen caches the pair with the given TTL.
func (c *DedupCache) MarkSeen(ctx context.Context, accountID, requestID string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(accountID, requestID), "1", ttl).Err()
}
