package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTokenPrefix = "token:"

// RedisTokenCache shares issued tokens between replicas through Redis.
// Redis TTL handles eviction; reads double check the stored expiry.
type RedisTokenCache struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisTokenCache creates a cache using the "token:" key prefix.
func NewRedisTokenCache(client redis.UniversalClient) *RedisTokenCache {
	return NewRedisTokenCacheWithPrefix(client, defaultRedisTokenPrefix)
}

// NewRedisTokenCacheWithPrefix creates a cache with a custom key prefix.
func NewRedisTokenCacheWithPrefix(client redis.UniversalClient, prefix string) *RedisTokenCache {
	if prefix == "" {
		prefix = defaultRedisTokenPrefix
	}
	return &RedisTokenCache{client: client, prefix: prefix, now: time.Now}
}

func (c *RedisTokenCache) key(username string) string { return c.prefix + username }

func (c *RedisTokenCache) Get(ctx context.Context, key string) (CachedToken, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return CachedToken{}, false, nil
		}
		return CachedToken{}, false, fmt.Errorf("redis get: %w", err)
	}

	var entry CachedToken
	if err := json.Unmarshal(data, &entry); err != nil {
		return CachedToken{}, false, fmt.Errorf("unmarshal cached token: %w", err)
	}

	if !c.now().Before(entry.ExpiresAt) {
		if err := c.Delete(ctx, key); err != nil {
			return CachedToken{}, false, fmt.Errorf("cleanup expired token: %w", err)
		}
		return CachedToken{}, false, nil
	}
	return entry, true, nil
}

func (c *RedisTokenCache) Set(ctx context.Context, key string, entry CachedToken, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if !entry.ExpiresAt.IsZero() {
		if remaining := entry.ExpiresAt.Sub(c.now()); remaining < ttl {
			ttl = remaining
		}
		if ttl <= 0 {
			return nil
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cached token: %w", err)
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

func (c *RedisTokenCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

var _ TokenCache = (*RedisTokenCache)(nil)
