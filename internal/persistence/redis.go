package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/config"
)

// Redis wraps the go-redis client backing the shared token cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis and fails fast when the server cannot be reached.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &Redis{Client: client}, nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity. A nil Redis means the backend is disabled.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Ping(ctx).Err()
}

// Enabled reports whether a Redis client was configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}
