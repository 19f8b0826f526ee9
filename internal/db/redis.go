package db

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis keys and channels shared with the CMS side.
const (
	// AliasesKey maps internal paths to their human-readable aliases.
	AliasesKey = "banner:aliases"
	// InvalidationChannel carries cache-tag invalidations published on
	// banner saves. Subscribers reload their snapshot and flush caches
	// bearing the tag.
	InvalidationChannel = "banner-data-updates"
)

// RedisStore wraps a redis client for alias lookups and cache-tag
// invalidation fan-out.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// GetAlias returns the alias for an internal path, or empty when none is
// known. Lookup failures degrade to "no alias"; selection must not depend on
// redis availability.
func (r *RedisStore) GetAlias(path string) string {
	alias, err := r.Client.HGet(r.Ctx, AliasesKey, path).Result()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("alias lookup failed", zap.String("path", path), zap.Error(err))
		}
		return ""
	}
	return alias
}

// SetAlias stores or clears the alias for a path. Used by the CMS sync job
// and by tests.
func (r *RedisStore) SetAlias(path, alias string) error {
	if alias == "" {
		return r.Client.HDel(r.Ctx, AliasesKey, path).Err()
	}
	return r.Client.HSet(r.Ctx, AliasesKey, path, alias).Err()
}

// PublishInvalidation announces that the given cache tag is stale. Called
// after every banner write; never called from the selection path.
func (r *RedisStore) PublishInvalidation(tag string) error {
	if err := r.Client.Publish(r.Ctx, InvalidationChannel, tag).Err(); err != nil {
		return fmt.Errorf("publish invalidation %q: %w", tag, err)
	}
	return nil
}

// SubscribeInvalidations subscribes to the invalidation channel. The caller
// owns the returned subscription.
func (r *RedisStore) SubscribeInvalidations(ctx context.Context) *redis.PubSub {
	return r.Client.Subscribe(ctx, InvalidationChannel)
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
