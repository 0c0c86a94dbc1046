package adapter

import (
	"context"
	"errors"
	"vocab-quiz/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStoreAdapter implements domain.KVStore using a Redis client.
type RedisStoreAdapter struct {
	client redis.Cmdable
}

// NewRedisStoreAdapter creates a new instance of RedisStoreAdapter.
// It expects a connected client.
func NewRedisStoreAdapter(client redis.Cmdable) domain.KVStore {
	return &RedisStoreAdapter{client: client}
}

// Get translates redis.Nil to domain.ErrKeyNotFound.
func (r *RedisStoreAdapter) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrKeyNotFound
		}
		return "", err
	}
	return val, nil
}

// Set stores value without expiration.
func (r *RedisStoreAdapter) Set(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Ping checks the health of the Redis server.
func (r *RedisStoreAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
