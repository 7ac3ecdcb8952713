package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend delegates to a Redis server. Lists map onto RPUSH/LTRIM/LRANGE.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(ctx context.Context, redisURL string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisBackend{client: client}, nil
}

func (b *RedisBackend) Name() string { return BackendRedis }

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Append(ctx context.Context, key, value string) error {
	if err := b.client.RPush(ctx, key, value).Err(); err != nil {
		if strings.HasPrefix(err.Error(), "WRONGTYPE") {
			return fmt.Errorf("redis rpush %s: %w", key, ErrWrongType)
		}
		return fmt.Errorf("redis rpush %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Trim(ctx context.Context, key string, start, stop int64) error {
	if err := b.client.LTrim(ctx, key, start, stop).Err(); err != nil {
		return fmt.Errorf("redis ltrim %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	items, err := b.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange %s: %w", key, err)
	}
	return items, nil
}

func (b *RedisBackend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := b.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("redis expire %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) bool {
	return b.client.Ping(ctx).Err() == nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
