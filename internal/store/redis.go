package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the Redis-backed implementation of KV.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed KV store around an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}

		return "", wrap("get", err)
	}

	return value, nil
}

func (r *Redis) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return wrap("set", err)
	}

	return nil
}

func (r *Redis) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	created, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, wrap("setnx", err)
	}

	return created, nil
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, wrap("expire", err)
	}

	return ok, nil
}

// Incr pipelines INCR with EXPIRE NX so the TTL lands exactly once, on the
// increment that creates the key.
func (r *Redis) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	counter := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, wrap("incr", err)
	}

	return counter.Val(), nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return wrap("del", err)
	}

	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return wrap("ping", err)
	}

	return nil
}

// wrap tags transport failures as ErrUnavailable while preserving the cause.
func wrap(op string, err error) error {
	return fmt.Errorf("redis %s: %w: %w", op, ErrUnavailable, err)
}

// Compile-time check.
var _ KV = (*Redis)(nil)
