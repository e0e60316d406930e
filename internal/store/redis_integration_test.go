//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortly/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestRedisKVIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	kv := store.NewRedis(client)

	t.Run("set and get", func(t *testing.T) {
		err := kv.SetWithExpiry(ctx, "shortly:test:k", "v", time.Minute)
		require.NoError(t, err)

		got, err := kv.Get(ctx, "shortly:test:k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)

		// Cleanup
		client.Del(ctx, "shortly:test:k")
	})

	t.Run("get non-existent returns ErrKeyNotFound", func(t *testing.T) {
		value, err := kv.Get(ctx, "shortly:test:missing")

		assert.Empty(t, value)
		assert.ErrorIs(t, err, store.ErrKeyNotFound)
	})

	t.Run("set if absent respects existing key", func(t *testing.T) {
		created, err := kv.SetIfAbsent(ctx, "shortly:test:nx", "first", time.Minute)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = kv.SetIfAbsent(ctx, "shortly:test:nx", "second", time.Minute)
		require.NoError(t, err)
		assert.False(t, created)

		got, _ := kv.Get(ctx, "shortly:test:nx")
		assert.Equal(t, "first", got)

		// Cleanup
		client.Del(ctx, "shortly:test:nx")
	})

	t.Run("incr sets ttl on first hit only", func(t *testing.T) {
		count, err := kv.Incr(ctx, "shortly:test:counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		firstTTL := client.TTL(ctx, "shortly:test:counter").Val()
		assert.Positive(t, firstTTL)

		count, err = kv.Incr(ctx, "shortly:test:counter", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		// Second increment must not extend the original window
		secondTTL := client.TTL(ctx, "shortly:test:counter").Val()
		assert.LessOrEqual(t, secondTTL, firstTTL)

		// Cleanup
		client.Del(ctx, "shortly:test:counter")
	})
}
