package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore(t *testing.T) {
	// 创建测试用Redis客户端
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // 使用测试数据库
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}

	store := NewRedisStoreWithClient(client, &Options{KeyPrefix: "kvtest"})
	defer store.Close()
	defer store.Clear(ctx)

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SetGetRemove", func(t *testing.T) {
		assert.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`)))

		value, err := store.Get(ctx, "k")
		assert.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(value))

		assert.NoError(t, store.Remove(ctx, "k"))
		_, err = store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ClearOnlyPrefix", func(t *testing.T) {
		assert.NoError(t, client.Set(ctx, "outside", "keep", 0).Err())
		defer client.Del(ctx, "outside")

		assert.NoError(t, store.Set(ctx, "a", []byte("1")))
		assert.NoError(t, store.Set(ctx, "b", []byte("2")))
		assert.NoError(t, store.Clear(ctx))

		_, err := store.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)

		outside, err := client.Get(ctx, "outside").Result()
		assert.NoError(t, err)
		assert.Equal(t, "keep", outside)
	})
}
