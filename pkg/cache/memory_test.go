package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(&Options{KeyPrefix: "test"})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k1", []byte("v1")))

		value, err := store.Get(ctx, "k1")
		assert.NoError(t, err)
		assert.Equal(t, []byte("v1"), value)
	})

	t.Run("ValuesAreCopied", func(t *testing.T) {
		buf := []byte("abc")
		require.NoError(t, store.Set(ctx, "k2", buf))
		buf[0] = 'x'

		value, err := store.Get(ctx, "k2")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(value))

		// 修改返回值不影响存储
		value[0] = 'y'
		again, _ := store.Get(ctx, "k2")
		assert.Equal(t, "abc", string(again))
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "k1"))
		_, err := store.Get(ctx, "k1")
		assert.ErrorIs(t, err, ErrNotFound)

		// 删除不存在的键不报错
		assert.NoError(t, store.Remove(ctx, "k1"))
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k3", []byte("v3")))
		require.NoError(t, store.Clear(ctx))
		assert.Equal(t, 0, store.Len())
	})
}

func TestInstrumentedStore(t *testing.T) {
	ctx := context.Background()
	store := NewInstrumentedStore(NewMemoryStore(nil), "memory")

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	value, err := store.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	_, err = store.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Ping(ctx))
}
