package data

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/cache"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/config"
)

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `dia\_logue\%:`, likeEscaper.Replace("dia_logue%:"))
	assert.Equal(t, `a\\b`, likeEscaper.Replace(`a\b`))
}

func TestPostgresStore(t *testing.T) {
	db, err := NewDB(&conf.DatabaseConfig{
		Host:     config.GetEnv("DB_HOST", "localhost"),
		Port:     config.GetEnvAsInt("DB_PORT", 5432),
		User:     config.GetEnv("DB_USER", "postgres"),
		Password: config.GetEnv("DB_PASSWORD", "postgres"),
		DBName:   config.GetEnv("DB_NAME", "dialogue_test"),
		SSLMode:  "disable",
	}, log.DefaultLogger)
	if err != nil {
		t.Skip("PostgreSQL not available, skipping integration test")
	}

	ctx := context.Background()
	store := NewPostgresStore(db, &cache.Options{KeyPrefix: "kvtest"})
	defer store.Close()
	defer store.Clear(ctx)

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("Upsert", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("v1")))
		require.NoError(t, store.Set(ctx, "k", []byte("v2")))

		value, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", string(value))
	})

	t.Run("ClearOnlyPrefix", func(t *testing.T) {
		other := NewPostgresStore(db, &cache.Options{KeyPrefix: "kvother"})
		require.NoError(t, other.Set(ctx, "keep", []byte("1")))
		defer other.Clear(ctx)

		require.NoError(t, store.Set(ctx, "a", []byte("1")))
		require.NoError(t, store.Clear(ctx))

		_, err := store.Get(ctx, "a")
		assert.ErrorIs(t, err, cache.ErrNotFound)

		value, err := other.Get(ctx, "keep")
		require.NoError(t, err)
		assert.Equal(t, "1", string(value))
	})
}
