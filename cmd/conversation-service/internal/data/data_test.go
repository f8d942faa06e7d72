package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/cache"
)

// MockStore 可注入失败的存储
type MockStore struct {
	*cache.MemoryStore
	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte) error
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return m.MemoryStore.Get(ctx, key)
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return m.MemoryStore.Set(ctx, key, value)
}

func newTestData() (*Data, *cache.MemoryStore) {
	store := cache.NewMemoryStore(nil)
	return NewData(store, log.DefaultLogger), store
}

func TestConversationRepository_SaveGetList(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestData()
	repo := NewConversationRepository(d, log.DefaultLogger)

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first := domain.NewConversation("aoi", "", "first", now)
	first.AppendMessage(domain.MessageInput{Text: "こんにちは", Sender: domain.SenderUser, Emotion: domain.EmotionHappy}, now)
	second := domain.NewConversation("shun", "", "second", now.Add(time.Minute))

	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	// 重复保存不改变目录顺序
	require.NoError(t, repo.Save(ctx, first))

	// 读取往返
	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Title, got.Title)
	assert.True(t, got.StartedAt.Equal(now))
	require.Len(t, got.Messages, 1)
	assert.Equal(t, domain.EmotionHappy, got.Messages[0].Emotion)
	assert.Len(t, got.Metadata.EmotionalArc, 1)

	// 最新创建在前
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	// 删除
	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.Get(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConversationRepository_ListSkipsCorruptRecords(t *testing.T) {
	ctx := context.Background()
	d, store := newTestData()
	repo := NewConversationRepository(d, log.DefaultLogger)

	good := domain.NewConversation("aoi", "", "good", time.Now())
	require.NoError(t, repo.Save(ctx, good))
	require.NoError(t, store.Set(ctx, catalogKey, []byte(`["broken","missing","`+good.ID+`"]`)))
	require.NoError(t, store.Set(ctx, conversationKey("broken"), []byte("{not json")))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, good.ID, list[0].ID)

	// 直接读取损坏记录返回存储错误
	_, err = repo.Get(ctx, "broken")
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestConversationRepository_StorageFailure(t *testing.T) {
	ctx := context.Background()
	backendErr := errors.New("connection refused")
	store := &MockStore{
		MemoryStore: cache.NewMemoryStore(nil),
		GetFunc: func(ctx context.Context, key string) ([]byte, error) {
			return nil, backendErr
		},
		SetFunc: func(ctx context.Context, key string, value []byte) error {
			return backendErr
		},
	}
	repo := NewConversationRepository(NewData(store, log.DefaultLogger), log.DefaultLogger)

	_, err := repo.Get(ctx, "any")
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, backendErr)

	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)

	err = repo.Save(ctx, domain.NewConversation("aoi", "", "t", time.Now()))
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestConversationRepository_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestData()
	repo := NewConversationRepository(d, log.DefaultLogger)

	old := domain.NewConversation("aoi", "", "old", time.Now())
	require.NoError(t, repo.Save(ctx, old))

	a := domain.NewConversation("aoi", "", "a", time.Now())
	b := domain.NewConversation("shun", "", "b", time.Now())
	require.NoError(t, repo.ReplaceAll(ctx, []*domain.Conversation{a, b}))

	_, err := repo.Get(ctx, old.ID)
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestFavoriteRepository(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestData()
	repo := NewFavoriteRepository(d)

	ids, err := repo.IDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)

	require.NoError(t, repo.SaveIDs(ctx, []string{"a", "b"}))
	ids, err = repo.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestHistoryRepository(t *testing.T) {
	ctx := context.Background()
	d, store := newTestData()
	repo := NewHistoryRepository(d)

	entries, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	rating := 4
	entry := &domain.HistoryEntry{
		ID:                 "h1",
		CharacterID:        "aoi",
		Scenario:           domain.Scenario{ID: "s1", Title: "放課後"},
		StartTime:          time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		EndTime:            time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		MessageCount:       3,
		EmotionProgression: []domain.Emotion{domain.EmotionHappy, domain.EmotionSad},
		Rating:             &rating,
	}
	require.NoError(t, repo.Save(ctx, []*domain.HistoryEntry{entry}))

	entries, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])

	// 设置缺失的键使用默认值
	settings, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultHistorySettings(), *settings)

	require.NoError(t, store.Set(ctx, settingsKey, []byte(`{"maxHistoryCount":10}`)))
	settings, err = repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, settings.MaxHistoryCount)
	assert.True(t, settings.AutoSaveEnabled)
	assert.True(t, settings.CompressionEnabled)

	settings.AutoSaveEnabled = false
	require.NoError(t, repo.SaveSettings(ctx, settings))
	reloaded, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.False(t, reloaded.AutoSaveEnabled)
}

func TestTransaction_InTx(t *testing.T) {
	d, _ := newTestData()
	tx := NewTransaction(d)

	called := false
	err := tx.InTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = tx.InTx(ctx, func(ctx context.Context) error {
		t.Fatal("should not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestData_Clear(t *testing.T) {
	ctx := context.Background()
	d, store := newTestData()

	require.NoError(t, store.Set(ctx, favoritesKey, []byte(`["a"]`)))
	require.NoError(t, d.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}
