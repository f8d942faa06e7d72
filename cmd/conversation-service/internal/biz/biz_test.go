package biz

import (
	"context"
	"sync"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/data"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/cache"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/config"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/events"
)

// MockSummarizer 模拟摘要服务
type MockSummarizer struct {
	SummarizeFunc func(ctx context.Context, transcript []domain.Message) (string, error)
	calls         int
}

func (m *MockSummarizer) Summarize(ctx context.Context, transcript []domain.Message) (string, error) {
	m.calls++
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, transcript)
	}
	return "楽しい会話でした。", nil
}

// MockPublisher 记录发布的事件
type MockPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (m *MockPublisher) Publish(_ context.Context, event *events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func (m *MockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

// MockArchive 内存归档
type MockArchive struct {
	PutFunc func(ctx context.Context, name string, data []byte, contentType string) error
	objects map[string][]byte
}

func (m *MockArchive) Put(ctx context.Context, name string, data []byte, contentType string) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, name, data, contentType)
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[name] = data
	return nil
}

// testEnv 基于内存存储装配的全部用例
type testEnv struct {
	store         *cache.MemoryStore
	data          *data.Data
	conversations domain.ConversationRepository
	favoritesRepo domain.FavoriteRepository
	historyRepo   domain.HistoryRepository
	publisher     *MockPublisher
	summarizer    *MockSummarizer
	archive       *MockArchive

	conversation *ConversationUsecase
	favorite     *FavoriteUsecase
	history      *HistoryUsecase
	search       *SearchUsecase
	stats        *StatsUsecase
	summary      *SummaryUsecase
	export       *ExportUsecase
}

func newTestEnv() *testEnv {
	return newTestEnvWithStore(cache.NewMemoryStore(nil))
}

func newTestEnvWithStore(store cache.Store) *testEnv {
	logger := log.DefaultLogger
	d := data.NewData(store, logger)
	tx := data.NewTransaction(d)
	conversations := data.NewConversationRepository(d, logger)
	favorites := data.NewFavoriteRepository(d)
	history := data.NewHistoryRepository(d)
	characters := config.NewCharacterDirectory([]config.CharacterInfo{
		{ID: "aoi", DisplayName: "蒼"},
		{ID: "shun", DisplayName: "瞬"},
	})

	env := &testEnv{
		data:          d,
		conversations: conversations,
		favoritesRepo: favorites,
		historyRepo:   history,
		publisher:     &MockPublisher{},
		summarizer:    &MockSummarizer{},
		archive:       &MockArchive{},
	}
	if mem, ok := store.(*cache.MemoryStore); ok {
		env.store = mem
	}

	env.conversation = NewConversationUsecase(conversations, favorites, tx, d, characters, env.publisher, logger)
	env.favorite = NewFavoriteUsecase(conversations, favorites, tx, logger)
	env.history = NewHistoryUsecase(history, tx, env.publisher, logger)
	env.search = NewSearchUsecase(conversations, logger)
	env.stats = NewStatsUsecase(conversations, logger)
	env.summary = NewSummaryUsecase(conversations, tx, env.summarizer, logger)
	env.export = NewExportUsecase(conversations, favorites, history, tx, data.NewExportCodec(), env.archive, env.publisher, logger)
	return env
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
