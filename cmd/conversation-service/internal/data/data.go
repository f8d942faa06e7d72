package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/cache"
)

// ProviderSet 数据层提供者集合
var ProviderSet = wire.NewSet(
	NewStore,
	NewData,
	NewTransaction,
	NewConversationRepository,
	NewFavoriteRepository,
	NewHistoryRepository,
	NewExportCodec,
	wire.Bind(new(domain.StoreCleaner), new(*Data)),
)

// 存储键
const (
	conversationKeyPrefix = "conversation_"
	favoritesKey          = "favorite_conversations"
	historyKey            = "dialogue_history"
	catalogKey            = "conversation_history"
	settingsKey           = "history_settings"
)

func conversationKey(id string) string {
	return conversationKeyPrefix + id
}

// Data 数据层结构
//
// mu 是整个存储的单写者锁，所有读改写序列都在 InTx 内执行。
type Data struct {
	store cache.Store
	mu    sync.Mutex
	log   *log.Helper
}

// NewData 创建数据层
func NewData(store cache.Store, logger log.Logger) *Data {
	return &Data{
		store: store,
		log:   log.NewHelper(log.With(logger, "module", "data")),
	}
}

// Ping 检查存储连通性
func (d *Data) Ping(ctx context.Context) error {
	return d.store.Ping(ctx)
}

// Clear 清空整个键空间
func (d *Data) Clear(ctx context.Context) error {
	if err := d.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: clear: %w", domain.ErrStorage, err)
	}
	return nil
}

// getJSON 读取并解码，键不存在时 found 为 false
func (d *Data) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := d.store.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: get %s: %w", domain.ErrStorage, key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("%w: decode %s: %w", domain.ErrCorruptRecord, key, err)
	}
	return true, nil
}

// setJSON 编码并写入
func (d *Data) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", domain.ErrStorage, key, err)
	}
	if err := d.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("%w: set %s: %w", domain.ErrStorage, key, err)
	}
	return nil
}

func (d *Data) remove(ctx context.Context, key string) error {
	if err := d.store.Remove(ctx, key); err != nil {
		return fmt.Errorf("%w: remove %s: %w", domain.ErrStorage, key, err)
	}
	return nil
}

type transaction struct {
	data *Data
}

// NewTransaction 基于单写者锁的事务
//
// InTx 不可重入，fn 内不能再次调用 InTx。
func NewTransaction(d *Data) domain.Transaction {
	return &transaction{data: d}
}

// InTx 在临界区内执行 fn
func (t *transaction) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
