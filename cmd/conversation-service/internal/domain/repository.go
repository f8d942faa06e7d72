package domain

import "context"

// ConversationRepository 对话仓储接口
//
// 所有写操作都在 Transaction 内调用。
type ConversationRepository interface {
	// Save 写入对话并登记到目录
	Save(ctx context.Context, conversation *Conversation) error

	// Get 获取对话，不存在时返回 ErrConversationNotFound
	Get(ctx context.Context, id string) (*Conversation, error)

	// Delete 删除对话并从目录移除
	Delete(ctx context.Context, id string) error

	// List 按目录顺序（最新创建在前）列出所有对话
	List(ctx context.Context) ([]*Conversation, error)

	// ReplaceAll 用给定集合整体替换所有对话
	ReplaceAll(ctx context.Context, conversations []*Conversation) error
}

// FavoriteRepository 收藏索引仓储
type FavoriteRepository interface {
	// IDs 获取收藏的对话ID
	IDs(ctx context.Context) ([]string, error)

	// SaveIDs 覆盖收藏索引
	SaveIDs(ctx context.Context, ids []string) error
}

// HistoryRepository 历史记录仓储
type HistoryRepository interface {
	// Load 读取历史，最新在前
	Load(ctx context.Context) ([]*HistoryEntry, error)

	// Save 覆盖历史
	Save(ctx context.Context, entries []*HistoryEntry) error

	// GetSettings 读取设置，缺失的字段使用默认值
	GetSettings(ctx context.Context) (*HistorySettings, error)

	// SaveSettings 覆盖设置
	SaveSettings(ctx context.Context, settings *HistorySettings) error
}

// Transaction 单写者临界区，串行化所有读改写操作
type Transaction interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// StoreCleaner 清空整个键空间
type StoreCleaner interface {
	Clear(ctx context.Context) error
}

// ExportCodec 导出信封的编解码
type ExportCodec interface {
	EncodeConversations(export *ConversationExport) ([]byte, error)
	DecodeConversations(payload []byte) (*ConversationExport, error)
	EncodeHistory(export *HistoryExport) ([]byte, error)
	DecodeHistory(payload []byte) (*HistoryExport, error)
}

// Summarizer 外部摘要服务
type Summarizer interface {
	Summarize(ctx context.Context, transcript []Message) (string, error)
}

// ArchiveStore 归档对象存储
type ArchiveStore interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) error
}

// CharacterDirectory 角色目录
type CharacterDirectory interface {
	DisplayName(characterID string) string
}
