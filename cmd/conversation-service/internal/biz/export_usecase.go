package biz

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/events"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/monitoring"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/observability"
)

// ExportUsecase 导出导入
//
// 导入先完整解码校验，校验失败不写入任何键；导入的记录一律分配新ID。
type ExportUsecase struct {
	conversations domain.ConversationRepository
	favorites     domain.FavoriteRepository
	history       domain.HistoryRepository
	tx            domain.Transaction
	codec         domain.ExportCodec
	archive       domain.ArchiveStore
	publisher     events.Publisher
	log           *log.Helper
}

// NewExportUsecase 创建导出用例，archive 可为 nil
func NewExportUsecase(
	conversations domain.ConversationRepository,
	favorites domain.FavoriteRepository,
	history domain.HistoryRepository,
	tx domain.Transaction,
	codec domain.ExportCodec,
	archive domain.ArchiveStore,
	publisher events.Publisher,
	logger log.Logger,
) *ExportUsecase {
	return &ExportUsecase{
		conversations: conversations,
		favorites:     favorites,
		history:       history,
		tx:            tx,
		codec:         codec,
		archive:       archive,
		publisher:     publisher,
		log:           log.NewHelper(log.With(logger, "module", "biz/export")),
	}
}

// ExportConversations 导出对话，ids 为空时导出全部，未知ID跳过
func (uc *ExportUsecase) ExportConversations(ctx context.Context, ids []string) (*domain.ConversationExport, error) {
	conversations, err := uc.collect(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &domain.ConversationExport{
		Version:       domain.ConversationExportVersion,
		ExportedAt:    nowFunc(),
		Conversations: conversations,
	}, nil
}

// EncodeConversations 导出并编码为 JSON
func (uc *ExportUsecase) EncodeConversations(ctx context.Context, ids []string) ([]byte, error) {
	export, err := uc.ExportConversations(ctx, ids)
	if err != nil {
		return nil, err
	}
	return uc.codec.EncodeConversations(export)
}

// ImportConversations 导入对话，返回导入数量
func (uc *ExportUsecase) ImportConversations(ctx context.Context, payload []byte) (count int, err error) {
	ctx, span := observability.StartSpan(ctx, "ExportUsecase.ImportConversations", attribute.Int("payload_bytes", len(payload)))
	defer func() {
		observability.EndSpan(span, err)
		monitoring.ObserveOperation("import_conversations", err)
	}()

	export, err := uc.codec.DecodeConversations(payload)
	if err != nil {
		uc.log.WithContext(ctx).Warnf("reject conversation import: %v", err)
		return 0, err
	}

	imported := remapIDs(export.Conversations)
	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		favoriteIDs, err := uc.favorites.IDs(ctx)
		if err != nil {
			return err
		}
		// 新对话插入目录头部，倒序保存使目录顺序与导入数据一致
		for i := len(imported) - 1; i >= 0; i-- {
			if err := uc.conversations.Save(ctx, imported[i]); err != nil {
				return err
			}
		}
		for _, c := range imported {
			if c.IsFavorite {
				favoriteIDs = append(favoriteIDs, c.ID)
			}
		}
		return uc.favorites.SaveIDs(ctx, favoriteIDs)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import conversations: %w", err)
	}

	publishEvent(ctx, uc.publisher, uc.log, events.ConversationsImported, "", map[string]interface{}{
		"count": len(imported),
	})
	return len(imported), nil
}

// ExportHistory 导出历史、对话和设置
func (uc *ExportUsecase) ExportHistory(ctx context.Context) (*domain.HistoryExport, error) {
	entries, err := uc.history.Load(ctx)
	if err != nil {
		return nil, err
	}
	conversations, err := uc.conversations.List(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := uc.history.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.HistoryExport{
		Version:       domain.HistoryExportVersion,
		ExportedAt:    nowFunc(),
		History:       entries,
		Conversations: conversations,
		Settings:      *settings,
	}, nil
}

// EncodeHistory 导出历史并编码为 JSON
func (uc *ExportUsecase) EncodeHistory(ctx context.Context) ([]byte, error) {
	export, err := uc.ExportHistory(ctx)
	if err != nil {
		return nil, err
	}
	return uc.codec.EncodeHistory(export)
}

// ImportHistory 整体替换历史、对话和设置
func (uc *ExportUsecase) ImportHistory(ctx context.Context, payload []byte) (err error) {
	ctx, span := observability.StartSpan(ctx, "ExportUsecase.ImportHistory", attribute.Int("payload_bytes", len(payload)))
	defer func() {
		observability.EndSpan(span, err)
		monitoring.ObserveOperation("import_history", err)
	}()

	export, err := uc.codec.DecodeHistory(payload)
	if err != nil {
		uc.log.WithContext(ctx).Warnf("reject history import: %v", err)
		return err
	}

	conversations := remapIDs(export.Conversations)
	entries := make([]*domain.HistoryEntry, 0, len(export.History))
	for _, e := range export.History {
		entry := e.Clone()
		entry.ID = uuid.New().String()
		entries = append(entries, entry)
	}
	settings := export.Settings
	entries = truncate(entries, settings.MaxHistoryCount)

	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.history.Save(ctx, entries); err != nil {
			return err
		}
		if err := uc.conversations.ReplaceAll(ctx, conversations); err != nil {
			return err
		}

		favoriteIDs := make([]string, 0)
		for _, c := range conversations {
			if c.IsFavorite {
				favoriteIDs = append(favoriteIDs, c.ID)
			}
		}
		if err := uc.favorites.SaveIDs(ctx, favoriteIDs); err != nil {
			return err
		}
		return uc.history.SaveSettings(ctx, &settings)
	})
	if err != nil {
		return fmt.Errorf("failed to import history: %w", err)
	}

	monitoring.HistoryEntries.Set(float64(len(entries)))
	publishEvent(ctx, uc.publisher, uc.log, events.HistoryImported, "", map[string]interface{}{
		"history":       len(entries),
		"conversations": len(conversations),
	})
	return nil
}

// ArchiveConversations 导出对话并上传到对象存储，返回对象名
func (uc *ExportUsecase) ArchiveConversations(ctx context.Context, ids []string) (string, error) {
	if uc.archive == nil {
		return "", domain.ErrArchiveDisabled
	}

	export, err := uc.ExportConversations(ctx, ids)
	if err != nil {
		return "", err
	}
	payload, err := uc.codec.EncodeConversations(export)
	if err != nil {
		return "", fmt.Errorf("encode archive: %w", err)
	}

	name := fmt.Sprintf("conversations-%s-%s.json", export.ExportedAt.Format("20060102T150405Z"), uuid.New().String()[:8])
	if err := uc.archive.Put(ctx, name, payload, "application/json"); err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrArchiveUpload, name, err)
	}

	uc.log.WithContext(ctx).Infof("archived %d conversations to %s", len(export.Conversations), name)
	return name, nil
}

func (uc *ExportUsecase) collect(ctx context.Context, ids []string) ([]*domain.Conversation, error) {
	all, err := uc.conversations.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return all, nil
	}
	return slices.DeleteFunc(all, func(c *domain.Conversation) bool {
		return !slices.Contains(ids, c.ID)
	}), nil
}

// remapIDs 拷贝对话并分配新ID，消息ID在对话内唯一故保留
func remapIDs(conversations []*domain.Conversation) []*domain.Conversation {
	out := make([]*domain.Conversation, 0, len(conversations))
	for _, c := range conversations {
		next := c.Clone()
		next.ID = uuid.New().String()
		out = append(out, next)
	}
	return out
}
