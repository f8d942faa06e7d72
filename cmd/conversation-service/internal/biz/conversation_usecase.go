package biz

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/events"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/monitoring"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/observability"
)

// ConversationUsecase 对话用例
type ConversationUsecase struct {
	repo       domain.ConversationRepository
	favorites  domain.FavoriteRepository
	tx         domain.Transaction
	cleaner    domain.StoreCleaner
	characters domain.CharacterDirectory
	publisher  events.Publisher
	log        *log.Helper
}

// NewConversationUsecase 创建对话用例
func NewConversationUsecase(
	repo domain.ConversationRepository,
	favorites domain.FavoriteRepository,
	tx domain.Transaction,
	cleaner domain.StoreCleaner,
	characters domain.CharacterDirectory,
	publisher events.Publisher,
	logger log.Logger,
) *ConversationUsecase {
	return &ConversationUsecase{
		repo:       repo,
		favorites:  favorites,
		tx:         tx,
		cleaner:    cleaner,
		characters: characters,
		publisher:  publisher,
		log:        log.NewHelper(log.With(logger, "module", "biz/conversation")),
	}
}

// Create 创建对话
//
// 写入失败时仍返回构建好的对话，同时返回包装了 ErrStorage 的错误，调用方可以决定是否重试。
func (uc *ConversationUsecase) Create(ctx context.Context, characterID, scenario, title string) (conversation *domain.Conversation, err error) {
	ctx, span := observability.StartSpan(ctx, "ConversationUsecase.Create", attribute.String("character_id", characterID))
	defer func() {
		observability.EndSpan(span, err)
		monitoring.ObserveOperation("create", err)
	}()

	if strings.TrimSpace(characterID) == "" {
		return nil, fmt.Errorf("%w: characterId is required", domain.ErrInvalidInput)
	}

	now := nowFunc()
	if title == "" {
		title = domain.DefaultTitle(uc.characters.DisplayName(characterID), scenario, now)
	}
	conversation = domain.NewConversation(characterID, scenario, title, now)

	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		return uc.repo.Save(ctx, conversation)
	})
	if err != nil {
		uc.log.WithContext(ctx).Errorf("persist conversation %s failed: %v", conversation.ID, err)
		return conversation, fmt.Errorf("failed to save conversation: %w", err)
	}

	publishEvent(ctx, uc.publisher, uc.log, events.ConversationCreated, conversation.ID, map[string]interface{}{
		"characterId": characterID,
		"scenario":    scenario,
	})
	return conversation, nil
}

// Get 获取对话
func (uc *ConversationUsecase) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	return uc.repo.Get(ctx, id)
}

// Update 浅合并更新对话
func (uc *ConversationUsecase) Update(ctx context.Context, id string, patch domain.ConversationPatch) (*domain.Conversation, error) {
	var updated *domain.Conversation
	err := uc.mutate(ctx, id, func(c *domain.Conversation) error {
		c.ApplyPatch(patch)
		updated = c
		return nil
	})
	monitoring.ObserveOperation("update", err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 删除对话并从收藏索引中移除
func (uc *ConversationUsecase) Delete(ctx context.Context, id string) error {
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := uc.repo.Get(ctx, id); err != nil {
			return err
		}
		if err := uc.repo.Delete(ctx, id); err != nil {
			return err
		}

		ids, err := uc.favorites.IDs(ctx)
		if err != nil {
			return err
		}
		if idx := slices.Index(ids, id); idx >= 0 {
			return uc.favorites.SaveIDs(ctx, slices.Delete(ids, idx, idx+1))
		}
		return nil
	})
	monitoring.ObserveOperation("delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}

	publishEvent(ctx, uc.publisher, uc.log, events.ConversationDeleted, id, nil)
	return nil
}

// AddMessage 追加消息
func (uc *ConversationUsecase) AddMessage(ctx context.Context, conversationID string, input domain.MessageInput) (*domain.Message, error) {
	if !input.Sender.Valid() {
		return nil, fmt.Errorf("%w: sender must be user or character", domain.ErrInvalidInput)
	}

	var msg domain.Message
	err := uc.mutate(ctx, conversationID, func(c *domain.Conversation) error {
		msg = c.AppendMessage(input, nowFunc())
		return nil
	})
	monitoring.ObserveOperation("add_message", err)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateMessage 更新消息
func (uc *ConversationUsecase) UpdateMessage(ctx context.Context, conversationID, messageID string, patch domain.MessagePatch) (*domain.Message, error) {
	var msg domain.Message
	err := uc.mutate(ctx, conversationID, func(c *domain.Conversation) error {
		updated, ok := c.UpdateMessage(messageID, patch)
		if !ok {
			return domain.ErrMessageNotFound
		}
		msg = updated
		return nil
	})
	monitoring.ObserveOperation("update_message", err)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage 删除消息
func (uc *ConversationUsecase) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	err := uc.mutate(ctx, conversationID, func(c *domain.Conversation) error {
		if !c.RemoveMessage(messageID) {
			return domain.ErrMessageNotFound
		}
		return nil
	})
	monitoring.ObserveOperation("delete_message", err)
	return err
}

// List 列出所有对话（最新创建在前）
func (uc *ConversationUsecase) List(ctx context.Context) ([]*domain.Conversation, error) {
	return uc.repo.List(ctx)
}

// ListByCharacter 列出指定角色的对话
func (uc *ConversationUsecase) ListByCharacter(ctx context.Context, characterID string) ([]*domain.Conversation, error) {
	conversations, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Conversation, 0, len(conversations))
	for _, c := range conversations {
		if c.CharacterID == characterID {
			result = append(result, c)
		}
	}
	return result, nil
}

// AddTags 添加标签
func (uc *ConversationUsecase) AddTags(ctx context.Context, id string, tags ...string) (*domain.Conversation, error) {
	var updated *domain.Conversation
	err := uc.mutate(ctx, id, func(c *domain.Conversation) error {
		c.AddTags(tags...)
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveTag 移除标签，标签不存在时不报错
func (uc *ConversationUsecase) RemoveTag(ctx context.Context, id, tag string) (*domain.Conversation, error) {
	var updated *domain.Conversation
	err := uc.mutate(ctx, id, func(c *domain.Conversation) error {
		c.RemoveTag(tag)
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ClearAll 清空全部数据（对话、收藏、历史和设置）
func (uc *ConversationUsecase) ClearAll(ctx context.Context) error {
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		return uc.cleaner.Clear(ctx)
	})
	monitoring.ObserveOperation("clear_all", err)
	if err != nil {
		return err
	}

	uc.log.WithContext(ctx).Warn("all conversation data cleared")
	publishEvent(ctx, uc.publisher, uc.log, events.ConversationsCleared, "", nil)
	return nil
}

// mutate 读取、拷贝、修改后整体写回
func (uc *ConversationUsecase) mutate(ctx context.Context, id string, fn func(c *domain.Conversation) error) error {
	return uc.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := uc.repo.Get(ctx, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		return uc.repo.Save(ctx, next)
	})
}
