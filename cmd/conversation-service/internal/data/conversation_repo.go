package data

import (
	"context"
	"errors"
	"slices"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
)

// ConversationRepository 对话仓储实现
//
// 每个对话存为 conversation_<id>，目录键 conversation_history 按创建时间倒序保存全部ID。
type ConversationRepository struct {
	data *Data
	log  *log.Helper
}

// NewConversationRepository 创建对话仓储
func NewConversationRepository(data *Data, logger log.Logger) domain.ConversationRepository {
	return &ConversationRepository{
		data: data,
		log:  log.NewHelper(log.With(logger, "module", "data/conversation")),
	}
}

// Save 写入对话，新对话登记到目录头部
func (r *ConversationRepository) Save(ctx context.Context, conversation *domain.Conversation) error {
	if err := r.data.setJSON(ctx, conversationKey(conversation.ID), toConversationDO(conversation)); err != nil {
		return err
	}

	ids, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, conversation.ID) {
		return nil
	}
	return r.data.setJSON(ctx, catalogKey, append([]string{conversation.ID}, ids...))
}

// Get 获取对话
func (r *ConversationRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	var do ConversationDO
	found, err := r.data.getJSON(ctx, conversationKey(id), &do)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrConversationNotFound
	}
	return do.toDomain(), nil
}

// Delete 删除对话并从目录移除
func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	if err := r.data.remove(ctx, conversationKey(id)); err != nil {
		return err
	}

	ids, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	idx := slices.Index(ids, id)
	if idx < 0 {
		return nil
	}
	return r.data.setJSON(ctx, catalogKey, slices.Delete(ids, idx, idx+1))
}

// List 列出所有对话，损坏或缺失的记录跳过
func (r *ConversationRepository) List(ctx context.Context) ([]*domain.Conversation, error) {
	ids, err := r.catalog(ctx)
	if err != nil {
		return nil, err
	}

	conversations := make([]*domain.Conversation, 0, len(ids))
	for _, id := range ids {
		conversation, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrConversationNotFound) {
				r.log.WithContext(ctx).Warnf("catalog references missing conversation %s", id)
			} else {
				r.log.WithContext(ctx).Errorf("skip unreadable conversation %s: %v", id, err)
			}
			continue
		}
		conversations = append(conversations, conversation)
	}
	return conversations, nil
}

// ReplaceAll 删除现有对话后按给定顺序写入新集合
func (r *ConversationRepository) ReplaceAll(ctx context.Context, conversations []*domain.Conversation) error {
	existing, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	for _, id := range existing {
		if err := r.data.remove(ctx, conversationKey(id)); err != nil {
			return err
		}
	}

	ids := make([]string, 0, len(conversations))
	for _, conversation := range conversations {
		if err := r.data.setJSON(ctx, conversationKey(conversation.ID), toConversationDO(conversation)); err != nil {
			return err
		}
		ids = append(ids, conversation.ID)
	}
	return r.data.setJSON(ctx, catalogKey, ids)
}

func (r *ConversationRepository) catalog(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := r.data.getJSON(ctx, catalogKey, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
