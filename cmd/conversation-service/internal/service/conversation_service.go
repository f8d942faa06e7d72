package service

import (
	"context"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/biz"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
)

// ConversationService 对话服务实现
type ConversationService struct {
	conversationUc *biz.ConversationUsecase
	favoriteUc     *biz.FavoriteUsecase
	searchUc       *biz.SearchUsecase
	statsUc        *biz.StatsUsecase
	summaryUc      *biz.SummaryUsecase
}

// NewConversationService 创建对话服务
func NewConversationService(
	conversationUc *biz.ConversationUsecase,
	favoriteUc *biz.FavoriteUsecase,
	searchUc *biz.SearchUsecase,
	statsUc *biz.StatsUsecase,
	summaryUc *biz.SummaryUsecase,
) *ConversationService {
	return &ConversationService{
		conversationUc: conversationUc,
		favoriteUc:     favoriteUc,
		searchUc:       searchUc,
		statsUc:        statsUc,
		summaryUc:      summaryUc,
	}
}

// CreateConversation 创建对话
func (s *ConversationService) CreateConversation(ctx context.Context, characterID, scenario, title string) (*domain.Conversation, error) {
	return s.conversationUc.Create(ctx, characterID, scenario, title)
}

// GetConversation 获取对话
func (s *ConversationService) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.conversationUc.Get(ctx, id)
}

// UpdateConversation 更新对话
func (s *ConversationService) UpdateConversation(ctx context.Context, id string, patch domain.ConversationPatch) (*domain.Conversation, error) {
	return s.conversationUc.Update(ctx, id, patch)
}

// DeleteConversation 删除对话
func (s *ConversationService) DeleteConversation(ctx context.Context, id string) error {
	return s.conversationUc.Delete(ctx, id)
}

// ListConversations 列出对话，characterID 非空时按角色过滤
func (s *ConversationService) ListConversations(ctx context.Context, characterID string) ([]*domain.Conversation, error) {
	if characterID != "" {
		return s.conversationUc.ListByCharacter(ctx, characterID)
	}
	return s.conversationUc.List(ctx)
}

// AddMessage 追加消息
func (s *ConversationService) AddMessage(ctx context.Context, conversationID string, input domain.MessageInput) (*domain.Message, error) {
	return s.conversationUc.AddMessage(ctx, conversationID, input)
}

// UpdateMessage 更新消息
func (s *ConversationService) UpdateMessage(ctx context.Context, conversationID, messageID string, patch domain.MessagePatch) (*domain.Message, error) {
	return s.conversationUc.UpdateMessage(ctx, conversationID, messageID, patch)
}

// DeleteMessage 删除消息
func (s *ConversationService) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	return s.conversationUc.DeleteMessage(ctx, conversationID, messageID)
}

// AddTags 添加标签
func (s *ConversationService) AddTags(ctx context.Context, id string, tags []string) (*domain.Conversation, error) {
	return s.conversationUc.AddTags(ctx, id, tags...)
}

// RemoveTag 移除标签
func (s *ConversationService) RemoveTag(ctx context.Context, id, tag string) (*domain.Conversation, error) {
	return s.conversationUc.RemoveTag(ctx, id, tag)
}

// ToggleFavorite 切换收藏
func (s *ConversationService) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	return s.favoriteUc.Toggle(ctx, id)
}

// ListFavorites 列出收藏
func (s *ConversationService) ListFavorites(ctx context.Context) ([]*domain.Conversation, error) {
	return s.favoriteUc.List(ctx)
}

// SearchConversations 搜索对话
func (s *ConversationService) SearchConversations(ctx context.Context, query domain.SearchQuery) ([]*domain.Conversation, error) {
	return s.searchUc.Search(ctx, query)
}

// GetStats 对话统计
func (s *ConversationService) GetStats(ctx context.Context) (*domain.ConversationStats, error) {
	return s.statsUc.Stats(ctx)
}

// GenerateSummary 生成摘要
func (s *ConversationService) GenerateSummary(ctx context.Context, id string) (*domain.ConversationSummary, error) {
	return s.summaryUc.GenerateSummary(ctx, id)
}

// ClearAll 清空全部数据
func (s *ConversationService) ClearAll(ctx context.Context) error {
	return s.conversationUc.ClearAll(ctx)
}
