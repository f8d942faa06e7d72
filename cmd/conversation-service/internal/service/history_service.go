package service

import (
	"context"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/biz"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
)

// HistoryService 历史记录与导出导入服务
type HistoryService struct {
	historyUc *biz.HistoryUsecase
	exportUc  *biz.ExportUsecase
}

// NewHistoryService 创建历史服务
func NewHistoryService(historyUc *biz.HistoryUsecase, exportUc *biz.ExportUsecase) *HistoryService {
	return &HistoryService{
		historyUc: historyUc,
		exportUc:  exportUc,
	}
}

// SaveSession 保存会话快照
func (s *HistoryService) SaveSession(ctx context.Context, snapshot domain.SessionSnapshot) (*domain.HistoryEntry, error) {
	return s.historyUc.Save(ctx, snapshot)
}

// ListHistory 读取历史
func (s *HistoryService) ListHistory(ctx context.Context) ([]*domain.HistoryEntry, error) {
	return s.historyUc.Load(ctx)
}

// DeleteHistoryEntry 删除历史条目
func (s *HistoryService) DeleteHistoryEntry(ctx context.Context, id string) error {
	return s.historyUc.DeleteEntry(ctx, id)
}

// HistoryByCharacter 指定角色的历史
func (s *HistoryService) HistoryByCharacter(ctx context.Context, characterID string) ([]*domain.HistoryEntry, error) {
	return s.historyUc.GetByCharacter(ctx, characterID)
}

// SearchHistory 搜索历史
func (s *HistoryService) SearchHistory(ctx context.Context, text string) ([]*domain.HistoryEntry, error) {
	return s.historyUc.Search(ctx, text)
}

// HistoryStats 历史统计
func (s *HistoryService) HistoryStats(ctx context.Context) (*domain.HistoryStats, error) {
	return s.historyUc.Stats(ctx)
}

// RateHistoryEntry 评分
func (s *HistoryService) RateHistoryEntry(ctx context.Context, id string, rating int) (*domain.HistoryEntry, error) {
	return s.historyUc.RateEntry(ctx, id, rating)
}

// ClearHistory 清空历史
func (s *HistoryService) ClearHistory(ctx context.Context) error {
	return s.historyUc.Clear(ctx)
}

// GetSettings 获取设置
func (s *HistoryService) GetSettings(ctx context.Context) (*domain.HistorySettings, error) {
	return s.historyUc.GetSettings(ctx)
}

// UpdateSettings 更新设置
func (s *HistoryService) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (*domain.HistorySettings, error) {
	return s.historyUc.UpdateSettings(ctx, patch)
}

// ExportConversations 导出对话
func (s *HistoryService) ExportConversations(ctx context.Context, ids []string) ([]byte, error) {
	return s.exportUc.EncodeConversations(ctx, ids)
}

// ImportConversations 导入对话
func (s *HistoryService) ImportConversations(ctx context.Context, payload []byte) (int, error) {
	return s.exportUc.ImportConversations(ctx, payload)
}

// ArchiveConversations 归档到对象存储
func (s *HistoryService) ArchiveConversations(ctx context.Context, ids []string) (string, error) {
	return s.exportUc.ArchiveConversations(ctx, ids)
}

// ExportHistory 导出历史
func (s *HistoryService) ExportHistory(ctx context.Context) ([]byte, error) {
	return s.exportUc.EncodeHistory(ctx)
}

// ImportHistory 导入历史
func (s *HistoryService) ImportHistory(ctx context.Context, payload []byte) error {
	return s.exportUc.ImportHistory(ctx, payload)
}
