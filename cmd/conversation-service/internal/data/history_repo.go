package data

import (
	"context"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
)

// HistoryRepository 历史记录仓储
type HistoryRepository struct {
	data *Data
}

// NewHistoryRepository 创建历史记录仓储
func NewHistoryRepository(data *Data) domain.HistoryRepository {
	return &HistoryRepository{data: data}
}

// Load 读取历史，最新在前
func (r *HistoryRepository) Load(ctx context.Context) ([]*domain.HistoryEntry, error) {
	var dos []HistoryEntryDO
	if _, err := r.data.getJSON(ctx, historyKey, &dos); err != nil {
		return nil, err
	}

	entries := make([]*domain.HistoryEntry, 0, len(dos))
	for _, do := range dos {
		entries = append(entries, do.toDomain())
	}
	return entries, nil
}

// Save 覆盖历史
func (r *HistoryRepository) Save(ctx context.Context, entries []*domain.HistoryEntry) error {
	dos := make([]HistoryEntryDO, 0, len(entries))
	for _, entry := range entries {
		dos = append(dos, toHistoryEntryDO(entry))
	}
	return r.data.setJSON(ctx, historyKey, dos)
}

// GetSettings 读取设置
func (r *HistoryRepository) GetSettings(ctx context.Context) (*domain.HistorySettings, error) {
	var do SettingsDO
	if _, err := r.data.getJSON(ctx, settingsKey, &do); err != nil {
		return nil, err
	}
	return do.toDomain(), nil
}

// SaveSettings 覆盖设置
func (r *HistoryRepository) SaveSettings(ctx context.Context, settings *domain.HistorySettings) error {
	return r.data.setJSON(ctx, settingsKey, toSettingsDO(settings))
}
