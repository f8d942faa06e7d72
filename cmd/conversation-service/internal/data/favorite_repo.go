package data

import (
	"context"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
)

// FavoriteRepository 收藏索引仓储
type FavoriteRepository struct {
	data *Data
}

// NewFavoriteRepository 创建收藏索引仓储
func NewFavoriteRepository(data *Data) domain.FavoriteRepository {
	return &FavoriteRepository{data: data}
}

// IDs 获取收藏的对话ID，索引不存在时返回空列表
func (r *FavoriteRepository) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := r.data.getJSON(ctx, favoritesKey, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// SaveIDs 覆盖收藏索引
func (r *FavoriteRepository) SaveIDs(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return r.data.setJSON(ctx, favoritesKey, ids)
}
