package biz

import (
	"context"
	"slices"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/monitoring"
)

// FavoriteUsecase 收藏管理
//
// 收藏索引与对话上的 IsFavorite 字段在同一临界区内更新。
type FavoriteUsecase struct {
	repo      domain.ConversationRepository
	favorites domain.FavoriteRepository
	tx        domain.Transaction
	log       *log.Helper
}

// NewFavoriteUsecase 创建收藏用例
func NewFavoriteUsecase(
	repo domain.ConversationRepository,
	favorites domain.FavoriteRepository,
	tx domain.Transaction,
	logger log.Logger,
) *FavoriteUsecase {
	return &FavoriteUsecase{
		repo:      repo,
		favorites: favorites,
		tx:        tx,
		log:       log.NewHelper(log.With(logger, "module", "biz/favorite")),
	}
}

// Toggle 切换收藏状态，返回切换后的状态
func (uc *FavoriteUsecase) Toggle(ctx context.Context, id string) (bool, error) {
	var favorite bool
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := uc.repo.Get(ctx, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		next.IsFavorite = !next.IsFavorite
		if err := uc.repo.Save(ctx, next); err != nil {
			return err
		}

		ids, err := uc.favorites.IDs(ctx)
		if err != nil {
			return err
		}
		idx := slices.Index(ids, id)
		switch {
		case next.IsFavorite && idx < 0:
			ids = append(ids, id)
		case !next.IsFavorite && idx >= 0:
			ids = slices.Delete(ids, idx, idx+1)
		}
		if err := uc.favorites.SaveIDs(ctx, ids); err != nil {
			return err
		}

		favorite = next.IsFavorite
		return nil
	})
	monitoring.ObserveOperation("toggle_favorite", err)
	return favorite, err
}

// List 列出收藏的对话，无法解析的ID跳过
func (uc *FavoriteUsecase) List(ctx context.Context) ([]*domain.Conversation, error) {
	ids, err := uc.favorites.IDs(ctx)
	if err != nil {
		return nil, err
	}

	conversations := make([]*domain.Conversation, 0, len(ids))
	for _, id := range ids {
		conversation, err := uc.repo.Get(ctx, id)
		if err != nil {
			uc.log.WithContext(ctx).Warnf("skip favorite %s: %v", id, err)
			continue
		}
		conversations = append(conversations, conversation)
	}
	return conversations, nil
}
