package biz

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/events"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/monitoring"
)

// HistoryUsecase 有界历史记录
//
// 历史按最新在前保存，长度不超过 MaxHistoryCount，插入时同步淘汰尾部。
type HistoryUsecase struct {
	repo      domain.HistoryRepository
	tx        domain.Transaction
	publisher events.Publisher
	log       *log.Helper
}

// NewHistoryUsecase 创建历史用例
func NewHistoryUsecase(
	repo domain.HistoryRepository,
	tx domain.Transaction,
	publisher events.Publisher,
	logger log.Logger,
) *HistoryUsecase {
	return &HistoryUsecase{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		log:       log.NewHelper(log.With(logger, "module", "biz/history")),
	}
}

// Save 保存会话快照
//
// 自动保存关闭时只构建条目，不写入存储。
func (uc *HistoryUsecase) Save(ctx context.Context, snapshot domain.SessionSnapshot) (*domain.HistoryEntry, error) {
	var (
		entry     *domain.HistoryEntry
		persisted bool
		length    int
	)
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		settings, err := uc.repo.GetSettings(ctx)
		if err != nil {
			return err
		}

		entry = domain.NewHistoryEntry(snapshot, settings.CompressionEnabled, nowFunc())
		if !settings.AutoSaveEnabled {
			return nil
		}

		entries, err := uc.repo.Load(ctx)
		if err != nil {
			return err
		}
		entries = truncate(append([]*domain.HistoryEntry{entry}, entries...), settings.MaxHistoryCount)
		if err := uc.repo.Save(ctx, entries); err != nil {
			return err
		}
		persisted = true
		length = len(entries)
		return nil
	})
	monitoring.ObserveOperation("history_save", err)
	if err != nil {
		return nil, fmt.Errorf("failed to save history: %w", err)
	}

	if persisted {
		monitoring.HistoryEntries.Set(float64(length))
		publishEvent(ctx, uc.publisher, uc.log, events.HistorySaved, entry.ID, map[string]interface{}{
			"characterId":  entry.CharacterID,
			"messageCount": entry.MessageCount,
		})
	} else {
		uc.log.WithContext(ctx).Debugf("auto save disabled, history entry %s not persisted", entry.ID)
	}
	return entry, nil
}

// Load 读取全部历史
func (uc *HistoryUsecase) Load(ctx context.Context) ([]*domain.HistoryEntry, error) {
	return uc.repo.Load(ctx)
}

// DeleteEntry 删除历史条目
func (uc *HistoryUsecase) DeleteEntry(ctx context.Context, id string) error {
	return uc.tx.InTx(ctx, func(ctx context.Context) error {
		entries, err := uc.repo.Load(ctx)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(entries, func(e *domain.HistoryEntry) bool { return e.ID == id })
		if idx < 0 {
			return domain.ErrHistoryEntryNotFound
		}
		return uc.repo.Save(ctx, slices.Delete(entries, idx, idx+1))
	})
}

// GetByCharacter 获取指定角色的历史
func (uc *HistoryUsecase) GetByCharacter(ctx context.Context, characterID string) ([]*domain.HistoryEntry, error) {
	entries, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(entries, func(e *domain.HistoryEntry) bool {
		return e.CharacterID != characterID
	}), nil
}

// Search 在场景标题和描述中做大小写无关的子串匹配
func (uc *HistoryUsecase) Search(ctx context.Context, text string) ([]*domain.HistoryEntry, error) {
	entries, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(text)
	return slices.DeleteFunc(entries, func(e *domain.HistoryEntry) bool {
		return !strings.Contains(strings.ToLower(e.Scenario.Title), needle) &&
			!strings.Contains(strings.ToLower(e.Scenario.Description), needle)
	}), nil
}

// Stats 历史统计
func (uc *HistoryUsecase) Stats(ctx context.Context) (*domain.HistoryStats, error) {
	entries, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.HistoryStats{
		TotalConversations:    len(entries),
		CharacterDistribution: make(map[string]int),
	}
	for _, e := range entries {
		stats.TotalMessages += e.MessageCount
		stats.CharacterDistribution[e.CharacterID]++
	}
	if stats.TotalConversations > 0 {
		stats.AverageMessagesPerConversation = float64(stats.TotalMessages) / float64(stats.TotalConversations)
	}
	return stats, nil
}

// GetSettings 获取设置
func (uc *HistoryUsecase) GetSettings(ctx context.Context) (*domain.HistorySettings, error) {
	return uc.repo.GetSettings(ctx)
}

// UpdateSettings 更新设置，上限调低时立即裁剪历史
func (uc *HistoryUsecase) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (*domain.HistorySettings, error) {
	var updated domain.HistorySettings
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := uc.repo.GetSettings(ctx)
		if err != nil {
			return err
		}

		updated = current.Merge(patch)
		if err := updated.Validate(); err != nil {
			return err
		}
		if err := uc.repo.SaveSettings(ctx, &updated); err != nil {
			return err
		}

		if updated.MaxHistoryCount >= current.MaxHistoryCount {
			return nil
		}
		entries, err := uc.repo.Load(ctx)
		if err != nil {
			return err
		}
		if len(entries) <= updated.MaxHistoryCount {
			return nil
		}
		uc.log.WithContext(ctx).Infof("trimming history from %d to %d entries", len(entries), updated.MaxHistoryCount)
		return uc.repo.Save(ctx, truncate(entries, updated.MaxHistoryCount))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RateEntry 为历史条目评分（1-5）
func (uc *HistoryUsecase) RateEntry(ctx context.Context, id string, rating int) (*domain.HistoryEntry, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	var rated *domain.HistoryEntry
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		entries, err := uc.repo.Load(ctx)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(entries, func(e *domain.HistoryEntry) bool { return e.ID == id })
		if idx < 0 {
			return domain.ErrHistoryEntryNotFound
		}

		rated = entries[idx].Clone()
		rated.Rating = &rating
		entries[idx] = rated
		return uc.repo.Save(ctx, entries)
	})
	if err != nil {
		return nil, err
	}
	return rated, nil
}

// Clear 清空历史，设置保留
func (uc *HistoryUsecase) Clear(ctx context.Context) error {
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		return uc.repo.Save(ctx, []*domain.HistoryEntry{})
	})
	if err == nil {
		monitoring.HistoryEntries.Set(0)
	}
	return err
}

func truncate(entries []*domain.HistoryEntry, limit int) []*domain.HistoryEntry {
	if limit < 0 {
		limit = 0
	}
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
