package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/observability"
)

// StatsUsecase 对话统计，每次调用全量扫描
type StatsUsecase struct {
	repo domain.ConversationRepository
	log  *log.Helper
}

// NewStatsUsecase 创建统计用例
func NewStatsUsecase(repo domain.ConversationRepository, logger log.Logger) *StatsUsecase {
	return &StatsUsecase{
		repo: repo,
		log:  log.NewHelper(log.With(logger, "module", "biz/stats")),
	}
}

// Stats 计算统计
func (uc *StatsUsecase) Stats(ctx context.Context) (stats *domain.ConversationStats, err error) {
	ctx, span := observability.StartSpan(ctx, "StatsUsecase.Stats")
	defer func() { observability.EndSpan(span, err) }()

	conversations, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats = &domain.ConversationStats{
		TotalConversations:  len(conversations),
		EmotionDistribution: make(map[domain.Emotion]int),
	}
	characterCounts := make(map[string]int)
	for _, c := range conversations {
		stats.TotalMessages += len(c.Messages)
		characterCounts[c.CharacterID]++
		for _, point := range c.Metadata.EmotionalArc {
			stats.EmotionDistribution[point.Emotion]++
		}
	}
	if stats.TotalConversations > 0 {
		stats.AverageLength = float64(stats.TotalMessages) / float64(stats.TotalConversations)
	}
	stats.FavoriteCharacter = mostFrequent(characterCounts)
	return stats, nil
}

// mostFrequent 出现次数最多的角色，次数相同取字典序最小的ID
func mostFrequent(counts map[string]int) string {
	var best string
	bestCount := 0
	for id, count := range counts {
		if count > bestCount || (count == bestCount && id < best) {
			best = id
			bestCount = count
		}
	}
	return best
}
