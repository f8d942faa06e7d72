package biz

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/monitoring"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/observability"
)

const (
	maxKeyTopics   = 5
	excerptRunes   = 50
	insightsPrefix = "主な感情: "
)

// SummaryUsecase 摘要协调
type SummaryUsecase struct {
	repo       domain.ConversationRepository
	tx         domain.Transaction
	summarizer domain.Summarizer
	log        *log.Helper
}

// NewSummaryUsecase 创建摘要用例
func NewSummaryUsecase(
	repo domain.ConversationRepository,
	tx domain.Transaction,
	summarizer domain.Summarizer,
	logger log.Logger,
) *SummaryUsecase {
	return &SummaryUsecase{
		repo:       repo,
		tx:         tx,
		summarizer: summarizer,
		log:        log.NewHelper(log.With(logger, "module", "biz/summary")),
	}
}

// GenerateSummary 生成摘要
//
// 没有消息时返回 (nil, nil) 且不调用摘要服务；摘要服务失败时对话保持不变。
func (uc *SummaryUsecase) GenerateSummary(ctx context.Context, conversationID string) (summary *domain.ConversationSummary, err error) {
	ctx, span := observability.StartSpan(ctx, "SummaryUsecase.GenerateSummary", attribute.String("conversation_id", conversationID))
	defer func() {
		observability.EndSpan(span, err)
		monitoring.ObserveOperation("summarize", err)
	}()

	conversation, err := uc.repo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(conversation.Messages) == 0 {
		return nil, nil
	}

	start := time.Now()
	text, err := uc.summarizer.Summarize(ctx, conversation.Messages)
	status := "success"
	if err != nil {
		status = "error"
	}
	monitoring.SummarizerDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		uc.log.WithContext(ctx).Errorf("summarize conversation %s failed: %v", conversationID, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrSummarization, err)
	}

	summary = &domain.ConversationSummary{
		ConversationID:      conversationID,
		Summary:             text,
		KeyTopics:           keyTopics(conversation.Messages[0].Text),
		EmotionalHighlights: emotionalHighlights(conversation.Messages),
		CharacterInsights:   insightsPrefix + string(dominantEmotion(conversation.Messages)),
		GeneratedAt:         nowFunc(),
	}

	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := uc.repo.Get(ctx, conversationID)
		if err != nil {
			return err
		}
		next := current.Clone()
		next.Summary = text
		return uc.repo.Save(ctx, next)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store summary: %w", err)
	}
	return summary, nil
}

// topicSeparators 除空白外的分词标点
const topicSeparators = "、。！？，,.!?"

// keyTopics 取最早一条消息中前几个不重复的词，按空白和句读切分。
// 不含标点的日文长句整体视为一个词。
func keyTopics(text string) []string {
	topics := make([]string, 0, maxKeyTopics)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(topicSeparators, r)
	})
	for _, word := range words {
		if slices.Contains(topics, word) {
			continue
		}
		topics = append(topics, word)
		if len(topics) == maxKeyTopics {
			break
		}
	}
	return topics
}

func emotionalHighlights(messages []domain.Message) []domain.EmotionalHighlight {
	highlights := make([]domain.EmotionalHighlight, 0)
	for _, m := range messages {
		if !m.Emotion.IsExplicit() {
			continue
		}
		highlights = append(highlights, domain.EmotionalHighlight{
			MessageID: m.ID,
			Emotion:   m.Emotion,
			Excerpt:   excerpt(m.Text),
			Timestamp: m.Timestamp,
		})
	}
	return highlights
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes]) + "..."
}

// dominantEmotion 出现次数最多的情感，次数相同取最先出现的
func dominantEmotion(messages []domain.Message) domain.Emotion {
	counts := make(map[domain.Emotion]int)
	var order []domain.Emotion
	for _, m := range messages {
		emotion := m.Emotion
		if emotion == "" {
			emotion = domain.EmotionNeutral
		}
		if counts[emotion] == 0 {
			order = append(order, emotion)
		}
		counts[emotion]++
	}

	dominant := domain.EmotionNeutral
	best := 0
	for _, emotion := range order {
		if counts[emotion] > best {
			dominant = emotion
			best = counts[emotion]
		}
	}
	return dominant
}
