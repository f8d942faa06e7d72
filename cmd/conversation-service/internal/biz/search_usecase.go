package biz

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/observability"
)

// SearchUsecase 对话搜索
//
// 先过滤、再稳定排序、最后分页。
type SearchUsecase struct {
	repo domain.ConversationRepository
	log  *log.Helper
}

// NewSearchUsecase 创建搜索用例
func NewSearchUsecase(repo domain.ConversationRepository, logger log.Logger) *SearchUsecase {
	return &SearchUsecase{
		repo: repo,
		log:  log.NewHelper(log.With(logger, "module", "biz/search")),
	}
}

// Search 搜索对话
func (uc *SearchUsecase) Search(ctx context.Context, query domain.SearchQuery) (result []*domain.Conversation, err error) {
	ctx, span := observability.StartSpan(ctx, "SearchUsecase.Search",
		attribute.String("sort_by", string(query.SortBy)),
		attribute.Int("limit", query.Limit),
	)
	defer func() { observability.EndSpan(span, err) }()

	conversations, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Conversation, 0, len(conversations))
	needle := strings.ToLower(query.Query)
	for _, c := range conversations {
		if matchesText(c, needle) && matchesFilters(c, query.Filters) {
			matched = append(matched, c)
		}
	}

	sortConversations(matched, query.SortBy, query.SortOrder)
	result = paginate(matched, query.Offset, query.Limit)

	uc.log.WithContext(ctx).Debugf("search %q matched %d of %d conversations", query.Query, len(matched), len(conversations))
	return result, nil
}

// matchesText 标题或任意消息文本包含关键字
func matchesText(c *domain.Conversation, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Title), needle) {
		return true
	}
	for _, m := range c.Messages {
		if strings.Contains(strings.ToLower(m.Text), needle) {
			return true
		}
	}
	return false
}

func matchesFilters(c *domain.Conversation, f domain.SearchFilters) bool {
	if f.CharacterID != "" && c.CharacterID != f.CharacterID {
		return false
	}
	if f.IsFavorite != nil && c.IsFavorite != *f.IsFavorite {
		return false
	}
	if len(f.Emotions) > 0 && !slices.ContainsFunc(c.Metadata.EmotionalArc, func(p domain.EmotionalArcPoint) bool {
		return slices.Contains(f.Emotions, p.Emotion)
	}) {
		return false
	}
	if f.MinLength != nil && len(c.Messages) < *f.MinLength {
		return false
	}
	if f.MaxLength != nil && len(c.Messages) > *f.MaxLength {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, c.HasTag) {
		return false
	}
	return true
}

func sortConversations(conversations []*domain.Conversation, field domain.SortField, order domain.SortOrder) {
	var compare func(a, b *domain.Conversation) int
	switch field {
	case domain.SortByStartedAt:
		compare = func(a, b *domain.Conversation) int { return a.StartedAt.Compare(b.StartedAt) }
	case domain.SortByTitle:
		compare = func(a, b *domain.Conversation) int { return strings.Compare(a.Title, b.Title) }
	case domain.SortByMessageCount:
		compare = func(a, b *domain.Conversation) int { return cmp.Compare(len(a.Messages), len(b.Messages)) }
	default:
		compare = func(a, b *domain.Conversation) int { return a.LastMessageAt.Compare(b.LastMessageAt) }
	}

	if order == domain.SortAsc {
		slices.SortStableFunc(conversations, compare)
		return
	}
	slices.SortStableFunc(conversations, func(a, b *domain.Conversation) int { return compare(b, a) })
}

func paginate(conversations []*domain.Conversation, offset, limit int) []*domain.Conversation {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(conversations) {
		return []*domain.Conversation{}
	}
	end := len(conversations)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return conversations[offset:end]
}
