package biz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
)

func TestSummaryUsecase_EmptyConversationShortCircuits(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conversation, err := env.conversation.Create(ctx, "aoi", "", "empty")
	require.NoError(t, err)

	summary, err := env.summary.GenerateSummary(ctx, conversation.ID)
	assert.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, 0, env.summarizer.calls)
}

func TestSummaryUsecase_Success(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conversation, err := env.conversation.Create(ctx, "aoi", "", "chat")
	require.NoError(t, err)
	long := strings.Repeat("あ", 60)
	_, err = env.conversation.AddMessage(ctx, conversation.ID, domain.MessageInput{
		Text: "today school today lunch park music extra", Sender: domain.SenderUser,
	})
	require.NoError(t, err)
	_, err = env.conversation.AddMessage(ctx, conversation.ID, domain.MessageInput{
		Text: long, Sender: domain.SenderCharacter, Emotion: domain.EmotionHappy,
	})
	require.NoError(t, err)
	_, err = env.conversation.AddMessage(ctx, conversation.ID, domain.MessageInput{
		Text: "yay", Sender: domain.SenderCharacter, Emotion: domain.EmotionHappy,
	})
	require.NoError(t, err)

	var received int
	env.summarizer.SummarizeFunc = func(ctx context.Context, transcript []domain.Message) (string, error) {
		received = len(transcript)
		return "学校の話", nil
	}

	summary, err := env.summary.GenerateSummary(ctx, conversation.ID)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 3, received)
	assert.Equal(t, "学校の話", summary.Summary)
	assert.Equal(t, []string{"today", "school", "lunch", "park", "music"}, summary.KeyTopics)
	require.Len(t, summary.EmotionalHighlights, 2)
	assert.Equal(t, strings.Repeat("あ", 50)+"...", summary.EmotionalHighlights[0].Excerpt)
	assert.Equal(t, "yay", summary.EmotionalHighlights[1].Excerpt)
	assert.Equal(t, "主な感情: happy", summary.CharacterInsights)

	// 摘要文本写回对话
	stored, err := env.conversation.Get(ctx, conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, "学校の話", stored.Summary)
}

func TestSummaryUsecase_FailureLeavesConversation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conversation, err := env.conversation.Create(ctx, "aoi", "", "chat")
	require.NoError(t, err)
	_, err = env.conversation.AddMessage(ctx, conversation.ID, domain.MessageInput{Text: "hi", Sender: domain.SenderUser})
	require.NoError(t, err)

	env.summarizer.SummarizeFunc = func(ctx context.Context, transcript []domain.Message) (string, error) {
		return "", errors.New("upstream 500")
	}

	summary, err := env.summary.GenerateSummary(ctx, conversation.ID)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, domain.ErrSummarization)

	stored, err := env.conversation.Get(ctx, conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Summary)
}

func TestSummaryUsecase_MissingConversation(t *testing.T) {
	env := newTestEnv()

	_, err := env.summary.GenerateSummary(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestDominantEmotion(t *testing.T) {
	messages := []domain.Message{
		{Emotion: domain.EmotionSad},
		{Emotion: domain.EmotionHappy},
		{Emotion: domain.EmotionSad},
		{Emotion: ""},
	}
	assert.Equal(t, domain.EmotionSad, dominantEmotion(messages))
	assert.Equal(t, domain.EmotionNeutral, dominantEmotion(nil))
}

func TestKeyTopics(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"movie night movie popcorn", []string{"movie", "night", "popcorn"}},
		{"映画、ポップコーン。映画！どう？", []string{"映画", "ポップコーン", "どう"}},
		{"一 二、三。四！五？六", []string{"一", "二", "三", "四", "五"}},
		{"今日はいい天気ですね", []string{"今日はいい天気ですね"}},
		{"、。 ", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, keyTopics(tt.text), tt.text)
	}
}
