package domain

import "time"

// ConversationSummary 对话摘要
type ConversationSummary struct {
	ConversationID      string               `json:"conversationId"`
	Summary             string               `json:"summary"`
	KeyTopics           []string             `json:"keyTopics"`
	EmotionalHighlights []EmotionalHighlight `json:"emotionalHighlights"`
	CharacterInsights   string               `json:"characterInsights"`
	GeneratedAt         time.Time            `json:"generatedAt"`
}

// EmotionalHighlight 带有非默认情感的消息摘录
type EmotionalHighlight struct {
	MessageID string    `json:"messageId"`
	Emotion   Emotion   `json:"emotion"`
	Excerpt   string    `json:"excerpt"`
	Timestamp time.Time `json:"timestamp"`
}
