package data

import (
	"time"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
)

// ConversationDO 对话存储记录
type ConversationDO struct {
	ID            string      `json:"id"`
	CharacterID   string      `json:"characterId"`
	Title         string      `json:"title"`
	Scenario      string      `json:"scenario,omitempty"`
	Messages      []MessageDO `json:"messages"`
	StartedAt     time.Time   `json:"startedAt"`
	LastMessageAt time.Time   `json:"lastMessageAt"`
	IsFavorite    bool        `json:"isFavorite"`
	Tags          []string    `json:"tags"`
	Summary       string      `json:"summary,omitempty"`
	Metadata      MetadataDO  `json:"metadata"`
}

// MessageDO 消息存储记录
type MessageDO struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Emotion   string    `json:"emotion,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MetadataDO 对话元数据记录
type MetadataDO struct {
	TotalMessages       int          `json:"totalMessages"`
	AverageResponseTime float64      `json:"averageResponseTime"`
	EmotionalArc        []ArcPointDO `json:"emotionalArc"`
	KeyMoments          []string     `json:"keyMoments"`
}

// ArcPointDO 情感曲线点记录
type ArcPointDO struct {
	MessageIndex int       `json:"messageIndex"`
	Emotion      string    `json:"emotion"`
	Timestamp    time.Time `json:"timestamp"`
}

// HistoryEntryDO 历史条目记录
type HistoryEntryDO struct {
	ID                 string     `json:"id"`
	CharacterID        string     `json:"characterId"`
	Scenario           ScenarioDO `json:"scenario"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            time.Time  `json:"endTime"`
	MessageCount       int        `json:"messageCount"`
	EmotionProgression []string   `json:"emotionProgression"`
	Rating             *int       `json:"rating,omitempty"`
}

// ScenarioDO 场景记录
type ScenarioDO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// SettingsDO 设置记录，缺失的键解码为 nil 并回落到默认值
type SettingsDO struct {
	MaxHistoryCount    *int  `json:"maxHistoryCount,omitempty"`
	AutoSaveEnabled    *bool `json:"autoSaveEnabled,omitempty"`
	CompressionEnabled *bool `json:"compressionEnabled,omitempty"`
}

func toConversationDO(c *domain.Conversation) *ConversationDO {
	messages := make([]MessageDO, 0, len(c.Messages))
	for _, m := range c.Messages {
		messages = append(messages, MessageDO{
			ID:        m.ID,
			Text:      m.Text,
			Sender:    string(m.Sender),
			Emotion:   string(m.Emotion),
			Timestamp: m.Timestamp,
		})
	}
	arc := make([]ArcPointDO, 0, len(c.Metadata.EmotionalArc))
	for _, p := range c.Metadata.EmotionalArc {
		arc = append(arc, ArcPointDO{
			MessageIndex: p.MessageIndex,
			Emotion:      string(p.Emotion),
			Timestamp:    p.Timestamp,
		})
	}

	return &ConversationDO{
		ID:            c.ID,
		CharacterID:   c.CharacterID,
		Title:         c.Title,
		Scenario:      c.Scenario,
		Messages:      messages,
		StartedAt:     c.StartedAt,
		LastMessageAt: c.LastMessageAt,
		IsFavorite:    c.IsFavorite,
		Tags:          nonNilStrings(c.Tags),
		Summary:       c.Summary,
		Metadata: MetadataDO{
			TotalMessages:       c.Metadata.TotalMessages,
			AverageResponseTime: c.Metadata.AverageResponseTime,
			EmotionalArc:        arc,
			KeyMoments:          nonNilStrings(c.Metadata.KeyMoments),
		},
	}
}

func (do *ConversationDO) toDomain() *domain.Conversation {
	messages := make([]domain.Message, 0, len(do.Messages))
	for _, m := range do.Messages {
		emotion := domain.Emotion(m.Emotion)
		if emotion == "" {
			emotion = domain.EmotionNeutral
		}
		messages = append(messages, domain.Message{
			ID:        m.ID,
			Text:      m.Text,
			Sender:    domain.Sender(m.Sender),
			Emotion:   emotion,
			Timestamp: m.Timestamp,
		})
	}
	arc := make([]domain.EmotionalArcPoint, 0, len(do.Metadata.EmotionalArc))
	for _, p := range do.Metadata.EmotionalArc {
		arc = append(arc, domain.EmotionalArcPoint{
			MessageIndex: p.MessageIndex,
			Emotion:      domain.Emotion(p.Emotion),
			Timestamp:    p.Timestamp,
		})
	}

	return &domain.Conversation{
		ID:            do.ID,
		CharacterID:   do.CharacterID,
		Title:         do.Title,
		Scenario:      do.Scenario,
		Messages:      messages,
		StartedAt:     do.StartedAt,
		LastMessageAt: do.LastMessageAt,
		IsFavorite:    do.IsFavorite,
		Tags:          nonNilStrings(do.Tags),
		Summary:       do.Summary,
		Metadata: domain.ConversationMetadata{
			TotalMessages:       do.Metadata.TotalMessages,
			AverageResponseTime: do.Metadata.AverageResponseTime,
			EmotionalArc:        arc,
			KeyMoments:          nonNilStrings(do.Metadata.KeyMoments),
		},
	}
}

func toHistoryEntryDO(h *domain.HistoryEntry) HistoryEntryDO {
	progression := make([]string, 0, len(h.EmotionProgression))
	for _, e := range h.EmotionProgression {
		progression = append(progression, string(e))
	}
	return HistoryEntryDO{
		ID:          h.ID,
		CharacterID: h.CharacterID,
		Scenario: ScenarioDO{
			ID:          h.Scenario.ID,
			Title:       h.Scenario.Title,
			Description: h.Scenario.Description,
		},
		StartTime:          h.StartTime,
		EndTime:            h.EndTime,
		MessageCount:       h.MessageCount,
		EmotionProgression: progression,
		Rating:             h.Rating,
	}
}

func (do HistoryEntryDO) toDomain() *domain.HistoryEntry {
	progression := make([]domain.Emotion, 0, len(do.EmotionProgression))
	for _, e := range do.EmotionProgression {
		progression = append(progression, domain.Emotion(e))
	}
	return &domain.HistoryEntry{
		ID:          do.ID,
		CharacterID: do.CharacterID,
		Scenario: domain.Scenario{
			ID:          do.Scenario.ID,
			Title:       do.Scenario.Title,
			Description: do.Scenario.Description,
		},
		StartTime:          do.StartTime,
		EndTime:            do.EndTime,
		MessageCount:       do.MessageCount,
		EmotionProgression: progression,
		Rating:             do.Rating,
	}
}

func toSettingsDO(s *domain.HistorySettings) SettingsDO {
	maxCount := s.MaxHistoryCount
	autoSave := s.AutoSaveEnabled
	compression := s.CompressionEnabled
	return SettingsDO{
		MaxHistoryCount:    &maxCount,
		AutoSaveEnabled:    &autoSave,
		CompressionEnabled: &compression,
	}
}

func (do SettingsDO) toDomain() *domain.HistorySettings {
	settings := domain.DefaultHistorySettings()
	if do.MaxHistoryCount != nil {
		settings.MaxHistoryCount = *do.MaxHistoryCount
	}
	if do.AutoSaveEnabled != nil {
		settings.AutoSaveEnabled = *do.AutoSaveEnabled
	}
	if do.CompressionEnabled != nil {
		settings.CompressionEnabled = *do.CompressionEnabled
	}
	return &settings
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}
