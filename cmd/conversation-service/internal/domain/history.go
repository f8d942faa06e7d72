package domain

import (
	"time"

	"github.com/google/uuid"
)

// 历史设置默认值
const (
	DefaultMaxHistoryCount    = 50
	DefaultAutoSaveEnabled    = true
	DefaultCompressionEnabled = true
)

// Scenario 场景信息
type Scenario struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// HistoryEntry 会话历史的轻量快照，不含消息正文
type HistoryEntry struct {
	ID                 string    `json:"id"`
	CharacterID        string    `json:"characterId"`
	Scenario           Scenario  `json:"scenario"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	MessageCount       int       `json:"messageCount"`
	EmotionProgression []Emotion `json:"emotionProgression"`
	Rating             *int      `json:"rating,omitempty"`
}

// SessionSnapshot 结束时的会话快照
type SessionSnapshot struct {
	CharacterID string    `json:"characterId"`
	Scenario    Scenario  `json:"scenario"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Messages    []Message `json:"messages"`
}

// HistorySettings 历史记录设置
type HistorySettings struct {
	MaxHistoryCount    int  `json:"maxHistoryCount"`
	AutoSaveEnabled    bool `json:"autoSaveEnabled"`
	CompressionEnabled bool `json:"compressionEnabled"`
}

// SettingsPatch 设置局部更新
type SettingsPatch struct {
	MaxHistoryCount    *int  `json:"maxHistoryCount,omitempty"`
	AutoSaveEnabled    *bool `json:"autoSaveEnabled,omitempty"`
	CompressionEnabled *bool `json:"compressionEnabled,omitempty"`
}

// HistoryStats 历史统计
type HistoryStats struct {
	TotalConversations             int            `json:"totalConversations"`
	TotalMessages                  int            `json:"totalMessages"`
	AverageMessagesPerConversation float64        `json:"averageMessagesPerConversation"`
	CharacterDistribution          map[string]int `json:"characterDistribution"`
}

// DefaultHistorySettings 默认设置
func DefaultHistorySettings() HistorySettings {
	return HistorySettings{
		MaxHistoryCount:    DefaultMaxHistoryCount,
		AutoSaveEnabled:    DefaultAutoSaveEnabled,
		CompressionEnabled: DefaultCompressionEnabled,
	}
}

// Merge 合并局部更新
func (s HistorySettings) Merge(patch SettingsPatch) HistorySettings {
	if patch.MaxHistoryCount != nil {
		s.MaxHistoryCount = *patch.MaxHistoryCount
	}
	if patch.AutoSaveEnabled != nil {
		s.AutoSaveEnabled = *patch.AutoSaveEnabled
	}
	if patch.CompressionEnabled != nil {
		s.CompressionEnabled = *patch.CompressionEnabled
	}
	return s
}

// Validate 校验设置
func (s HistorySettings) Validate() error {
	if s.MaxHistoryCount < 1 {
		return ErrInvalidSettings
	}
	return nil
}

// NewHistoryEntry 从会话快照构建历史条目
//
// compress 为 true 时合并情感序列中连续重复的情感。
func NewHistoryEntry(snapshot SessionSnapshot, compress bool, now time.Time) *HistoryEntry {
	progression := make([]Emotion, 0, len(snapshot.Messages))
	for _, m := range snapshot.Messages {
		emotion := m.Emotion
		if emotion == "" {
			emotion = EmotionNeutral
		}
		if compress && len(progression) > 0 && progression[len(progression)-1] == emotion {
			continue
		}
		progression = append(progression, emotion)
	}

	start := snapshot.StartTime
	if start.IsZero() && len(snapshot.Messages) > 0 {
		start = snapshot.Messages[0].Timestamp
	}
	if start.IsZero() {
		start = now
	}
	end := snapshot.EndTime
	if end.IsZero() {
		end = now
	}

	return &HistoryEntry{
		ID:                 uuid.New().String(),
		CharacterID:        snapshot.CharacterID,
		Scenario:           snapshot.Scenario,
		StartTime:          start,
		EndTime:            end,
		MessageCount:       len(snapshot.Messages),
		EmotionProgression: progression,
	}
}

// Clone 深拷贝
func (h *HistoryEntry) Clone() *HistoryEntry {
	out := *h
	out.EmotionProgression = append([]Emotion{}, h.EmotionProgression...)
	if h.Rating != nil {
		rating := *h.Rating
		out.Rating = &rating
	}
	return &out
}
