package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultScenarioLabel 未指定场景时标题中使用的场景名
const DefaultScenarioLabel = "フリートーク"

// Conversation 对话聚合根，包含全部消息
//
// Conversation 按值语义使用：修改前先 Clone，再整体写回存储。
type Conversation struct {
	ID            string               `json:"id"`
	CharacterID   string               `json:"characterId"`
	Title         string               `json:"title"`
	Scenario      string               `json:"scenario,omitempty"`
	Messages      []Message            `json:"messages"`
	StartedAt     time.Time            `json:"startedAt"`
	LastMessageAt time.Time            `json:"lastMessageAt"`
	IsFavorite    bool                 `json:"isFavorite"`
	Tags          []string             `json:"tags"`
	Summary       string               `json:"summary,omitempty"`
	Metadata      ConversationMetadata `json:"metadata"`
}

// ConversationMetadata 对话统计元数据
type ConversationMetadata struct {
	TotalMessages int `json:"totalMessages"`
	// AverageResponseTime 用户消息到下一条角色回复的平均间隔（毫秒）
	AverageResponseTime float64             `json:"averageResponseTime"`
	EmotionalArc        []EmotionalArcPoint `json:"emotionalArc"`
	KeyMoments          []string            `json:"keyMoments"`
}

// EmotionalArcPoint 情感曲线上的一个点
type EmotionalArcPoint struct {
	MessageIndex int       `json:"messageIndex"`
	Emotion      Emotion   `json:"emotion"`
	Timestamp    time.Time `json:"timestamp"`
}

// ConversationPatch 对话浅合并更新，nil 字段保持不变
//
// 收藏状态不在此处修改，由收藏管理维护。
type ConversationPatch struct {
	Title         *string               `json:"title,omitempty"`
	Scenario      *string               `json:"scenario,omitempty"`
	Tags          *[]string             `json:"tags,omitempty"`
	Summary       *string               `json:"summary,omitempty"`
	Metadata      *ConversationMetadata `json:"metadata,omitempty"`
	LastMessageAt *time.Time            `json:"lastMessageAt,omitempty"`
}

// NewConversation 创建对话
func NewConversation(characterID, scenario, title string, now time.Time) *Conversation {
	return &Conversation{
		ID:            uuid.New().String(),
		CharacterID:   characterID,
		Title:         title,
		Scenario:      scenario,
		Messages:      []Message{},
		StartedAt:     now,
		LastMessageAt: now,
		IsFavorite:    false,
		Tags:          []string{},
		Metadata: ConversationMetadata{
			EmotionalArc: []EmotionalArcPoint{},
			KeyMoments:   []string{},
		},
	}
}

// DefaultTitle 生成默认标题 "<角色> との <场景> <日期>"
func DefaultTitle(characterName, scenario string, startedAt time.Time) string {
	if scenario == "" {
		scenario = DefaultScenarioLabel
	}
	return fmt.Sprintf("%s との %s %s", characterName, scenario, startedAt.Format("2006/1/2"))
}

// Clone 深拷贝
func (c *Conversation) Clone() *Conversation {
	out := *c
	out.Messages = append([]Message{}, c.Messages...)
	out.Tags = append([]string{}, c.Tags...)
	out.Metadata.EmotionalArc = append([]EmotionalArcPoint{}, c.Metadata.EmotionalArc...)
	out.Metadata.KeyMoments = append([]string{}, c.Metadata.KeyMoments...)
	return &out
}

// AppendMessage 追加消息并更新元数据
func (c *Conversation) AppendMessage(input MessageInput, now time.Time) Message {
	msg := NewMessage(input, now)
	c.Messages = append(c.Messages, msg)
	c.Metadata.TotalMessages++

	if input.Emotion.IsExplicit() {
		c.Metadata.EmotionalArc = append(c.Metadata.EmotionalArc, EmotionalArcPoint{
			MessageIndex: len(c.Messages) - 1,
			Emotion:      input.Emotion,
			Timestamp:    now,
		})
	}

	c.LastMessageAt = now
	c.Metadata.AverageResponseTime = averageResponseTime(c.Messages)
	return msg
}

// UpdateMessage 局部更新消息，不改写已记录的情感曲线
func (c *Conversation) UpdateMessage(messageID string, patch MessagePatch) (Message, bool) {
	for i := range c.Messages {
		if c.Messages[i].ID != messageID {
			continue
		}
		if patch.Text != nil {
			c.Messages[i].Text = *patch.Text
		}
		if patch.Emotion != nil {
			c.Messages[i].Emotion = *patch.Emotion
		}
		return c.Messages[i], true
	}
	return Message{}, false
}

// RemoveMessage 删除消息，情感曲线保持不变
func (c *Conversation) RemoveMessage(messageID string) bool {
	for i := range c.Messages {
		if c.Messages[i].ID != messageID {
			continue
		}
		c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
		if c.Metadata.TotalMessages > 0 {
			c.Metadata.TotalMessages--
		}
		c.Metadata.AverageResponseTime = averageResponseTime(c.Messages)
		return true
	}
	return false
}

// ApplyPatch 浅合并
func (c *Conversation) ApplyPatch(patch ConversationPatch) {
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Scenario != nil {
		c.Scenario = *patch.Scenario
	}
	if patch.Tags != nil {
		c.Tags = append([]string{}, (*patch.Tags)...)
	}
	if patch.Summary != nil {
		c.Summary = *patch.Summary
	}
	if patch.Metadata != nil {
		c.Metadata = *patch.Metadata
	}
	if patch.LastMessageAt != nil {
		c.LastMessageAt = *patch.LastMessageAt
	}
}

// AddTags 添加标签（去重）
func (c *Conversation) AddTags(tags ...string) {
	for _, tag := range tags {
		if tag == "" || c.HasTag(tag) {
			continue
		}
		c.Tags = append(c.Tags, tag)
	}
}

// RemoveTag 移除标签
func (c *Conversation) RemoveTag(tag string) bool {
	for i, t := range c.Tags {
		if t == tag {
			c.Tags = append(c.Tags[:i], c.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// HasTag 是否包含标签
func (c *Conversation) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// averageResponseTime 计算用户消息与紧随其后的角色回复之间的平均间隔（毫秒）
func averageResponseTime(messages []Message) float64 {
	var total time.Duration
	var pairs int
	for i := 1; i < len(messages); i++ {
		if messages[i-1].Sender == SenderUser && messages[i].Sender == SenderCharacter {
			total += messages[i].Timestamp.Sub(messages[i-1].Timestamp)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(total.Milliseconds()) / float64(pairs)
}
