package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sender 消息发送方
type Sender string

const (
	SenderUser      Sender = "user"      // 用户
	SenderCharacter Sender = "character" // 角色
)

// Valid 检查发送方是否合法
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderCharacter
}

// Emotion 情感标签
type Emotion string

const (
	EmotionNeutral     Emotion = "neutral" // 默认情感
	EmotionHappy       Emotion = "happy"
	EmotionSad         Emotion = "sad"
	EmotionAngry       Emotion = "angry"
	EmotionSurprised   Emotion = "surprised"
	EmotionEmbarrassed Emotion = "embarrassed"
)

// IsExplicit 是否为显式的非默认情感
func (e Emotion) IsExplicit() bool {
	return e != "" && e != EmotionNeutral
}

// Message 消息实体，归属于唯一的对话
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Emotion   Emotion   `json:"emotion"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageInput 新消息的输入
type MessageInput struct {
	Text    string  `json:"text"`
	Sender  Sender  `json:"sender"`
	Emotion Emotion `json:"emotion,omitempty"`
}

// MessagePatch 消息局部更新
type MessagePatch struct {
	Text    *string  `json:"text,omitempty"`
	Emotion *Emotion `json:"emotion,omitempty"`
}

// NewMessage 创建消息，生成ID和时间戳
func NewMessage(input MessageInput, now time.Time) Message {
	emotion := input.Emotion
	if emotion == "" {
		emotion = EmotionNeutral
	}
	return Message{
		ID:        uuid.New().String(),
		Text:      input.Text,
		Sender:    input.Sender,
		Emotion:   emotion,
		Timestamp: now,
	}
}
