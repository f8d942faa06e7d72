package data

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
)

// conversationEnvelope 对话导出信封，conversations 为指针以区分缺失和空数组
type conversationEnvelope struct {
	Version       string            `json:"version"`
	ExportedAt    time.Time         `json:"exportedAt"`
	Conversations *[]ConversationDO `json:"conversations"`
}

// historyEnvelope 历史导出信封
type historyEnvelope struct {
	Version       string            `json:"version"`
	ExportedAt    time.Time         `json:"exportedAt"`
	History       *[]HistoryEntryDO `json:"history"`
	Conversations *[]ConversationDO `json:"conversations"`
	Settings      *SettingsDO       `json:"settings,omitempty"`
}

// ExportCodec JSON 导出编解码
type ExportCodec struct{}

// NewExportCodec 创建编解码器
func NewExportCodec() domain.ExportCodec {
	return &ExportCodec{}
}

// EncodeConversations 编码对话导出
func (c *ExportCodec) EncodeConversations(export *domain.ConversationExport) ([]byte, error) {
	conversations := toConversationDOs(export.Conversations)
	return json.Marshal(conversationEnvelope{
		Version:       export.Version,
		ExportedAt:    export.ExportedAt,
		Conversations: &conversations,
	})
}

// DecodeConversations 解码并校验对话导出，失败统一返回 ErrImportFailed
func (c *ExportCodec) DecodeConversations(payload []byte) (*domain.ConversationExport, error) {
	var envelope conversationEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrImportFailed, err)
	}
	if envelope.Conversations == nil {
		return nil, fmt.Errorf("%w: missing conversations array", domain.ErrImportFailed)
	}

	return &domain.ConversationExport{
		Version:       envelope.Version,
		ExportedAt:    envelope.ExportedAt,
		Conversations: fromConversationDOs(*envelope.Conversations),
	}, nil
}

// EncodeHistory 编码历史导出
func (c *ExportCodec) EncodeHistory(export *domain.HistoryExport) ([]byte, error) {
	history := make([]HistoryEntryDO, 0, len(export.History))
	for _, entry := range export.History {
		history = append(history, toHistoryEntryDO(entry))
	}
	conversations := toConversationDOs(export.Conversations)
	settings := toSettingsDO(&export.Settings)

	return json.Marshal(historyEnvelope{
		Version:       export.Version,
		ExportedAt:    export.ExportedAt,
		History:       &history,
		Conversations: &conversations,
		Settings:      &settings,
	})
}

// DecodeHistory 解码并校验历史导出
//
// history 和 conversations 数组必须存在，settings 缺失时使用默认值。
func (c *ExportCodec) DecodeHistory(payload []byte) (*domain.HistoryExport, error) {
	var envelope historyEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrImportFailed, err)
	}
	if envelope.History == nil {
		return nil, fmt.Errorf("%w: missing history array", domain.ErrImportFailed)
	}
	if envelope.Conversations == nil {
		return nil, fmt.Errorf("%w: missing conversations array", domain.ErrImportFailed)
	}

	settings := domain.DefaultHistorySettings()
	if envelope.Settings != nil {
		settings = *envelope.Settings.toDomain()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrImportFailed, err)
	}

	history := make([]*domain.HistoryEntry, 0, len(*envelope.History))
	for _, do := range *envelope.History {
		history = append(history, do.toDomain())
	}

	return &domain.HistoryExport{
		Version:       envelope.Version,
		ExportedAt:    envelope.ExportedAt,
		History:       history,
		Conversations: fromConversationDOs(*envelope.Conversations),
		Settings:      settings,
	}, nil
}

func toConversationDOs(conversations []*domain.Conversation) []ConversationDO {
	dos := make([]ConversationDO, 0, len(conversations))
	for _, conversation := range conversations {
		dos = append(dos, *toConversationDO(conversation))
	}
	return dos
}

func fromConversationDOs(dos []ConversationDO) []*domain.Conversation {
	conversations := make([]*domain.Conversation, 0, len(dos))
	for i := range dos {
		conversations = append(conversations, dos[i].toDomain())
	}
	return conversations
}
