package domain

import "time"

// 导出格式版本
const (
	ConversationExportVersion = "1.0"
	HistoryExportVersion      = "1.0"
)

// ConversationExport 对话导出信封
type ConversationExport struct {
	Version       string          `json:"version"`
	ExportedAt    time.Time       `json:"exportedAt"`
	Conversations []*Conversation `json:"conversations"`
}

// HistoryExport 历史导出信封
type HistoryExport struct {
	Version       string          `json:"version"`
	ExportedAt    time.Time       `json:"exportedAt"`
	History       []*HistoryEntry `json:"history"`
	Conversations []*Conversation `json:"conversations"`
	Settings      HistorySettings `json:"settings"`
}
