package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConversationNotFound 对话未找到
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrMessageNotFound 消息未找到
	ErrMessageNotFound = errors.New("message not found")

	// ErrHistoryEntryNotFound 历史条目未找到
	ErrHistoryEntryNotFound = errors.New("history entry not found")

	// ErrStorage 存储读写失败
	ErrStorage = errors.New("storage unavailable")

	// ErrCorruptRecord 存储记录无法解码，属于 ErrStorage
	ErrCorruptRecord = fmt.Errorf("%w: corrupt record", ErrStorage)

	// ErrImportFailed 导入数据格式错误，消息固定不变
	ErrImportFailed = errors.New("import failed: invalid data format")

	// ErrSummarization 摘要服务失败
	ErrSummarization = errors.New("summarization failed")

	// ErrInvalidRating 评分超出范围
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidSettings 设置无效
	ErrInvalidSettings = errors.New("invalid history settings")

	// ErrInvalidInput 参数无效
	ErrInvalidInput = errors.New("invalid input")

	// ErrArchiveDisabled 未配置归档存储
	ErrArchiveDisabled = errors.New("archive storage is not configured")

	// ErrArchiveUpload 归档上传失败
	ErrArchiveUpload = errors.New("archive upload failed")
)
