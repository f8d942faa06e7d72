package errors

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

// Common errors
var (
	ErrBadRequest          = errors.BadRequest(fmt.Sprintf("GEN_%d", CodeBadRequest), "Bad request")
	ErrNotFound            = errors.NotFound(fmt.Sprintf("GEN_%d", CodeNotFound), "Resource not found")
	ErrValidationFailed    = errors.BadRequest(fmt.Sprintf("GEN_%d", CodeValidationFailed), "Validation failed")
	ErrRequestTimeout      = errors.New(504, fmt.Sprintf("GEN_%d", CodeRequestTimeout), "Request timeout")
	ErrInternalServerError = NewSystemError(CodeInternalServerError, "Internal server error")
)

// Conversation errors
var (
	ErrConversationNotFound = NewBusinessError(404, CodeConversationNotFound, "conversation not found")
	ErrMessageNotFound      = NewBusinessError(404, CodeMessageNotFound, "message not found")
	ErrHistoryEntryNotFound = NewBusinessError(404, CodeHistoryEntryNotFound, "history entry not found")
	ErrInvalidRating        = NewBusinessError(400, CodeInvalidRating, "rating must be between 1 and 5")
	ErrInvalidSettings      = NewBusinessError(400, CodeInvalidSettings, "invalid history settings")
	ErrArchiveDisabled      = NewBusinessError(501, CodeArchiveDisabled, "archive storage is not configured")
)

// Data and service errors
var (
	ErrStorageUnavailable  = NewDataError(CodeStorageError, "storage unavailable")
	ErrStorageCorrupted    = NewDataError(CodeStorageDecode, "stored record is corrupted")
	ErrSummarizerFailed    = NewServiceError(CodeSummarizationFailed, "summarizer unavailable")
	ErrServiceNotReady     = NewServiceError(CodeServiceUnavailable, "service not ready")
	ErrCircuitBreakerOpen  = NewServiceError(CodeCircuitBreakerOpen, "circuit breaker is open")
	ErrArchiveUploadFailed = NewServiceError(CodeMinIOError, "archive upload failed")
)

// NewImportFailed 导入失败错误，消息保持调用方给定的固定文本
func NewImportFailed(message string) *errors.Error {
	return NewBusinessError(400, CodeImportFailed, message)
}

// NewInvalidParameter 参数错误
func NewInvalidParameter(message string) *errors.Error {
	return errors.BadRequest(fmt.Sprintf("GEN_%d", CodeInvalidParameter), message)
}

// Wrap 为 kratos 错误附加原始原因
func Wrap(e *errors.Error, cause error) *errors.Error {
	if cause == nil {
		return e
	}
	return e.WithCause(cause)
}
