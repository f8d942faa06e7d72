package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/sony/gobreaker"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	pkgerrors "github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/errors"
)

// Response 统一响应格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Reason  string      `json:"reason,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// NoContent 无内容响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应
func Error(c *gin.Context, err error) {
	ErrorWithData(c, err, nil)
}

// ErrorWithData 错误响应并附带部分结果
func ErrorWithData(c *gin.Context, err error, data interface{}) {
	_ = c.Error(err)
	apiErr := toAPIError(err)
	c.JSON(int(apiErr.Code), Response{
		Code:    pkgerrors.GetErrorCode(apiErr),
		Message: apiErr.Message,
		Reason:  apiErr.Reason,
		Data:    data,
	})
}

// toAPIError 把领域错误映射为 kratos 错误
func toAPIError(err error) *kerrors.Error {
	var apiErr *kerrors.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		return pkgerrors.ErrConversationNotFound
	case errors.Is(err, domain.ErrMessageNotFound):
		return pkgerrors.ErrMessageNotFound
	case errors.Is(err, domain.ErrHistoryEntryNotFound):
		return pkgerrors.ErrHistoryEntryNotFound
	case errors.Is(err, domain.ErrImportFailed):
		// 导入错误对外只暴露固定消息
		return pkgerrors.NewImportFailed(domain.ErrImportFailed.Error())
	case errors.Is(err, domain.ErrInvalidRating):
		return pkgerrors.ErrInvalidRating
	case errors.Is(err, domain.ErrInvalidSettings):
		return pkgerrors.ErrInvalidSettings
	case errors.Is(err, domain.ErrArchiveDisabled):
		return pkgerrors.ErrArchiveDisabled
	case errors.Is(err, domain.ErrInvalidInput):
		return pkgerrors.NewInvalidParameter(err.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return pkgerrors.ErrCircuitBreakerOpen
	case errors.Is(err, domain.ErrSummarization):
		return pkgerrors.ErrSummarizerFailed
	case errors.Is(err, domain.ErrArchiveUpload):
		return pkgerrors.Wrap(pkgerrors.ErrArchiveUploadFailed, err)
	case errors.Is(err, domain.ErrCorruptRecord):
		return pkgerrors.ErrStorageCorrupted
	case errors.Is(err, domain.ErrStorage):
		return pkgerrors.ErrStorageUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.ErrRequestTimeout
	default:
		return pkgerrors.ErrInternalServerError
	}
}

// bindError 区分请求体格式错误与字段校验失败
func bindError(err error) *kerrors.Error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return pkgerrors.Wrap(pkgerrors.ErrBadRequest, err)
	}
	return pkgerrors.Wrap(pkgerrors.ErrValidationFailed, err)
}
