package errors

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

// 错误码规范：
// - 1xxxx: 通用错误（HTTP 4xx）
// - 2xxxx: 业务逻辑错误
// - 3xxxx: 数据访问错误
// - 4xxxx: 外部服务错误
// - 5xxxx: 系统级错误（HTTP 5xx）

// ==================== 通用错误 (10000-19999) ====================

const (
	CodeBadRequest       = 10000
	CodeNotFound         = 10003
	CodeValidationFailed = 10005
	CodeRequestTimeout   = 10007
	CodeInvalidParameter = 10100
)

// ==================== 业务逻辑错误 (20000-29999) ====================

const (
	// 对话相关 (20000-20099)
	CodeConversationNotFound = 20000
	CodeMessageNotFound      = 20001
	CodeHistoryEntryNotFound = 20002

	// 导入导出相关 (20100-20199)
	CodeImportFailed    = 20100
	CodeInvalidRating   = 20101
	CodeInvalidSettings = 20102
	CodeArchiveDisabled = 20103

	// 摘要相关 (20200-20299)
	CodeSummarizationFailed = 20200
)

// ==================== 数据访问错误 (30000-39999) ====================

const (
	CodeStorageError  = 30000
	CodeStorageDecode = 30001
)

// ==================== 外部服务错误 (40000-49999) ====================

const (
	CodeServiceUnavailable = 40001
	CodeCircuitBreakerOpen = 40003
	CodeMinIOError         = 40102
)

// ==================== 系统错误 (50000-59999) ====================

const (
	CodeInternalServerError = 50000
)

// ==================== 错误构造函数 ====================

// NewBusinessError 创建业务错误（2xxxx）
func NewBusinessError(status, code int, message string) *errors.Error {
	return errors.New(status, fmt.Sprintf("BIZ_%d", code), message)
}

// NewDataError 创建数据访问错误（3xxxx）
func NewDataError(code int, message string) *errors.Error {
	return errors.New(503, fmt.Sprintf("DATA_%d", code), message)
}

// NewServiceError 创建服务错误（4xxxx）
func NewServiceError(code int, message string) *errors.Error {
	return errors.New(503, fmt.Sprintf("SVC_%d", code), message)
}

// NewSystemError 创建系统错误（5xxxx）
func NewSystemError(code int, message string) *errors.Error {
	return errors.New(500, fmt.Sprintf("SYS_%d", code), message)
}

// ==================== 错误判断函数 ====================

// GetErrorCode 获取错误码，非 kratos 错误返回 0
func GetErrorCode(err error) int {
	e := errors.FromError(err)
	if e == nil {
		return 0
	}
	for _, prefix := range []string{"BIZ_%d", "DATA_%d", "SVC_%d", "SYS_%d", "GEN_%d"} {
		var code int
		if n, _ := fmt.Sscanf(e.Reason, prefix, &code); n == 1 {
			return code
		}
	}
	return 0
}
