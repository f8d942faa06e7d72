package errors

import (
	stderrors "errors"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/stretchr/testify/assert"
)

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, CodeConversationNotFound, GetErrorCode(ErrConversationNotFound))
	assert.Equal(t, CodeStorageError, GetErrorCode(ErrStorageUnavailable))
	assert.Equal(t, CodeBadRequest, GetErrorCode(ErrBadRequest))
	assert.Equal(t, 0, GetErrorCode(nil))
}

func TestCatalogStatus(t *testing.T) {
	tests := []struct {
		err    *errors.Error
		status int32
		code   int
	}{
		{ErrNotFound, 404, CodeNotFound},
		{ErrValidationFailed, 400, CodeValidationFailed},
		{ErrStorageCorrupted, 503, CodeStorageDecode},
		{ErrServiceNotReady, 503, CodeServiceUnavailable},
		{ErrArchiveUploadFailed, 503, CodeMinIOError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.Code, tt.err.Reason)
		assert.Equal(t, tt.code, GetErrorCode(tt.err), tt.err.Reason)
	}
}

func TestImportFailedKeepsMessage(t *testing.T) {
	e := NewImportFailed("import failed: invalid data format")
	assert.Equal(t, int32(400), e.Code)
	assert.Equal(t, "import failed: invalid data format", e.Message)
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("redis: connection refused")
	e := Wrap(ErrStorageUnavailable, cause)

	assert.ErrorIs(t, e, cause)
	assert.Equal(t, int32(503), errors.FromError(e).Code)
}
