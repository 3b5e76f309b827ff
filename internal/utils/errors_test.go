package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	appErr := NewAppError(ErrNotFound, "Bubble not found", nil)
	assert.Equal(t, "Bubble not found", appErr.Error())

	wrapped := NewStorageError("Failed to persist bubble", errors.New("connection reset"))
	assert.Equal(t, ErrStorage, wrapped.Code)
	assert.Equal(t, "Failed to persist bubble: connection reset", wrapped.Error())
}

func TestIsErrorCode(t *testing.T) {
	appErr := NewAppError(ErrDuplicateVote, "Already voted", nil)
	assert.True(t, IsErrorCode(appErr, ErrDuplicateVote))
	assert.False(t, IsErrorCode(appErr, ErrForbidden))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrDuplicateVote))
}

func TestAppErrorToHTTPStatus(t *testing.T) {
	assert.Equal(t, 404, AppErrorToHTTPStatus(ErrNotFound))
	assert.Equal(t, 400, AppErrorToHTTPStatus(ErrInvalidInput))
	assert.Equal(t, 400, AppErrorToHTTPStatus(ErrDuplicateVote))
	assert.Equal(t, 403, AppErrorToHTTPStatus(ErrForbidden))
	assert.Equal(t, 500, AppErrorToHTTPStatus(ErrStorage))
	assert.Equal(t, 500, AppErrorToHTTPStatus("SOMETHING_ELSE"))
}
