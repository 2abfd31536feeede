package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorError(t *testing.T) {
	e := New(CodePlanError, "total below cpu count")
	assert.Equal(t, "[PLAN_ERROR] total below cpu count", e.Error())

	wrapped := Wrap(CodeDatabaseError, "save shard run", stderrors.New("connection refused"))
	assert.Equal(t, "[DATABASE_ERROR] save shard run: connection refused", wrapped.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := Wrap(CodeStorageError, "upload", cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestAppErrorIsByCode(t *testing.T) {
	err := Wrap(CodePlanError, "thread_cnt invalid", nil)
	assert.True(t, IsPlanError(err))
	assert.False(t, IsWorkerError(err))
	assert.True(t, stderrors.Is(err, ErrPlanError))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, CodeWorkerError, GetErrorCode(New(CodeWorkerError, "panic in worker")))
	assert.Equal(t, CodeUnknown, GetErrorCode(stderrors.New("plain")))
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "panic in worker", GetErrorMessage(New(CodeWorkerError, "panic in worker")))
	assert.Equal(t, "plain", GetErrorMessage(stderrors.New("plain")))
	assert.Equal(t, "", GetErrorMessage(nil))
}

func TestWrappedCodeSurvivesChain(t *testing.T) {
	inner := Wrap(CodeDatabaseError, "ping", stderrors.New("timeout"))
	outer := Wrap(CodeStorageError, "persist artifact", inner)

	assert.True(t, IsStorageError(outer))
	assert.True(t, IsDatabaseError(outer))
	assert.Equal(t, CodeStorageError, GetErrorCode(outer))
}
