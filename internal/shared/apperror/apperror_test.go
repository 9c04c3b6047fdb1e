package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-leave/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps status and code", func(t *testing.T) {
		err := apperror.New(apperror.CodeInvalidState, "bad state", http.StatusBadRequest)

		got := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.Equal(t, apperror.CodeInvalidState, got.Code)
		assert.Equal(t, "bad state", got.Message)
	})

	t.Run("wrapped app error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("transition: %w", apperror.ErrForbidden)

		got := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusForbidden, got.Status)
		assert.Equal(t, apperror.CodeForbidden, got.Code)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := apperror.ToHTTP(errors.New("pq: connection reset"))

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, apperror.CodeInternalError, got.Code)
		assert.NotContains(t, got.Message, "connection reset")
	})
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperror.ErrNotFound)

	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
	assert.False(t, apperror.HasCode(err, apperror.CodeForbidden))
	assert.False(t, apperror.HasCode(errors.New("x"), apperror.CodeNotFound))
}

func TestWrap(t *testing.T) {
	cause := errors.New("lock_not_available")
	err := apperror.Wrap(cause, apperror.CodeTransientConflict, "busy", http.StatusConflict)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "busy: lock_not_available", err.Error())
	assert.Nil(t, apperror.Wrap(nil, apperror.CodeConflict, "x", http.StatusConflict))
}
