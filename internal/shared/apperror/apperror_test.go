package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dayflow-hrms/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("plain error maps to internal error", func(t *testing.T) {
		got := apperror.ToHTTP(errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, "INTERNAL_ERROR", got.Code)
		assert.Equal(t, "Internal server error", got.Message)
	})

	t.Run("app error keeps code and message", func(t *testing.T) {
		got := apperror.ToHTTP(apperror.Conflict("already checked in"))
		assert.Equal(t, http.StatusConflict, got.Status)
		assert.Equal(t, apperror.CodeConflict, got.Code)
		assert.Equal(t, "already checked in", got.Message)
	})

	t.Run("wrapped app error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("service: %w", apperror.NotFound("leave not found"))
		got := apperror.ToHTTP(err)
		assert.Equal(t, http.StatusNotFound, got.Status)
		assert.Equal(t, "leave not found", got.Message)
	})
}

func TestMapValidationError(t *testing.T) {
	type payload struct {
		StartDate string `validate:"required"`
		Email     string `validate:"email"`
	}

	v := validator.New()

	err := apperror.MapValidationError(v.Struct(payload{Email: "x@y.z"}))
	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Startdate is required", appErr.Message)

	err = apperror.MapValidationError(v.Struct(payload{StartDate: "2026-01-01", Email: "nope"}))
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Email is invalid", appErr.Message)

	err = apperror.MapValidationError(errors.New("eof"))
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
}
