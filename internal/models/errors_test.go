package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError(cause)

	assert.Equal(t, "Internal server error: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "tweet 7 not found", NewNotFoundError("tweet", 7).Error())
}

func TestIsCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewForbiddenError("nope"))

	assert.True(t, IsCode(wrapped, CodeForbidden))
	assert.False(t, IsCode(wrapped, CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeForbidden))
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		wantCode    string
		wantDetails string
	}{
		{"validation", NewValidationError("content is required"), http.StatusBadRequest, CodeValidation, ""},
		{"conflict with cause", &AppError{Code: CodeConflict, Message: "taken", Err: errors.New("dup")}, http.StatusConflict, CodeConflict, "dup"},
		{"internal hides cause", NewInternalError(errors.New("secret dsn")), http.StatusInternalServerError, CodeInternal, ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return RespondWithError(c, tt.status, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out ErrorResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.wantCode, out.Code)
			assert.Equal(t, tt.wantDetails, out.Details)
		})
	}
}
