package server

import (
	"errors"
	"net/http"
	"testing"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "tweet ID", humanizeParam("tweetId"))
	assert.Equal(t, "parent tweet ID", humanizeParam("parentTweetId"))
	assert.Equal(t, "username", humanizeParam("username"))
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewUnauthorizedError("who"), http.StatusUnauthorized},
		{models.NewForbiddenError("no"), http.StatusForbidden},
		{models.NewNotFoundError("Tweet", 1), http.StatusNotFound},
		{models.NewConflictError("dup"), http.StatusConflict},
		{models.NewInternalError(errors.New("db")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapServiceError(tt.err), tt.err.Error())
	}
}

func TestIsUserFacing(t *testing.T) {
	assert.True(t, isUserFacing(models.NewValidationError("x")))
	assert.True(t, isUserFacing(models.NewConflictError("x")))
	assert.False(t, isUserFacing(models.NewInternalError(errors.New("x"))))
	assert.Equal(t, "Something went wrong", userMessage(errors.New("raw")))
}
