package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.get(t, "/health/ready")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"])
	assert.Equal(t, "healthy", body.Checks["redis"])

	env.mr.Close()
	resp = env.get(t, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMiddleware_HeadersAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tweets", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	resp := env.do(t, req)
	assert.Equal(t, "http://localhost:8080", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))

	resp = env.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("kaput") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body models.ErrorResponse
	require.NoError(t, decodeBody(resp, &body))
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, models.CodeInternal, body.Code)
	assert.Empty(t, body.Details)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
