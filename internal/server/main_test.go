package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"murmur/internal/config"
	"murmur/internal/models"
	"murmur/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type recordingPusher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingPusher) Push(_ context.Context, _ models.Subscription, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

type testEnv struct {
	server *Server
	app    *fiber.App
	mr     *miniredis.Miniredis
	pusher *recordingPusher
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:               "0",
		Env:                "test",
		AllowedOrigins:     "http://localhost:8080",
		FeatureFlags:       "push_broadcast=on",
		JWTSecret:          testSecret,
		SessionTTLHours:    1,
		UploadDir:          t.TempDir(),
		AvatarMaxUploadMB:  1,
		AvatarMaxDimension: 64,
		PushTimeoutSeconds: 2,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	pusher := &recordingPusher{}
	s := NewServerWithDeps(testConfig(t), testutil.NewDB(t), rdb, pusher)

	return &testEnv{server: s, app: s.NewApp(), mr: mr, pusher: pusher}
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) form(t *testing.T, method, path string, values url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req, cookies...)
}

func (e *testEnv) json(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req, cookies...)
}

func (e *testEnv) get(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

// signUp registers and logs in, returning the session cookie.
func (e *testEnv) signUp(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	resp := e.form(t, http.MethodPost, "/register", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp = e.form(t, http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	session := cookieNamed(resp, sessionCookieName)
	require.NotNil(t, session, "login sets the session cookie")
	return session
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}

func flashOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	c := cookieNamed(resp, flashCookieName)
	if c == nil {
		return ""
	}
	msg, err := base64.RawURLEncoding.DecodeString(c.Value)
	require.NoError(t, err)
	return string(msg)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
