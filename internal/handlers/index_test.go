package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-relay/internal/services"
)

func newTestIndex(t *testing.T) *IndexHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	staticDir := t.TempDir()
	err := os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>relay</html>"), 0o644)
	require.NoError(t, err)

	sessions := services.NewSessionStore(services.NewMemoryCache(), logger)
	return NewIndexHandler(staticDir, sessions, false, logger)
}

func TestIndexHandler_IssuesSessionCookie(t *testing.T) {
	handler := newTestIndex(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "relay")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestIndexHandler_ReusesValidSession(t *testing.T) {
	handler := newTestIndex(t)

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, first)
	issued := w1.Result().Cookies()[0]

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.AddCookie(issued)
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, second)

	assert.Empty(t, w2.Result().Cookies(), "a valid session should not be reissued")
}

func TestIndexHandler_ReplacesUnknownSession(t *testing.T) {
	handler := newTestIndex(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "not-a-session"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "not-a-session", cookies[0].Value)
}
