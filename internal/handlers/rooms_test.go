package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-relay/internal/game"
)

func TestRoomsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := game.NewRegistry(logger)
	registry.AddPlayer("lost cave", "sid-1", "Rin")
	registry.AddPlayer("lost_cave", "sid-2", "Tor")
	registry.AddPlayer("tavern", "sid-3", "Bram")

	handler := NewRoomsHandler(registry, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var rooms map[string]game.RoomInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, 2, rooms["lost_cave"].Players)
	assert.Equal(t, 1, rooms["tavern"].Players)
}

func TestRoomsHandler_MethodNotAllowed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewRoomsHandler(game.NewRegistry(logger), logger)

	req := httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
