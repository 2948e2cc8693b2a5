package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/adventure-relay/internal/game"
)

// RoomsHandler serves the live room listing.
type RoomsHandler struct {
	registry *game.Registry
	logger   *slog.Logger
}

func NewRoomsHandler(registry *game.Registry, logger *slog.Logger) *RoomsHandler {
	return &RoomsHandler{
		registry: registry,
		logger:   logger,
	}
}

func (h *RoomsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.registry.ListRooms()); err != nil {
		h.logger.Error("Error encoding rooms response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
