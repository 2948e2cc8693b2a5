// Package game holds the in-memory room registry, the per-room
// narrative state, and the AI narration gateway. Everything here is
// ephemeral: a process restart loses all rooms and narrative.
package game

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultRoom is where sessions point before their first join and
	// after leaving a room.
	DefaultRoom = "main_adventure"

	// MaxNarrativeLength bounds each room's narrative state. Truncation
	// keeps the most recent characters and happens only after an
	// append, never mid-update.
	MaxNarrativeLength = 5000

	// SeedNarrative opens every freshly created room.
	SeedNarrative = "A new party forms. What adventures await?"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// NormalizeRoomID canonicalizes a room identifier: trimmed, lowercased,
// internal whitespace runs collapsed to single underscores. Empty input
// resolves to the default room.
func NormalizeRoomID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	id = whitespaceRuns.ReplaceAllString(id, "_")
	if id == "" {
		return DefaultRoom
	}
	return id
}

// room is the registry's internal record. Membership is keyed by
// session id, not display name, so two connections sharing a name
// occupy separate slots.
type room struct {
	narrative string
	players   map[string]string // session id -> display name
	updatedAt time.Time
}

// RoomSnapshot is a read-only view of a room.
type RoomSnapshot struct {
	ID        string
	Players   int
	UpdatedAt time.Time
}

// RoomInfo summarizes a room for listings and broadcasts.
type RoomInfo struct {
	Players   int       `json:"players"`
	UpdatedAt time.Time `json:"last_updated"`
}

// Registry maps room identifiers to narrative state and membership.
// All methods normalize the room id before lookup. The registry is an
// injectable instance rather than package state so tests can run
// against isolated copies.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	locks  *KeyedLock
	logger *slog.Logger
	now    func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*room),
		locks:  NewKeyedLock(),
		logger: logger,
		now:    time.Now,
	}
}

// GetOrCreate lazily materializes the room, seeding its narrative, and
// returns a snapshot.
func (r *Registry) GetOrCreate(roomID string) RoomSnapshot {
	id := NormalizeRoomID(roomID)

	r.mu.Lock()
	defer r.mu.Unlock()
	rm := r.getOrCreateLocked(id)
	return RoomSnapshot{ID: id, Players: len(rm.players), UpdatedAt: rm.updatedAt}
}

func (r *Registry) getOrCreateLocked(id string) *room {
	rm, ok := r.rooms[id]
	if !ok {
		rm = &room{
			narrative: SeedNarrative,
			players:   make(map[string]string),
			updatedAt: r.now(),
		}
		r.rooms[id] = rm
		r.logger.Debug("Room created", "room", id)
	}
	return rm
}

// AddPlayer adds the session to the room's membership, creating the
// room if needed.
func (r *Registry) AddPlayer(roomID, sessionID, name string) {
	id := NormalizeRoomID(roomID)

	r.mu.Lock()
	defer r.mu.Unlock()
	rm := r.getOrCreateLocked(id)
	rm.players[sessionID] = name
	rm.updatedAt = r.now()
}

// RemovePlayer removes the session from the room's membership and
// reports whether the room was deleted. A room is deleted the moment
// its player set becomes empty; no room persists with zero members.
func (r *Registry) RemovePlayer(roomID, sessionID string) bool {
	id := NormalizeRoomID(roomID)

	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok {
		return false
	}
	delete(rm.players, sessionID)
	rm.updatedAt = r.now()
	if len(rm.players) == 0 {
		delete(r.rooms, id)
		r.logger.Debug("Room deleted", "room", id)
		return true
	}
	return false
}

// PlayerNames returns the room's current display names, sorted.
func (r *Registry) PlayerNames(roomID string) []string {
	id := NormalizeRoomID(roomID)

	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[id]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(rm.players))
	for _, name := range rm.players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListRooms returns a mapping of room id to player count and
// last-updated timestamp for every live room.
func (r *Registry) ListRooms() map[string]RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make(map[string]RoomInfo, len(r.rooms))
	for id, rm := range r.rooms {
		rooms[id] = RoomInfo{Players: len(rm.players), UpdatedAt: rm.updatedAt}
	}
	return rooms
}

// AppendNarrative appends text to the room's narrative state, then
// truncates the state to its most recent MaxNarrativeLength characters.
// A read never observes a partial append.
func (r *Registry) AppendNarrative(roomID, text string) {
	id := NormalizeRoomID(roomID)

	r.mu.Lock()
	defer r.mu.Unlock()
	rm := r.getOrCreateLocked(id)
	rm.narrative = tailRunes(rm.narrative+"\n"+text, MaxNarrativeLength)
	rm.updatedAt = r.now()
}

// ReadNarrative returns up to the last maxChars characters of the
// room's narrative state. A maxChars of zero or less returns all of it.
// Absent rooms read as empty.
func (r *Registry) ReadNarrative(roomID string, maxChars int) string {
	id := NormalizeRoomID(roomID)

	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[id]
	if !ok {
		return ""
	}
	if maxChars > 0 {
		return tailRunes(rm.narrative, maxChars)
	}
	return rm.narrative
}

// tailRunes returns the trailing max characters of s. Cuts land on
// rune boundaries; a byte slice could open a window mid-character.
func tailRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[len(runes)-max:])
}

// AcquireNarration takes the room's exclusive narration lock. Callers
// are served FIFO; the returned release func is safe to call on every
// exit path.
func (r *Registry) AcquireNarration(ctx context.Context, roomID string) (func(), error) {
	return r.locks.Acquire(ctx, NormalizeRoomID(roomID))
}
