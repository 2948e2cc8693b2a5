package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/jwebster45206/adventure-relay/internal/game"
	"github.com/jwebster45206/adventure-relay/pkg/actor"
	"github.com/jwebster45206/adventure-relay/pkg/dice"
	"github.com/jwebster45206/adventure-relay/pkg/protocol"
	"github.com/jwebster45206/adventure-relay/pkg/textfilter"
)

const (
	maxUsernameRunes = 20
	maxMessageRunes  = 500

	// joinSnippetChars bounds the narrative recap sent to a joining
	// player.
	joinSnippetChars = 500
)

// SocketHandler is the real-time event router. It upgrades WebSocket
// connections, dispatches inbound client events against the room
// registry and narrator, and broadcasts the results to room members.
type SocketHandler struct {
	registry *game.Registry
	narrator *game.Narrator
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewSocketHandler creates the event router.
func NewSocketHandler(registry *game.Registry, narrator *game.Narrator, logger *slog.Logger) *SocketHandler {
	return &SocketHandler{
		registry: registry,
		narrator: narrator,
		logger:   logger,
		clients:  make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the connection and runs its read/write pumps.
func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	c := newClient(conn)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("Client connected", "client", c.id, "remote_addr", r.RemoteAddr)

	go c.writePump()
	c.readPump(h)
}

// dispatch routes one inbound event. It runs on the connection's read
// loop, so a synchronous narration call suspends only this session.
func (h *SocketHandler) dispatch(c *client, env protocol.Envelope) {
	switch env.Type {
	case protocol.EventCreateCharacter:
		var req protocol.CreateCharacterRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.sendError(c, "Invalid create_character payload.")
			return
		}
		h.handleCreateCharacter(c, req)
	case protocol.EventJoin:
		var req protocol.JoinRequest
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &req); err != nil {
				h.sendError(c, "Invalid join payload.")
				return
			}
		}
		h.handleJoin(c, req)
	case protocol.EventLeave:
		h.handleLeave(c)
	case protocol.EventMessage:
		var req protocol.MessageRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.sendError(c, "Invalid message payload.")
			return
		}
		h.handleMessage(c, req)
	case protocol.EventRollDice:
		var req protocol.RollDiceRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.sendError(c, "Invalid roll_dice payload.")
			return
		}
		h.handleRollDice(c, req)
	default:
		h.logger.Debug("Unknown event type", "client", c.id, "type", env.Type)
	}
}

func (h *SocketHandler) handleCreateCharacter(c *client, req protocol.CreateCharacterRequest) {
	username := textfilter.Sanitize(req.Username, maxUsernameRunes)
	if username == "" {
		h.sendError(c, "Username is required.")
		return
	}

	// Re-creating a character tears down the old session first.
	if name, roomID, ok := c.snapshot(); ok {
		h.leaveRoom(c, name, roomID)
	}

	class := textfilter.TitleCase(textfilter.Sanitize(req.CharClass, maxUsernameRunes))
	character, err := actor.NewCharacter(username, class, req.MaxHP)
	if err != nil {
		h.logger.Error("Failed to create character", "client", c.id, "error", err)
		h.sendError(c, "Failed to create character.")
		return
	}

	c.mu.Lock()
	c.session = &session{
		name:      username,
		room:      game.DefaultRoom,
		character: character,
	}
	c.mu.Unlock()

	h.logger.Info("Character created", "client", c.id, "username", username, "class", character.Class)
	h.sendCharacterUpdate(c, character)
}

func (h *SocketHandler) handleJoin(c *client, req protocol.JoinRequest) {
	name, _, ok := c.snapshot()
	if !ok {
		h.sendError(c, "Create a character first!")
		return
	}

	target := game.NormalizeRoomID(req.Room)

	// Move the membership slot: out of the old room, into the new one.
	c.mu.Lock()
	prev := c.session.room
	wasJoined := c.session.joined
	c.session.room = target
	c.session.joined = true
	c.mu.Unlock()

	if wasJoined && prev != target {
		h.registry.RemovePlayer(prev, c.id)
	}
	h.registry.AddPlayer(target, c.id, name)

	h.logger.Info("Player joined room", "client", c.id, "username", name, "room", target)

	h.broadcastToRoom(target, nil, protocol.EventMessage, protocol.ChatBroadcast{
		Username: protocol.SpeakerSystem,
		Message:  fmt.Sprintf("%s joins %s! The tale unfolds...", name, target),
	})
	h.broadcastRoomUpdate()

	// Catch the joining player up privately.
	snippet := h.registry.ReadNarrative(target, joinSnippetChars)
	_ = c.sendEvent(protocol.EventMessage, protocol.ChatBroadcast{
		Username: protocol.SpeakerDM,
		Message:  fmt.Sprintf("Current tale: %s...", snippet),
	})
	_ = c.sendEvent(protocol.EventPlayerList, protocol.PlayerList{
		Names: h.registry.PlayerNames(target),
	})
}

func (h *SocketHandler) handleLeave(c *client) {
	name, roomID, ok := c.snapshot()
	if !ok {
		h.sendError(c, "Create a character first!")
		return
	}
	h.leaveRoom(c, name, roomID)
}

// leaveRoom removes the session's membership slot, announces the
// departure, and resets the session's room pointer to the default.
func (h *SocketHandler) leaveRoom(c *client, name, roomID string) {
	c.mu.Lock()
	wasJoined := c.session != nil && c.session.joined
	if c.session != nil {
		c.session.room = game.DefaultRoom
		c.session.joined = false
	}
	c.mu.Unlock()

	if !wasJoined {
		return
	}

	h.registry.RemovePlayer(roomID, c.id)
	h.logger.Info("Player left room", "client", c.id, "username", name, "room", roomID)

	h.broadcastToRoom(roomID, nil, protocol.EventMessage, protocol.ChatBroadcast{
		Username: protocol.SpeakerSystem,
		Message:  fmt.Sprintf("%s departs the realm.", name),
	})
	h.broadcastRoomUpdate()
}

func (h *SocketHandler) handleMessage(c *client, req protocol.MessageRequest) {
	name, roomID, ok := c.snapshot()
	if !ok {
		h.sendError(c, "Create a character first!")
		return
	}

	text := textfilter.Sanitize(req.Message, maxMessageRunes)
	if text == "" {
		return
	}

	// The raw chat line always reaches the room. The sender's own
	// client echoes locally, so it is excluded here.
	h.broadcastToRoom(roomID, c, protocol.EventMessage, protocol.ChatBroadcast{
		Username: name,
		Message:  text,
	})

	if game.Classify(text) != game.KindAction {
		return
	}

	c.mu.Lock()
	character := c.session.character
	playerContext := fmt.Sprintf("Player: %s, Character: %s", name, character.Describe())
	c.mu.Unlock()

	reply, err := h.narrator.Narrate(context.Background(), roomID, text, playerContext)
	if err != nil {
		// Degraded but non-fatal: the room keeps going on a DM error
		// message instead of narration.
		h.broadcastToRoom(roomID, nil, protocol.EventMessage, protocol.ChatBroadcast{
			Username: protocol.SpeakerDM,
			Message:  fmt.Sprintf("DM Error: %v", err),
		})
		return
	}

	switch game.ClassifyReply(reply) {
	case game.EffectLoot:
		item := game.RandomLoot()
		c.mu.Lock()
		character.AddItem(item)
		c.mu.Unlock()
		h.logger.Debug("Loot granted", "client", c.id, "item", item)
		h.sendCharacterUpdate(c, character)
	case game.EffectDamage:
		dmg := dice.D6()
		c.mu.Lock()
		hp, applyErr := character.ApplyDamage(dmg)
		c.mu.Unlock()
		if applyErr != nil {
			h.logger.Error("Failed to apply damage", "client", c.id, "error", applyErr)
		} else {
			h.logger.Debug("Damage applied", "client", c.id, "damage", dmg, "hp", hp)
			h.sendCharacterUpdate(c, character)
		}
	}

	h.broadcastToRoom(roomID, nil, protocol.EventMessage, protocol.ChatBroadcast{
		Username: protocol.SpeakerDM,
		Message:  reply,
	})
}

func (h *SocketHandler) handleRollDice(c *client, req protocol.RollDiceRequest) {
	name, roomID, ok := c.snapshot()
	if !ok {
		h.sendError(c, "Create a character first!")
		return
	}

	result, err := dice.Roll(req.DieType, req.Num, req.Modifier)
	if err != nil {
		h.sendError(c, fmt.Sprintf("Invalid dice roll: %v", err))
		return
	}

	h.broadcastToRoom(roomID, nil, protocol.EventMessage, protocol.ChatBroadcast{
		Username: protocol.SpeakerSystem,
		Message:  fmt.Sprintf("%s rolls %s: %d", name, result.Notation, result.Total),
	})
}

// disconnect runs the same membership cleanup as an explicit leave,
// then destroys the session and the connection.
func (h *SocketHandler) disconnect(c *client) {
	h.mu.Lock()
	_, registered := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if !registered {
		return
	}

	if name, roomID, ok := c.snapshot(); ok {
		h.leaveRoom(c, name, roomID)
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	close(c.send)
	_ = c.conn.Close()
	h.logger.Debug("Client disconnected", "client", c.id)
}

func (h *SocketHandler) sendError(c *client, reason string) {
	_ = c.sendEvent(protocol.EventError, protocol.ErrorEvent{Reason: reason})
}

func (h *SocketHandler) sendCharacterUpdate(c *client, character *actor.Character) {
	c.mu.Lock()
	sheet, err := json.Marshal(character)
	c.mu.Unlock()
	if err != nil {
		h.logger.Error("Failed to marshal character update", "client", c.id, "error", err)
		return
	}
	_ = c.sendEvent(protocol.EventCharacterUpdate, protocol.CharacterUpdate{Character: sheet})
}

// broadcastToRoom delivers an event to every session currently pointed
// at roomID, optionally excluding one client.
func (h *SocketHandler) broadcastToRoom(roomID string, exclude *client, eventType string, payload interface{}) {
	frame, err := marshalFrame(eventType, payload)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast", "type", eventType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c == exclude {
			continue
		}
		if _, room, ok := c.snapshot(); ok && room == roomID {
			if !c.enqueue(frame) {
				h.logger.Warn("Dropped frame for slow client", "client", c.id, "type", eventType)
			}
		}
	}
}

// broadcastRoomUpdate pushes the room-list summary to every connection.
func (h *SocketHandler) broadcastRoomUpdate() {
	rooms := h.registry.ListRooms()
	update := protocol.RoomUpdate{Rooms: make(map[string]protocol.RoomSummary, len(rooms))}
	for id, info := range rooms {
		update.Rooms[id] = protocol.RoomSummary{Players: info.Players}
	}

	frame, err := marshalFrame(protocol.EventRoomUpdate, update)
	if err != nil {
		h.logger.Error("Failed to marshal room update", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.enqueue(frame) {
			h.logger.Warn("Dropped room update for slow client", "client", c.id)
		}
	}
}

func marshalFrame(eventType string, payload interface{}) ([]byte, error) {
	env, err := protocol.NewEnvelope(eventType, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
