// Package protocol defines the JSON event surface exchanged between the
// relay server and its WebSocket clients.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Inbound event types.
const (
	EventCreateCharacter = "create_character"
	EventJoin            = "join"
	EventLeave           = "leave"
	EventMessage         = "message"
	EventRollDice        = "roll_dice"
)

// Outbound event types.
const (
	EventCharacterUpdate = "character_update"
	EventRoomUpdate      = "room_update"
	EventPlayerList      = "player_list"
	EventError           = "error"
)

// Reserved speaker names for broadcast messages.
const (
	SpeakerSystem = "System"
	SpeakerDM     = "DM (AI)"
)

// Envelope wraps every event on the wire. Data holds the type-specific
// payload and may be empty for events like "leave".
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into an Envelope of the given type.
func NewEnvelope(eventType string, payload interface{}) (Envelope, error) {
	if payload == nil {
		return Envelope{Type: eventType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Envelope{Type: eventType, Data: data}, nil
}

// CreateCharacterRequest creates the connection's session and character.
type CreateCharacterRequest struct {
	Username  string `json:"username"`
	CharClass string `json:"charClass"`
	MaxHP     int    `json:"maxHP"`
}

// JoinRequest moves the session into a room. An empty room name resolves
// to the default room.
type JoinRequest struct {
	Room string `json:"room"`
}

// MessageRequest is a chat line from a player.
type MessageRequest struct {
	Message string `json:"message"`
}

// RollDiceRequest asks the server to roll dice on the session's behalf.
type RollDiceRequest struct {
	DieType  string `json:"dieType"`
	Num      int    `json:"num"`
	Modifier int    `json:"modifier"`
}

// ChatBroadcast is a chat line delivered to room members, or privately
// when the speaker is the DM addressing a single player.
type ChatBroadcast struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// RoomSummary describes one room in a room_update broadcast.
type RoomSummary struct {
	Players int `json:"players"`
}

// RoomUpdate is broadcast to every connection whenever room membership
// changes anywhere on the server.
type RoomUpdate struct {
	Rooms map[string]RoomSummary `json:"rooms"`
}

// PlayerList is sent privately to a joining player.
type PlayerList struct {
	Names []string `json:"names"`
}

// CharacterUpdate is sent privately after character creation and after
// any DM-driven change to the character sheet.
type CharacterUpdate struct {
	Character json.RawMessage `json:"character"`
}

// ErrorEvent reports a validation failure privately to its originator.
type ErrorEvent struct {
	Reason string `json:"reason"`
}
