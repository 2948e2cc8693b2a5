package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jwebster45206/adventure-relay/pkg/actor"
	"github.com/jwebster45206/adventure-relay/pkg/protocol"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 16

	// sendBuffer bounds the per-connection outbound queue. A stalled
	// client drops messages rather than blocking broadcasts.
	sendBuffer = 64
)

// The server pings every pingPeriod; a peer that answers pongs keeps
// its read deadline fresh, so quiet players stay connected. Vars so
// tests can shrink the window.
var (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The relay serves its own client page; cross-origin browser
		// clients are allowed.
		return true
	},
}

// client is one live WebSocket connection and its session state. The
// session is written only from the connection's read loop; the mutex
// guards reads from broadcast paths.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	session *session
}

// session is the live binding between a connection and its display
// name, character, and current room. It exists once the player has
// created a character.
type session struct {
	name string
	room string
	// joined tracks whether the session holds a membership slot in
	// room. The room pointer defaults to the default room before the
	// first join.
	joined    bool
	character *actor.Character
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// snapshot returns the session fields needed by broadcast paths.
func (c *client) snapshot() (name, room string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", "", false
	}
	return c.session.name, c.session.room, true
}

// enqueue queues an outbound frame without blocking. Frames to a
// stalled client are dropped to keep the rest of the room live.
func (c *client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// sendEvent marshals an envelope and queues it for this client.
func (c *client) sendEvent(eventType string, payload interface{}) error {
	env, err := protocol.NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return err
	}
	c.enqueue(frame)
	return nil
}

// writePump drains the send queue onto the socket and pings the peer
// on an interval shorter than the read deadline. One per connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads inbound events and dispatches them until the
// connection drops. One per connection.
func (c *client) readPump(h *SocketHandler) {
	defer h.disconnect(c)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var env protocol.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			h.logger.Debug("Dropping malformed frame", "client", c.id, "error", err)
			continue
		}
		h.dispatch(c, env)
	}
}
