package main

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/jwebster45206/adventure-relay/pkg/protocol"
)

// serverEventMsg carries one inbound server event (or the read error
// that ended the connection) into the Update loop.
type serverEventMsg struct {
	env protocol.Envelope
	err error
}

// wsClient owns the WebSocket connection. A single read goroutine
// feeds events; the UI re-arms waitForEvent after consuming each one.
type wsClient struct {
	conn   *websocket.Conn
	events chan serverEventMsg
}

func newWSClient(url string) (*wsClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	c := &wsClient{
		conn:   conn,
		events: make(chan serverEventMsg, 16),
	}
	go c.readLoop()
	return c, nil
}

func (c *wsClient) readLoop() {
	defer close(c.events)
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			c.events <- serverEventMsg{err: err}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			continue
		}
		c.events <- serverEventMsg{env: env}
	}
}

// waitForEvent blocks until the next server event arrives.
func (c *wsClient) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-c.events
		if !ok {
			return serverEventMsg{err: fmt.Errorf("connection closed")}
		}
		return msg
	}
}

func (c *wsClient) send(eventType string, payload interface{}) error {
	env, err := protocol.NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	return c.conn.WriteJSON(env)
}

func (c *wsClient) close() {
	_ = c.conn.Close()
}
