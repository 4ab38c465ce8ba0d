package avatar

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// stateMessage is sent to the render service on every state change.
type stateMessage struct {
	Type  string `json:"type"`
	State State  `json:"state"`
}

// RenderClient pushes avatar state to the external render service over
// WebSocket.
type RenderClient struct {
	url    string
	logger zerolog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewRenderClient creates a render client for the given WebSocket URL.
func NewRenderClient(url string, logger zerolog.Logger) *RenderClient {
	return &RenderClient{
		url:    url,
		logger: logger.With().Str("component", "avatar-render").Logger(),
	}
}

// Connect dials the render service.
func (c *RenderClient) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("render dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.logger.Info().Str("url", c.url).Msg("Connected to render service")
	return nil
}

// Disconnect closes the WebSocket connection.
func (c *RenderClient) Disconnect() {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	c.mu.Unlock()
}

// IsConnected returns connection status
func (c *RenderClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SendState pushes a state snapshot to the render service.
func (c *RenderClient) SendState(state State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.conn == nil {
		return fmt.Errorf("render client not connected")
	}

	payload, err := json.Marshal(stateMessage{Type: "state", State: state})
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
