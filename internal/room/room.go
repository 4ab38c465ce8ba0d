// Package room connects the agent to a LiveKit room. It bridges incoming
// conversation items onto the internal bus and publishes participant
// attributes back to the session.
package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/rs/zerolog"

	"github.com/esra-convergent/woman-talking/internal/bus"
	"github.com/esra-convergent/woman-talking/internal/session"
)

// ConversationTopic is the data-packet topic conversation items arrive on.
const ConversationTopic = "conversation"

// ErrNotConnected is returned when an operation needs a live room
// connection and there is none.
var ErrNotConnected = errors.New("room: not connected")

// Config configures the room connection
type Config struct {
	URL       string
	APIKey    string
	APISecret string
	RoomName  string
	Identity  string
}

// Room wraps a LiveKit room connection for the agent.
type Room struct {
	cfg    Config
	bus    *bus.EventBus
	logger zerolog.Logger

	mu        sync.RWMutex
	room      *lksdk.Room
	connected bool
}

// New creates a room client. Connect must be called before publishing.
func New(cfg Config, b *bus.EventBus, logger zerolog.Logger) *Room {
	if cfg.Identity == "" {
		cfg.Identity = "agent-" + uuid.NewString()[:8]
	}
	return &Room{
		cfg:    cfg,
		bus:    b,
		logger: logger.With().Str("component", "room").Logger(),
	}
}

// Connect joins the configured LiveKit room.
func (r *Room) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.cfg.URL == "" || r.cfg.APIKey == "" || r.cfg.APISecret == "" {
		return fmt.Errorf("room: missing LiveKit credentials")
	}

	callback := &lksdk.RoomCallback{
		OnParticipantConnected: func(p *lksdk.RemoteParticipant) {
			r.logger.Info().
				Str("identity", p.Identity()).
				Msg("Participant connected")
		},
		OnParticipantDisconnected: func(p *lksdk.RemoteParticipant) {
			r.logger.Info().
				Str("identity", p.Identity()).
				Msg("Participant disconnected")
		},
		OnDisconnected: func() {
			r.mu.Lock()
			r.connected = false
			r.mu.Unlock()
			r.logger.Warn().Msg("Disconnected from room")
			r.bus.Publish(bus.Event{Type: bus.EventTypeDisconnected})
		},
		ParticipantCallback: lksdk.ParticipantCallback{
			OnDataPacket: r.handleDataPacket,
		},
	}

	info := lksdk.ConnectInfo{
		APIKey:              r.cfg.APIKey,
		APISecret:           r.cfg.APISecret,
		RoomName:            r.cfg.RoomName,
		ParticipantIdentity: r.cfg.Identity,
		ParticipantName:     r.cfg.Identity,
	}

	room, err := lksdk.ConnectToRoom(r.cfg.URL, info, callback)
	if err != nil {
		return fmt.Errorf("room: connect: %w", err)
	}

	r.mu.Lock()
	r.room = room
	r.connected = true
	r.mu.Unlock()

	r.logger.Info().
		Str("room", room.Name()).
		Str("identity", r.cfg.Identity).
		Msg("Connected to room")
	r.bus.Publish(bus.Event{
		Type: bus.EventTypeConnected,
		Data: map[string]any{"room": room.Name()},
	})

	return nil
}

// Disconnect leaves the room.
func (r *Room) Disconnect() {
	r.mu.Lock()
	room := r.room
	r.room = nil
	r.connected = false
	r.mu.Unlock()

	if room != nil {
		room.Disconnect()
	}
}

// IsConnected returns connection status
func (r *Room) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// SetAttributes publishes participant attributes to the session. This is
// the metadata channel the emotion router publishes on.
func (r *Room) SetAttributes(ctx context.Context, attrs map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	room := r.room
	connected := r.connected
	r.mu.RUnlock()

	if !connected || room == nil {
		return ErrNotConnected
	}

	room.LocalParticipant.SetAttributes(attrs)
	return nil
}

// handleDataPacket decodes conversation items from user data packets and
// forwards them onto the bus.
func (r *Room) handleDataPacket(data lksdk.DataPacket, params lksdk.DataReceiveParams) {
	pkt, ok := data.(*lksdk.UserDataPacket)
	if !ok || pkt.Topic != ConversationTopic {
		return
	}

	item, err := decodeItem(pkt.Payload)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("sender", params.SenderIdentity).
			Msg("Dropping malformed conversation item")
		return
	}

	r.logger.Debug().
		Str("role", string(item.Role)).
		Str("sender", params.SenderIdentity).
		Msg("Conversation item received")

	r.bus.Publish(bus.Event{
		Type: bus.EventTypeItemAdded,
		Data: map[string]any{"item": item},
	})
	r.bus.Publish(bus.Event{
		Type: bus.EventTypeTranscript,
		Data: map[string]any{"role": string(item.Role), "text": item.Text(), "at": time.Now()},
	})
}

// itemMessage is the wire form of a conversation item. Content may be a
// single string or an ordered array of text fragments.
type itemMessage struct {
	ID      string          `json:"id"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

func decodeItem(payload []byte) (session.Item, error) {
	var msg itemMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return session.Item{}, err
	}

	content, err := decodeContent(msg.Content)
	if err != nil {
		return session.Item{}, err
	}

	return session.Item{
		ID:      msg.ID,
		Role:    session.Role(msg.Role),
		Content: content,
	}, nil
}

func decodeContent(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var parts []string
	if err := json.Unmarshal(raw, &parts); err == nil {
		return parts, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("content is neither string nor string array: %w", err)
	}
	return []string{single}, nil
}
