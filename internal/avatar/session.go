package avatar

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/esra-convergent/woman-talking/internal/bus"
	"github.com/esra-convergent/woman-talking/internal/emotion"
)

// ConnectOptions bound how hard a session tries to reach the avatar
// provider before giving up.
type ConnectOptions struct {
	MaxRetries    int
	RetryInterval time.Duration
	Timeout       time.Duration
}

// DefaultConnectOptions returns the connect options tuned for interactive
// sessions: enough retries to survive a provider hiccup without delaying
// startup noticeably.
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{
		MaxRetries:    5,
		RetryInterval: 1500 * time.Millisecond,
		Timeout:       20 * time.Second,
	}
}

// SessionConfig configures an avatar session.
type SessionConfig struct {
	AvatarID  string
	Model     string // provider model, e.g. "essence"
	RenderURL string
	Options   ConnectOptions
}

// renderSink is the downstream the session pushes state to.
type renderSink interface {
	Connect(ctx context.Context) error
	Disconnect()
	SendState(state State) error
}

// Session drives the external avatar for one agent session: it owns the
// controller, subscribes to emotion events, and mirrors state changes to
// the render service. A failed session is not fatal; the caller falls back
// to voice-only mode.
type Session struct {
	cfg        SessionConfig
	controller *Controller
	client     renderSink
	bus        *bus.EventBus
	logger     zerolog.Logger

	sub     bus.Subscription
	started bool
}

// NewSession creates an avatar session.
func NewSession(cfg SessionConfig, b *bus.EventBus, logger zerolog.Logger) *Session {
	if cfg.Options.MaxRetries <= 0 {
		cfg.Options = DefaultConnectOptions()
	}
	if cfg.Model == "" {
		cfg.Model = "essence"
	}

	s := &Session{
		cfg:        cfg,
		controller: NewController(),
		bus:        b,
		logger:     logger.With().Str("component", "avatar").Logger(),
	}
	s.client = NewRenderClient(cfg.RenderURL, logger)
	return s
}

// Controller exposes the session's state controller.
func (s *Session) Controller() *Controller {
	return s.controller
}

// Start connects to the render service (with retries) and begins mirroring
// emotion events onto the avatar face.
func (s *Session) Start(ctx context.Context) error {
	if s.cfg.AvatarID == "" {
		return fmt.Errorf("avatar: avatar id not configured")
	}

	if err := s.connectWithRetry(ctx); err != nil {
		return err
	}

	s.controller.SetStateHandler(func(state State) {
		if err := s.client.SendState(state); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to push avatar state")
		}
		s.bus.Publish(bus.Event{
			Type: bus.EventTypeAvatarStateChanged,
			Data: map[string]any{"display": string(state.Display)},
		})
	})

	s.sub = s.bus.Subscribe(bus.EventTypeEmotionDetected, func(evt bus.Event) {
		label, ok := evt.Data["label"].(emotion.Label)
		if !ok {
			return
		}
		s.controller.SetDisplay(FromLabel(label))
	})
	s.started = true

	s.logger.Info().
		Str("avatarId", s.cfg.AvatarID).
		Str("model", s.cfg.Model).
		Msg("Avatar session started")
	s.bus.Publish(bus.Event{Type: bus.EventTypeAvatarStarted})

	return nil
}

// Stop tears the session down.
func (s *Session) Stop() {
	if !s.started {
		return
	}
	s.started = false

	s.bus.Unsubscribe(s.sub)
	s.controller.SetStateHandler(nil)
	s.client.Disconnect()
	s.bus.Publish(bus.Event{Type: bus.EventTypeAvatarStopped})
	s.logger.Info().Msg("Avatar session stopped")
}

// connectWithRetry dials the render service, retrying per the connect
// options. The overall attempt is bounded by Options.Timeout.
func (s *Session) connectWithRetry(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Options.Timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= s.cfg.Options.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("avatar: connect timed out: %w", lastErr)
			case <-time.After(s.cfg.Options.RetryInterval):
			}
		}

		if err := s.client.Connect(ctx); err != nil {
			lastErr = err
			s.logger.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Msg("Avatar connect failed")
			continue
		}
		return nil
	}

	return fmt.Errorf("avatar: connect failed after %d attempts: %w",
		s.cfg.Options.MaxRetries+1, lastErr)
}
