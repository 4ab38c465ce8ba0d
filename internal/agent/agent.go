// Package agent assembles the voice assistant session: room transport,
// emotion routing, and the optional avatar, wired together over the event
// bus.
package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/esra-convergent/woman-talking/internal/avatar"
	"github.com/esra-convergent/woman-talking/internal/bus"
	"github.com/esra-convergent/woman-talking/internal/config"
	"github.com/esra-convergent/woman-talking/internal/emotion"
	"github.com/esra-convergent/woman-talking/internal/room"
	"github.com/esra-convergent/woman-talking/internal/session"
)

// Instructions is the assistant persona handed to the delegated LLM.
const Instructions = `You are a helpful voice AI assistant. The user is interacting with you via voice, even if you perceive the conversation as text.
You eagerly assist users with their questions by providing information from your extensive knowledge.
Your responses are concise, to the point, and without any complex formatting or punctuation including emojis, asterisks, or other symbols.
You are curious, friendly, and have a sense of humor.`

// PipelineConfig carries the model identifiers for the delegated inference
// pipeline. No inference runs in this process; the identifiers are passed
// through to the providers that do.
type PipelineConfig struct {
	Instructions         string
	STTModel             string
	STTLanguage          string
	LLMModel             string
	TTSModel             string
	TTSVoice             string
	TTSSampleRate        int
	TurnDetection        string
	PreemptiveGeneration bool
}

// PipelineFromModels builds a PipelineConfig from the models section of the
// application config.
func PipelineFromModels(m config.ModelsConfig) PipelineConfig {
	return PipelineConfig{
		Instructions:         Instructions,
		STTModel:             m.STTModel,
		STTLanguage:          m.STTLanguage,
		LLMModel:             m.LLMModel,
		TTSModel:             m.TTSModel,
		TTSVoice:             m.TTSVoice,
		TTSSampleRate:        m.TTSSampleRate,
		TurnDetection:        m.TurnDetection,
		PreemptiveGeneration: m.PreemptiveGeneration,
	}
}

// Session is the top-level assistant session.
type Session struct {
	cfg      *config.Config
	pipeline PipelineConfig
	bus      *bus.EventBus
	logger   zerolog.Logger

	room   *room.Room
	router *session.Router
	avatar *avatar.Session

	started bool
}

// New builds a session from configuration. Nothing connects until Start.
func New(cfg *config.Config, b *bus.EventBus, logger zerolog.Logger) *Session {
	log := logger.With().Str("component", "agent").Logger()

	rm := room.New(room.Config{
		URL:       cfg.LiveKit.URL,
		APIKey:    cfg.LiveKit.APIKey,
		APISecret: cfg.LiveKit.APISecret,
		RoomName:  cfg.LiveKit.RoomName,
		Identity:  cfg.LiveKit.Identity,
	}, b, logger)

	classifier := emotion.NewClassifier(logger)
	router := session.NewRouter(classifier, rm, b, logger)

	s := &Session{
		cfg:      cfg,
		pipeline: PipelineFromModels(cfg.Models),
		bus:      b,
		logger:   log,
		room:     rm,
		router:   router,
	}

	if cfg.Avatar.Enabled {
		s.avatar = avatar.NewSession(avatar.SessionConfig{
			AvatarID:  cfg.Avatar.AvatarID,
			Model:     cfg.Avatar.Model,
			RenderURL: cfg.Avatar.RenderURL,
			Options: avatar.ConnectOptions{
				MaxRetries:    cfg.Avatar.MaxRetries,
				RetryInterval: cfg.Avatar.RetryInterval,
				Timeout:       cfg.Avatar.Timeout,
			},
		}, b, logger)
	}

	return s
}

// Pipeline returns the delegated model configuration for this session.
func (s *Session) Pipeline() PipelineConfig {
	return s.pipeline
}

// Room returns the underlying room transport.
func (s *Session) Room() *room.Room {
	return s.room
}

// Avatar returns the avatar session, or nil when the avatar is disabled.
func (s *Session) Avatar() *avatar.Session {
	return s.avatar
}

// Start connects the room and brings up emotion routing and the avatar.
// An avatar failure is not fatal: the session continues voice-only.
func (s *Session) Start(ctx context.Context) error {
	if s.started {
		return nil
	}

	if err := s.room.Connect(ctx); err != nil {
		return fmt.Errorf("agent: connect room: %w", err)
	}

	if s.cfg.Emotion.Enabled {
		s.router.Start()
	}

	if s.avatar != nil {
		if err := s.avatar.Start(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Avatar unavailable, continuing voice-only")
			s.avatar = nil
		}
	}

	s.started = true
	s.logger.Info().
		Str("room", s.cfg.LiveKit.RoomName).
		Str("llm", s.pipeline.LLMModel).
		Str("stt", s.pipeline.STTModel).
		Str("tts", s.pipeline.TTSModel).
		Bool("avatar", s.avatar != nil).
		Msg("Session started")
	return nil
}

// Stop tears down the session in reverse order of Start.
func (s *Session) Stop() {
	if !s.started {
		return
	}
	s.started = false

	if s.avatar != nil {
		s.avatar.Stop()
	}
	s.router.Close()
	s.room.Disconnect()
	s.logger.Info().Msg("Session stopped")
}
