// Package lipsync generates avatar video frames from agent speech audio.
//
// The real lip-sync model is not wired up yet: Generate returns the
// reference frame repeated, which keeps the downstream video path exercised
// without any inference. Treat every output of this package as placeholder
// footage.
package lipsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// placeholderFrameCount is how many copies of the reference frame one
// Generate call yields.
const placeholderFrameCount = 10

// ErrNoReference is returned when Generate runs before a reference frame
// is loaded.
var ErrNoReference = errors.New("lipsync: reference frame not loaded")

// Frame is one video frame of generated output.
type Frame struct {
	Index int
	Data  []byte
}

// Generator produces lip-synced frames for speech audio against a reference
// face.
type Generator struct {
	referencePath string
	sampleRate    int
	logger        zerolog.Logger

	mu        sync.RWMutex
	reference []byte
}

// NewGenerator creates a generator for the given reference video file.
func NewGenerator(referencePath string, sampleRate int, logger zerolog.Logger) *Generator {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &Generator{
		referencePath: referencePath,
		sampleRate:    sampleRate,
		logger:        logger.With().Str("component", "lipsync").Logger(),
	}
}

// LoadReference reads the reference video and keeps its first frame.
func (g *Generator) LoadReference() error {
	data, err := os.ReadFile(g.referencePath)
	if err != nil {
		return fmt.Errorf("lipsync: read reference: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("lipsync: reference file %s is empty", g.referencePath)
	}

	// TODO: decode the container and extract the first frame; for now the
	// raw file bytes stand in for it.
	g.mu.Lock()
	g.reference = data
	g.mu.Unlock()

	g.logger.Info().
		Str("reference", g.referencePath).
		Int("bytes", len(data)).
		Msg("Reference frame loaded")
	return nil
}

// Loaded reports whether a reference frame is available.
func (g *Generator) Loaded() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reference != nil
}

// Generate produces video frames for the given audio. Inference is not
// implemented: the reference frame is repeated regardless of audio content.
//
// TODO: run MuseTalk inference against the reference frame and audio.
func (g *Generator) Generate(ctx context.Context, audio []byte, sampleRate int) ([]Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	reference := g.reference
	g.mu.RUnlock()

	if reference == nil {
		return nil, ErrNoReference
	}
	if sampleRate <= 0 {
		sampleRate = g.sampleRate
	}

	g.logger.Debug().
		Int("audioBytes", len(audio)).
		Int("sampleRate", sampleRate).
		Msg("Generating placeholder frames")

	frames := make([]Frame, placeholderFrameCount)
	for i := range frames {
		frames[i] = Frame{Index: i, Data: reference}
	}
	return frames, nil
}
