// Package avatar manages the agent's display state and the external avatar
// provider session. Rendering itself is delegated; this package only tracks
// what face the avatar should show and pushes that downstream.
package avatar

import (
	"sync"
	"time"

	"github.com/esra-convergent/woman-talking/internal/emotion"
)

// DisplayState is what the avatar face currently shows. It is the emotion
// label set plus idle, which is a presentation state rather than a
// sentiment.
type DisplayState string

const (
	DisplayNeutral   DisplayState = "neutral"
	DisplayHappy     DisplayState = "happy"
	DisplaySad       DisplayState = "sad"
	DisplayAngry     DisplayState = "angry"
	DisplayAnxious   DisplayState = "anxious"
	DisplaySurprised DisplayState = "surprised"
	DisplayGrateful  DisplayState = "grateful"
	DisplayIdle      DisplayState = "idle"
)

// FromLabel maps a classification label to the display state it drives.
func FromLabel(label emotion.Label) DisplayState {
	switch label {
	case emotion.LabelHappy:
		return DisplayHappy
	case emotion.LabelSad:
		return DisplaySad
	case emotion.LabelAngry:
		return DisplayAngry
	case emotion.LabelAnxious:
		return DisplayAnxious
	case emotion.LabelSurprised:
		return DisplaySurprised
	case emotion.LabelGrateful:
		return DisplayGrateful
	case emotion.LabelIdle:
		return DisplayIdle
	default:
		return DisplayNeutral
	}
}

// State is the avatar's current state snapshot.
type State struct {
	Display     DisplayState `json:"display"`
	IsSpeaking  bool         `json:"isSpeaking"`
	IsListening bool         `json:"isListening"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Controller manages avatar state transitions.
type Controller struct {
	mu       sync.RWMutex
	state    State
	onChange func(State)
}

// NewController creates a controller in the neutral state.
func NewController() *Controller {
	return &Controller{
		state: State{
			Display:   DisplayNeutral,
			UpdatedAt: time.Now(),
		},
	}
}

// SetStateHandler sets the callback invoked on every state change.
func (c *Controller) SetStateHandler(handler func(State)) {
	c.mu.Lock()
	c.onChange = handler
	c.mu.Unlock()
}

// GetState returns the current state
func (c *Controller) GetState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetDisplay transitions the face to a new display state.
func (c *Controller) SetDisplay(display DisplayState) {
	c.update(func(s *State) {
		s.Display = display
	})
}

// SetSpeaking marks whether the agent is currently speaking.
func (c *Controller) SetSpeaking(speaking bool) {
	c.update(func(s *State) {
		s.IsSpeaking = speaking
		if speaking {
			s.IsListening = false
		}
	})
}

// SetListening marks whether the agent is currently listening.
func (c *Controller) SetListening(listening bool) {
	c.update(func(s *State) {
		s.IsListening = listening
		if listening {
			s.IsSpeaking = false
		}
	})
}

// Reset returns the avatar to its neutral resting state.
func (c *Controller) Reset() {
	c.update(func(s *State) {
		s.Display = DisplayNeutral
		s.IsSpeaking = false
		s.IsListening = false
	})
}

func (c *Controller) update(apply func(*State)) {
	c.mu.Lock()
	apply(&c.state)
	c.state.UpdatedAt = time.Now()
	state := c.state
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
}
