package emotion

import (
	"encoding/json"
	"time"
)

// Event sources: who the displayed emotion belongs to. The agent publishes
// source "agent" even for user-triggered emotions, because the label
// represents the agent's reaction to the user's speech.
const (
	SourceUser  = "user"
	SourceAgent = "agent"
)

// AttributeKey is the participant attribute key the serialized event is
// published under.
const AttributeKey = "emotion"

// maxEventText caps the text snippet carried in a published event.
const maxEventText = 100

// Event is one classification result ready for publication. Field names and
// types are a wire contract with frontend consumers and must not change.
type Event struct {
	Type       string  `json:"type"`
	Emotion    Label   `json:"emotion"`
	Source     string  `json:"source"`
	Text       string  `json:"text"`
	Timestamp  int64   `json:"timestamp"`
	Confidence float64 `json:"confidence"`
}

// NewEvent builds an Event for the given label. Text is truncated to 100
// characters and the timestamp is wall-clock epoch milliseconds (frontend
// Date expects ms). Confidence is fixed at 1.0 for keyword classification.
func NewEvent(label Label, source, text string) Event {
	return Event{
		Type:       "emotion",
		Emotion:    label,
		Source:     source,
		Text:       Snippet(text, maxEventText),
		Timestamp:  time.Now().UnixMilli(),
		Confidence: 1.0,
	}
}

// Marshal serializes the event to the JSON form published as session
// metadata.
func (e Event) Marshal() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
