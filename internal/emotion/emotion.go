// Package emotion provides keyword-based emotion classification for user
// utterances. The classifier is deterministic: an ordered keyword table maps
// text to one label out of a fixed set, with neutral as the fallback.
package emotion

import (
	"strings"

	"github.com/rs/zerolog"
)

// Label is one of the fixed emotion labels produced by classification.
type Label string

const (
	LabelHappy     Label = "happy"
	LabelSad       Label = "sad"
	LabelAngry     Label = "angry"
	LabelAnxious   Label = "anxious"
	LabelSurprised Label = "surprised"
	LabelGrateful  Label = "grateful"
	LabelNeutral   Label = "neutral"

	// LabelIdle is a display-only state for the avatar. Keyword
	// classification never produces it; only an explicit command
	// ("act thinking", "act idle") selects it.
	LabelIdle Label = "idle"
)

// keywordSet binds a label to the keywords that select it.
type keywordSet struct {
	label    Label
	keywords []string
}

// defaultKeywordTable is checked in order: the first set with a hit wins,
// so negative emotions take precedence over positive ones. Reordering this
// table changes observable behavior.
var defaultKeywordTable = []keywordSet{
	{LabelAngry, []string{
		"fuck", "angry", "hate", "mad", "pissed", "annoyed", "furious",
		"irritated", "rage", "frustrated", "damn", "shit",
	}},
	{LabelSad, []string{
		"sad", "depressed", "down", "unhappy", "cry", "crying", "miserable",
		"disappointed", "upset", "terrible", "awful", "bad",
	}},
	{LabelAnxious, []string{
		"worried", "anxious", "scared", "afraid", "nervous", "concerned",
		"stress", "stressed", "panic", "fear", "overwhelming",
	}},
	{LabelGrateful, []string{
		"thank", "thanks", "appreciate", "grateful", "gratitude",
		"appreciated", "thankful",
	}},
	{LabelSurprised, []string{
		"wow", "surprised", "shocked", "incredible", "unbelievable",
		"omg", "no way", "can't believe",
	}},
	{LabelHappy, []string{
		"happy", "great", "awesome", "love", "excited", "amazing", "wonderful",
		"fantastic", "excellent", "good", "joy", "delighted", "pleased",
	}},
}

// Classifier maps utterance text to an emotion label. It holds immutable
// tables built at construction, so a single instance is safe for concurrent
// use without locking.
type Classifier struct {
	table    []keywordSet
	commands []commandRule
	logger   zerolog.Logger
}

// NewClassifier builds a classifier over the default keyword and command
// tables.
func NewClassifier(logger zerolog.Logger) *Classifier {
	return &Classifier{
		table:    defaultKeywordTable,
		commands: defaultCommandTable,
		logger:   logger.With().Str("component", "emotion").Logger(),
	}
}

// Classify returns the emotion label for the given text. Matching is a
// case-insensitive substring scan over the keyword table in declared order;
// neutral is returned when nothing matches or the text is empty.
//
// Keywords match inside longer words ("bad" hits "badminton"). That mirrors
// upstream behavior and is a known false-positive source, not a bug to fix
// with word boundaries.
func (c *Classifier) Classify(text string) Label {
	if text == "" {
		return LabelNeutral
	}

	lower := strings.ToLower(text)

	for _, set := range c.table {
		for _, keyword := range set.keywords {
			if strings.Contains(lower, keyword) {
				c.logger.Debug().
					Str("emotion", string(set.label)).
					Str("text", Snippet(text, 50)).
					Msg("Detected emotion")
				return set.label
			}
		}
	}

	return LabelNeutral
}

// descriptions holds the human-readable description per label.
var descriptions = map[Label]string{
	LabelHappy:     "Happy and positive",
	LabelSad:       "Sad or disappointed",
	LabelAngry:     "Angry or frustrated",
	LabelAnxious:   "Anxious or worried",
	LabelSurprised: "Surprised or amazed",
	LabelGrateful:  "Grateful or thankful",
	LabelNeutral:   "Neutral or calm",
	LabelIdle:      "Idle or thinking",
}

// Describe returns a human-readable description of the label. Unrecognized
// labels get a generic description rather than an error.
func Describe(label Label) string {
	if d, ok := descriptions[label]; ok {
		return d
	}
	return "Unknown emotion"
}

// Snippet truncates text to at most n characters for logging and event
// payloads. Truncation counts runes, not bytes, so multi-byte text is never
// cut mid-character.
func Snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
