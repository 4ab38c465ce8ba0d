package emotion

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClassifier() *Classifier {
	return NewClassifier(zerolog.Nop())
}

func TestClassify_LiteralScenarios(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text string
		want Label
	}{
		{"I'm so happy and excited about this!", LabelHappy},
		{"I'm feeling really sad and down today", LabelSad},
		{"I'm so angry and frustrated with this situation", LabelAngry},
		{"I'm really worried and stressed about the deadline", LabelAnxious},
		{"Thank you so much, I really appreciate your help", LabelGrateful},
		{"Wow, that's amazing! I can't believe it!", LabelSurprised},
		{"The meeting is scheduled for tomorrow at 3pm", LabelNeutral},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestClassify_KeywordDetection(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text string
		want Label
	}{
		{"This is fucking annoying", LabelAngry},
		{"I hate this situation", LabelAngry},
		{"I'm feeling terrible today", LabelSad},
		{"I'm crying because I'm so sad", LabelSad},
		{"I'm scared and nervous", LabelAnxious},
		{"This is stressing me out", LabelAnxious},
		{"I love this so much!", LabelHappy},
		{"This is excellent work", LabelHappy},
		{"Thank you for everything", LabelGrateful},
		{"I really appreciate it", LabelGrateful},
		{"OMG that's incredible!", LabelSurprised},
		{"No way, really?", LabelSurprised},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestClassify_EmptyTextReturnsNeutral(t *testing.T) {
	c := newTestClassifier()

	if got := c.Classify(""); got != LabelNeutral {
		t.Errorf("Classify(\"\") = %q, want %q", got, LabelNeutral)
	}
	if got := c.Classify("   "); got != LabelNeutral {
		t.Errorf("Classify(whitespace) = %q, want %q", got, LabelNeutral)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := newTestClassifier()

	inputs := []string{"I'M SO HAPPY!", "i'm so happy!", "I'm So HaPpY!"}
	for _, text := range inputs {
		if got := c.Classify(text); got != LabelHappy {
			t.Errorf("Classify(%q) = %q, want %q", text, got, LabelHappy)
		}
	}
}

// TestClassify_PriorityOrder builds one mixed-keyword string per adjacent
// pair in the declared order and asserts the higher-priority label wins.
func TestClassify_PriorityOrder(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		text string
		want Label
	}{
		{"angry beats sad", "I'm angry but also a bit sad", LabelAngry},
		{"sad beats anxious", "I'm crying and so worried", LabelSad},
		{"anxious beats grateful", "I'm nervous but thankful", LabelAnxious},
		{"grateful beats surprised", "thanks, wow that was fast", LabelGrateful},
		{"surprised beats happy", "wow this is wonderful", LabelSurprised},
		{"happy beats neutral", "this is wonderful", LabelHappy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_SubstringMatchInsideWords(t *testing.T) {
	c := newTestClassifier()

	// "bad" matches inside "badminton". Known upstream semantics.
	if got := c.Classify("we played badminton"); got != LabelSad {
		t.Errorf("Classify(badminton) = %q, want %q (substring semantics)", got, LabelSad)
	}
}

func TestDetectCommand(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text   string
		want   Label
		wantOK bool
	}{
		{"act happy", LabelHappy, true},
		{"please BE SAD now", LabelSad, true},
		{"show angry", LabelAngry, true},
		{"be surprised", LabelSurprised, true},
		{"act thinking", LabelIdle, true},
		{"be thoughtful for a second", LabelIdle, true},
		{"act idle", LabelIdle, true},
		{"act neutral", LabelNeutral, true},
		{"reset", LabelNeutral, true},
		{"I am very happy today", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := c.DetectCommand(tt.text)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("DetectCommand(%q) = (%q, %v), want (%q, %v)",
				tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDetectCommand_PreemptsKeywords(t *testing.T) {
	c := newTestClassifier()

	// "hate" is an angry keyword, but the explicit command wins.
	text := "act happy, I hate this"
	got, ok := c.DetectCommand(text)
	if !ok || got != LabelHappy {
		t.Fatalf("DetectCommand(%q) = (%q, %v), want (happy, true)", text, got, ok)
	}
}

func TestDescribe(t *testing.T) {
	for label, fragment := range map[Label]string{
		LabelHappy:   "Happy",
		LabelSad:     "Sad",
		LabelAngry:   "Angry",
		LabelNeutral: "Neutral",
	} {
		if got := Describe(label); !strings.Contains(got, fragment) {
			t.Errorf("Describe(%q) = %q, want it to contain %q", label, got, fragment)
		}
	}

	if got := Describe(Label("bogus")); got != "Unknown emotion" {
		t.Errorf("Describe(bogus) = %q, want %q", got, "Unknown emotion")
	}
}

func TestNewEvent_WireContract(t *testing.T) {
	before := time.Now().UnixMilli()
	evt := NewEvent(LabelGrateful, SourceAgent, "thank you")
	after := time.Now().UnixMilli()

	if evt.Type != "emotion" {
		t.Errorf("Type = %q, want emotion", evt.Type)
	}
	if evt.Emotion != LabelGrateful {
		t.Errorf("Emotion = %q, want grateful", evt.Emotion)
	}
	if evt.Source != SourceAgent {
		t.Errorf("Source = %q, want agent", evt.Source)
	}
	if evt.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", evt.Confidence)
	}
	if evt.Timestamp < before || evt.Timestamp > after {
		t.Errorf("Timestamp = %d, want within [%d, %d]", evt.Timestamp, before, after)
	}

	payload, err := evt.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// Field names are a frontend contract.
	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"type", "emotion", "source", "text", "timestamp", "confidence"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("serialized event missing key %q", key)
		}
	}
	if len(raw) != 6 {
		t.Errorf("serialized event has %d keys, want 6", len(raw))
	}
}

func TestNewEvent_TruncatesText(t *testing.T) {
	long := strings.Repeat("a", 250)
	evt := NewEvent(LabelNeutral, SourceAgent, long)

	if len(evt.Text) != 100 {
		t.Errorf("Text length = %d, want 100", len(evt.Text))
	}
}

func TestSnippet_MultiByte(t *testing.T) {
	text := strings.Repeat("é", 120)
	got := Snippet(text, 100)

	if n := len([]rune(got)); n != 100 {
		t.Errorf("Snippet rune count = %d, want 100", n)
	}
	if !strings.HasPrefix(text, got) {
		t.Error("Snippet is not a prefix of the input")
	}
}
