package emotion

import "strings"

// commandRule binds imperative trigger phrases to the label they select.
type commandRule struct {
	label   Label
	phrases []string
}

// defaultCommandTable is checked in order before any keyword matching. The
// first rule with a matching phrase wins when several would apply.
var defaultCommandTable = []commandRule{
	{LabelHappy, []string{"act happy", "be happy", "show happy"}},
	{LabelSad, []string{"act sad", "be sad", "show sad"}},
	{LabelAngry, []string{"act angry", "be angry", "show angry"}},
	{LabelSurprised, []string{"act surprised", "be surprised", "show surprised"}},
	{LabelIdle, []string{"act thinking", "be thoughtful", "show thinking", "act idle"}},
	{LabelNeutral, []string{"act neutral", "be neutral", "show neutral", "reset"}},
}

// DetectCommand scans text for an explicit emotion command such as
// "act happy" or "be sad" and returns the commanded label. Command phrases
// always take precedence over keyword sentiment: callers should check this
// first and only fall back to Classify when ok is false.
func (c *Classifier) DetectCommand(text string) (label Label, ok bool) {
	lower := strings.ToLower(text)

	for _, rule := range c.commands {
		for _, phrase := range rule.phrases {
			if strings.Contains(lower, phrase) {
				c.logger.Debug().
					Str("emotion", string(rule.label)).
					Str("phrase", phrase).
					Msg("Detected emotion command")
				return rule.label, true
			}
		}
	}

	return "", false
}
