// Package session routes conversation items through emotion classification
// and publishes results as participant metadata.
package session

import "strings"

// Role identifies who produced a conversation item.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Item is one conversational turn delivered by the session transport.
// Content may arrive as a single string or as an ordered sequence of text
// fragments; either way it is stored as a slice.
type Item struct {
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content []string
}

// Text joins the content fragments with single spaces, preserving order.
func (i Item) Text() string {
	return strings.Join(i.Content, " ")
}
