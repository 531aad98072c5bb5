package models

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Role identifies the author of a message
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one turn of the conversation. Messages are values and are never
// mutated once appended.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage builds a user message from raw input, normalizing whitespace
func NewUserMessage(input string) Message {
	return Message{Role: RoleUser, Text: NormalizeInput(input), Timestamp: time.Now()}
}

// NewBotMessage builds a bot message; bot text is kept as received
func NewBotMessage(text string) Message {
	return Message{Role: RoleBot, Text: text, Timestamp: time.Now()}
}

// IsUser reports whether the message was authored by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// NormalizeInput collapses every run of whitespace to a single space, trims the
// result and applies NFC normalization.
func NormalizeInput(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
