package models

import "time"

// Message represents an individual communication entry within a conversation. It contains the core
// components of a chat message including its unique identifier, the participant's role, the actual
// content, and the precise time when the message was created. Messages are immutable once appended
// to a session's history.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// Role represents the role of a message participant.
type Role string

const (
	// RoleSystem represents the synthesized instruction message placed first in every completion
	// call. System messages are never stored in conversation history.
	RoleSystem Role = "system"
	// RoleUser represents a message typed or triggered by the user.
	RoleUser Role = "user"
	// RoleAssistant represents a message generated by the language model.
	RoleAssistant Role = "assistant"
)

// Settings holds the configuration selection that shapes the system prompt and the sampling
// parameters of each completion call. It lives for the duration of a session and may change
// between turns without invalidating history.
type Settings struct {
	Model    string
	Style    string
	Safety   string
	Audience string
	Length   string

	Temperature float32
	MaxTokens   int
}
