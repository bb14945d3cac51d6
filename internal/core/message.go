package core

import "time"

// MessageKind distinguishes who authored a chat message.
type MessageKind string

const (
	KindSystem MessageKind = "system"
	KindUser   MessageKind = "user"
	KindAI     MessageKind = "ai"
)

// AIUsername is the author name attached to AI-generated messages.
const AIUsername = "AI Assistant"

// Message is the domain model for a chat message. Messages are
// constructed, broadcast and discarded; they are never stored.
type Message struct {
	Username  string
	Text      string
	Kind      MessageKind
	CreatedAt time.Time
}
