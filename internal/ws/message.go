package ws

import (
	"github.com/chatzone/internal/call"
	"github.com/chatzone/internal/model"
)

type EventType string

const (
	EventNewMessage      EventType = "new_message"
	EventChatCreated     EventType = "chat_created"
	EventReactionAdded   EventType = "reaction_added"
	EventReactionRemoved EventType = "reaction_removed"
	EventTyping          EventType = "typing"
	EventUserUpdated     EventType = "user_updated"
	EventIncomingCall    EventType = "incoming_call"
	EventCallStarted     EventType = "call_started"
	EventCallEnded       EventType = "call_ended"
	EventError           EventType = "error"
)

// IncomingMessage is what a client sends to the server. Only typing frames
// are accepted: every other intent goes through the HTTP surface.
type IncomingMessage struct {
	Type   EventType `json:"type"`
	ChatID string    `json:"chat_id,omitempty"`
	Typing bool      `json:"typing,omitempty"`
}

// OutgoingMessage is what the server pushes to clients.
// Payload uses typed structs to avoid heap-heavy map[string]any.
type OutgoingMessage struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// NewMessagePayload is pushed when a message is appended to a chat,
// including the asynchronous AI reply leg.
type NewMessagePayload struct {
	ChatID  string        `json:"chat_id"`
	Message model.Message `json:"message"`
}

// ChatCreatedPayload is pushed when a new chat is created.
type ChatCreatedPayload struct {
	Chat model.Chat `json:"chat"`
}

// ReactionPayload is pushed when a reaction is toggled on or off.
type ReactionPayload struct {
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Emoji     string `json:"emoji"`
}

// TypingPayload is pushed while a participant (a client or the AI identity
// awaiting its reply) is typing. Transient; never persisted.
type TypingPayload struct {
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
	Typing bool   `json:"typing"`
}

// UserUpdatedPayload is pushed when the current user's profile changes.
type UserUpdatedPayload struct {
	User model.User `json:"user"`
}

// CallPayload is pushed on simulated call transitions. From is set only for
// incoming_call.
type CallPayload struct {
	Call call.Call   `json:"call"`
	From *model.User `json:"from,omitempty"`
}
