package model

type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
	ChatTypeAI      ChatType = "ai"
)

// Chat is a conversation with fixed membership and an append-only message
// history. Participants always include the current user exactly once; an
// AI chat has exactly two participants, the current user and the AI identity.
// LastMessage caches the final element of Messages and is updated in the
// same transition as any append. TypingParticipants is transient state and
// is never part of the seed.
type Chat struct {
	ID                 string    `json:"id"`
	Type               ChatType  `json:"type"`
	Name               string    `json:"name"`
	AvatarURL          string    `json:"avatar_url"`
	Participants       []User    `json:"participants"`
	Messages           []Message `json:"messages"`
	LastMessage        *Message  `json:"last_message,omitempty"`
	UnreadCount        int       `json:"unread_count"`
	TypingParticipants []User    `json:"typing_participants,omitempty"`
}

// AIParticipant returns the participant flagged as the AI identity, or nil.
func (c *Chat) AIParticipant() *User {
	for i := range c.Participants {
		if c.Participants[i].IsAI {
			return &c.Participants[i]
		}
	}
	return nil
}

// HasParticipant reports whether userID is a member of the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for i := range c.Participants {
		if c.Participants[i].ID == userID {
			return true
		}
	}
	return false
}
