package model

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeAudio ContentType = "audio"

	// Reserved variants, rendered by clients but never produced by any
	// store operation.
	ContentTypeFile    ContentType = "file"
	ContentTypeCallLog ContentType = "call-log"
)

type CallDirection string

const (
	CallMissed   CallDirection = "missed"
	CallOutgoing CallDirection = "outgoing"
	CallIncoming CallDirection = "incoming"
)

// CallInfo annotates a call-log message with the call outcome.
type CallInfo struct {
	Duration string        `json:"duration"`
	Type     CallDirection `json:"type"`
}

// Reaction is identified by the (Emoji, UserID) pair. A user holds at most
// one instance of a given emoji on a given message.
type Reaction struct {
	Emoji  string `json:"emoji"`
	UserID string `json:"user_id"`
}

// GroundingWeb is a single web source reference.
type GroundingWeb struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type GroundingChunk struct {
	Web *GroundingWeb `json:"web,omitempty"`
}

// GroundingMetadata lists the sources an AI reply was grounded on.
type GroundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"grounding_chunks"`
}

// Message is immutable once created except for Reactions, which the store
// mutates via the toggle operation. Content is an opaque string; its meaning
// (plain text or a media reference) is carried by Type.
type Message struct {
	ID                string             `json:"id"`
	SenderID          string             `json:"sender_id"`
	Content           string             `json:"content"`
	Timestamp         int64              `json:"timestamp"` // unix milliseconds
	Reactions         []Reaction         `json:"reactions"`
	Type              ContentType        `json:"type"`
	GroundingMetadata *GroundingMetadata `json:"grounding_metadata,omitempty"`
	CallInfo          *CallInfo          `json:"call_info,omitempty"`
}

// HasReaction reports whether the (emoji, userID) pair is present.
func (m *Message) HasReaction(emoji, userID string) bool {
	for _, r := range m.Reactions {
		if r.Emoji == emoji && r.UserID == userID {
			return true
		}
	}
	return false
}
