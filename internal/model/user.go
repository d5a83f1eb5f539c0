package model

// User is a chat participant. Users are seeded once at startup and never
// deleted; only the local current user's AvatarURL and StatusMessage change
// after that.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url"`
	StatusMessage string `json:"status_message,omitempty"`
	IsAI          bool   `json:"is_ai,omitempty"`
}

// UserPatch is a partial profile update. Nil fields are left unchanged.
// Only the mutable fields of User appear here.
type UserPatch struct {
	AvatarURL     *string `json:"avatar_url,omitempty"`
	StatusMessage *string `json:"status_message,omitempty"`
}
