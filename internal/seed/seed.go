// Package seed is the mock data provider: a static snapshot of users and
// chats used to populate the conversation store at startup.
package seed

import (
	"time"

	"github.com/chatzone/internal/model"
)

// AIUserID is the sentinel identity AI replies are attributed to.
const AIUserID = "gemini-ai"

// CurrentUserID is the seeded local user.
const CurrentUserID = "user-1"

// Seed is the initial snapshot. Users contains every known user, the
// current user and the AI identity included.
type Seed struct {
	CurrentUser model.User
	Users       []model.User
	Chats       []*model.Chat
}

// Load builds the fixture snapshot. Infallible by contract; called exactly
// once at startup. Message timestamps are relative to the load time so the
// thread looks recent.
func Load() Seed {
	now := time.Now().UnixMilli()

	currentUser := model.User{
		ID:            CurrentUserID,
		Name:          "You",
		AvatarURL:     "https://i.pravatar.cc/150?u=user-1",
		StatusMessage: "Beep boop, I am a human.",
	}
	alice := model.User{
		ID:            "user-2",
		Name:          "Alice",
		AvatarURL:     "https://i.pravatar.cc/150?u=user-2",
		StatusMessage: "Exploring the world!",
	}
	bob := model.User{
		ID:            "user-3",
		Name:          "Bob",
		AvatarURL:     "https://i.pravatar.cc/150?u=user-3",
		StatusMessage: "Coding something cool.",
	}
	gemini := model.User{
		ID:            AIUserID,
		Name:          "Gemini AI",
		AvatarURL:     "https://www.gstatic.com/lamda/images/gemini_sparkle_v002_180f24a682a7a5a8d296.gif",
		StatusMessage: "Your friendly AI assistant.",
		IsAI:          true,
	}
	charlie := model.User{
		ID:            "user-4",
		Name:          "Charlie",
		AvatarURL:     "https://i.pravatar.cc/150?u=user-4",
		StatusMessage: "On a coffee break.",
	}

	aliceChat := &model.Chat{
		ID:           "chat-1",
		Type:         model.ChatTypePrivate,
		Name:         alice.Name,
		AvatarURL:    alice.AvatarURL,
		Participants: []model.User{currentUser, alice},
		Messages: []model.Message{
			{
				ID:        "msg-1",
				SenderID:  alice.ID,
				Content:   "Hey there! How are you?",
				Timestamp: now - 2*time.Hour.Milliseconds(),
				Reactions: []model.Reaction{},
				Type:      model.ContentTypeText,
			},
			{
				ID:        "msg-2",
				SenderID:  currentUser.ID,
				Content:   "Doing great, Alice! Just setting up this chat app. You?",
				Timestamp: now - time.Hour.Milliseconds(),
				Reactions: []model.Reaction{{Emoji: "👍", UserID: alice.ID}},
				Type:      model.ContentTypeText,
			},
		},
		UnreadCount: 0,
	}

	aiChat := &model.Chat{
		ID:           "chat-2",
		Type:         model.ChatTypeAI,
		Name:         gemini.Name,
		AvatarURL:    gemini.AvatarURL,
		Participants: []model.User{currentUser, gemini},
		Messages: []model.Message{
			{
				ID:        "msg-3",
				SenderID:  gemini.ID,
				Content:   "Hello! I am Gemini. Ask me anything about recent events or search for information!",
				Timestamp: now - 5*time.Minute.Milliseconds(),
				Reactions: []model.Reaction{},
				Type:      model.ContentTypeText,
			},
		},
		UnreadCount: 1,
	}

	groupChat := &model.Chat{
		ID:           "chat-3",
		Type:         model.ChatTypeGroup,
		Name:         "Project Team",
		AvatarURL:    "https://i.pravatar.cc/150?u=group-1",
		Participants: []model.User{currentUser, alice, bob},
		Messages: []model.Message{
			{
				ID:        "msg-4",
				SenderID:  bob.ID,
				Content:   "Hey team, how's the project going?",
				Timestamp: now - 48*time.Hour.Milliseconds(),
				Reactions: []model.Reaction{},
				Type:      model.ContentTypeText,
			},
		},
		UnreadCount: 3,
	}

	chats := []*model.Chat{aliceChat, aiChat, groupChat}
	for _, c := range chats {
		last := c.Messages[len(c.Messages)-1]
		c.LastMessage = &last
	}

	return Seed{
		CurrentUser: currentUser,
		Users:       []model.User{currentUser, alice, bob, gemini, charlie},
		Chats:       chats,
	}
}
