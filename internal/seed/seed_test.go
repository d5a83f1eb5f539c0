package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatzone/internal/model"
)

func TestLoadShape(t *testing.T) {
	sd := Load()

	assert.Equal(t, CurrentUserID, sd.CurrentUser.ID)
	assert.Len(t, sd.Users, 5)
	require.Len(t, sd.Chats, 3)
	assert.Equal(t, model.ChatTypePrivate, sd.Chats[0].Type)
	assert.Equal(t, model.ChatTypeAI, sd.Chats[1].Type)
	assert.Equal(t, model.ChatTypeGroup, sd.Chats[2].Type)
}

func TestEveryChatContainsCurrentUserOnce(t *testing.T) {
	sd := Load()
	for _, c := range sd.Chats {
		count := 0
		for _, p := range c.Participants {
			if p.ID == CurrentUserID {
				count++
			}
		}
		assert.Equal(t, 1, count, "chat %s", c.ID)
	}
}

func TestLastMessageMatchesTail(t *testing.T) {
	sd := Load()
	for _, c := range sd.Chats {
		require.NotEmpty(t, c.Messages, "chat %s", c.ID)
		require.NotNil(t, c.LastMessage, "chat %s", c.ID)
		assert.Equal(t, c.Messages[len(c.Messages)-1].ID, c.LastMessage.ID, "chat %s", c.ID)
	}
}

func TestAIChatShape(t *testing.T) {
	sd := Load()
	ai := sd.Chats[1]

	require.Len(t, ai.Participants, 2)
	assert.Equal(t, CurrentUserID, ai.Participants[0].ID)
	assert.Equal(t, AIUserID, ai.Participants[1].ID)
	assert.True(t, ai.Participants[1].IsAI)
	assert.Equal(t, 1, ai.UnreadCount)

	// Exactly one user in the roster is the AI identity.
	aiCount := 0
	for _, u := range sd.Users {
		if u.IsAI {
			aiCount++
			assert.Equal(t, AIUserID, u.ID)
		}
	}
	assert.Equal(t, 1, aiCount)
}

func TestTimestampsAreRecentAndOrdered(t *testing.T) {
	sd := Load()
	now := time.Now().UnixMilli()
	for _, c := range sd.Chats {
		var prev int64
		for _, m := range c.Messages {
			assert.LessOrEqual(t, m.Timestamp, now)
			assert.GreaterOrEqual(t, m.Timestamp, prev, "chat %s message %s", c.ID, m.ID)
			prev = m.Timestamp
		}
	}
}

func TestMessagesCarryInitializedReactions(t *testing.T) {
	sd := Load()
	for _, c := range sd.Chats {
		for _, m := range c.Messages {
			assert.NotNil(t, m.Reactions, "chat %s message %s", c.ID, m.ID)
		}
	}
}
