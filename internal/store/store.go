// Package store owns the authoritative in-memory chat state: the known
// users, the chats with their message histories, and the current user.
// All mutations go through its operations; one mutation completes before
// the next begins. The AI round trip is the only asynchronous leg.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatzone/internal/logger"
	"github.com/chatzone/internal/model"
	"github.com/chatzone/internal/seed"
)

// Responder produces AI replies. Implementations never fail: missing
// configuration or a transport error degrades to a fallback text, so the
// store has no error branch on this path.
type Responder interface {
	GetResponse(ctx context.Context, prompt string) (text string, grounding *model.GroundingMetadata)
}

// Notifier receives state-transition events for fan-out to connected
// clients. Implemented by the websocket hub; may be nil. Calls are made
// outside the store lock.
type Notifier interface {
	MessageAppended(chatID string, msg model.Message)
	ChatCreated(chat model.Chat)
	ReactionToggled(chatID, messageID string, r model.Reaction, added bool)
	TypingChanged(chatID string, user model.User, typing bool)
	UserUpdated(user model.User)
}

// Store holds the chat state. New chats are prepended so the collection
// stays most-recent-first for display.
type Store struct {
	mu           sync.Mutex
	users        []model.User
	chats        []*model.Chat
	currentUser  model.User
	activeChatID string

	responder Responder
	notifier  Notifier

	// aiPending tracks in-flight AI legs so shutdown and tests can drain
	// them. There is no cancellation: a dispatched prompt always runs to
	// completion and lands in its chat by id.
	aiPending sync.WaitGroup
}

// New builds a store from the seed snapshot. The first seeded chat starts
// out active, matching the initial render of the UI.
func New(sd seed.Seed, responder Responder, notifier Notifier) *Store {
	s := &Store{
		users:       append([]model.User(nil), sd.Users...),
		chats:       append([]*model.Chat(nil), sd.Chats...),
		currentUser: sd.CurrentUser,
		responder:   responder,
		notifier:    notifier,
	}
	if len(s.chats) > 0 {
		s.activeChatID = s.chats[0].ID
	}
	return s
}

// Wait blocks until every in-flight AI leg has completed. Used on shutdown;
// a hung collaborator call makes this block, which the caller bounds.
func (s *Store) Wait() {
	s.aiPending.Wait()
}

// --- Reads -----------------------------------------------------------------

// CurrentUser returns a copy of the local user.
func (s *Store) CurrentUser() model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser
}

// ActiveChatID returns the id of the active chat, or "" if none.
func (s *Store) ActiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChatID
}

// Users returns a copy of every known user, the current user included.
func (s *Store) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.User(nil), s.users...)
}

// Contacts returns every known user except the current one.
func (s *Store) Contacts() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID != s.currentUser.ID {
			out = append(out, u)
		}
	}
	return out
}

// Chats returns snapshots of all chats, most-recent-first. The copies are
// detached: a pending AI append cannot race a render.
func (s *Store) Chats() []model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Chat, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, copyChat(c))
	}
	return out
}

// Chat returns a snapshot of one chat by id.
func (s *Store) Chat(id string) (model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.chatLocked(id)
	if c == nil {
		return model.Chat{}, false
	}
	return copyChat(c), true
}

// Message returns a snapshot of one message.
func (s *Store) Message(chatID, messageID string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.chatLocked(chatID)
	if c == nil {
		return model.Message{}, false
	}
	m := messageLocked(c, messageID)
	if m == nil {
		return model.Message{}, false
	}
	return *m, true
}

// --- Operations ------------------------------------------------------------

// SelectChat makes chatID the active chat and resets its unread counter.
// Unknown ids are a stale-UI race and are ignored. Idempotent.
func (s *Store) SelectChat(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.chatLocked(chatID)
	if c == nil {
		return false
	}
	s.activeChatID = c.ID
	c.UnreadCount = 0
	return true
}

// UpdateCurrentUser merges the patch into the current user, last write
// wins, and refreshes the copies embedded in chat participant lists.
func (s *Store) UpdateCurrentUser(patch model.UserPatch) model.User {
	s.mu.Lock()
	if patch.AvatarURL != nil {
		s.currentUser.AvatarURL = *patch.AvatarURL
	}
	if patch.StatusMessage != nil {
		s.currentUser.StatusMessage = *patch.StatusMessage
	}
	for i := range s.users {
		if s.users[i].ID == s.currentUser.ID {
			s.users[i] = s.currentUser
		}
	}
	for _, c := range s.chats {
		for i := range c.Participants {
			if c.Participants[i].ID == s.currentUser.ID {
				c.Participants[i] = s.currentUser
			}
		}
	}
	u := s.currentUser
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.UserUpdated(u)
	}
	return u
}

// CreateChat creates a chat between the current user and the given users.
// Two chats with the same participant set are the same conversation: when a
// match exists it is activated instead and created is false. Unknown ids
// and the current user's own id are dropped from the selection; an empty
// selection is a no-op returning (nil, false).
func (s *Store) CreateChat(participantIDs []string) (*model.Chat, bool) {
	defer logger.DeferLogDuration("store.CreateChat", time.Now())()

	s.mu.Lock()
	selected := s.selectUsersLocked(participantIDs)
	if len(selected) == 0 {
		s.mu.Unlock()
		return nil, false
	}

	all := append([]model.User{s.currentUser}, selected...)
	wantIDs := sortedIDs(all)
	for _, c := range s.chats {
		if idSetEqual(sortedIDs(c.Participants), wantIDs) {
			s.activeChatID = c.ID
			snap := copyChat(c)
			s.mu.Unlock()
			return &snap, false
		}
	}

	c := &model.Chat{
		ID:           uuid.New().String(),
		Type:         model.ChatTypePrivate,
		Name:         selected[0].Name,
		AvatarURL:    selected[0].AvatarURL,
		Participants: all,
		Messages:     []model.Message{},
		UnreadCount:  0,
	}
	if len(all) > 2 {
		c.Type = model.ChatTypeGroup
		c.Name = "New Group"
		c.AvatarURL = "https://i.pravatar.cc/150?u=group-" + c.ID
	}
	s.chats = append([]*model.Chat{c}, s.chats...)
	s.activeChatID = c.ID
	snap := copyChat(c)
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.ChatCreated(snap)
	}
	return &snap, true
}

// SendMessage appends a message from the current user to the chat. For an
// AI chat and a text message it additionally dispatches the AI leg; the
// user's own message is appended and observable before the responder is
// invoked. Unknown chat ids and unsupported content types are a no-op.
func (s *Store) SendMessage(chatID, content string, ctype model.ContentType) *model.Message {
	defer logger.DeferLogDuration("store.SendMessage", time.Now())()

	switch ctype {
	case model.ContentTypeText, model.ContentTypeImage, model.ContentTypeAudio:
	default:
		return nil
	}

	s.mu.Lock()
	c := s.chatLocked(chatID)
	if c == nil {
		s.mu.Unlock()
		return nil
	}

	msg := model.Message{
		ID:        uuid.New().String(),
		SenderID:  s.currentUser.ID,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		Reactions: []model.Reaction{},
		Type:      ctype,
	}
	s.appendLocked(c, msg)

	var aiUser *model.User
	if c.Type == model.ChatTypeAI && ctype == model.ContentTypeText && s.responder != nil {
		aiUser = c.AIParticipant()
	}
	if aiUser != nil {
		c.TypingParticipants = append(c.TypingParticipants, *aiUser)
	}
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.MessageAppended(chatID, msg)
		if aiUser != nil {
			s.notifier.TypingChanged(chatID, *aiUser, true)
		}
	}
	if aiUser != nil {
		s.aiPending.Add(1)
		go s.aiReply(chatID, *aiUser, content)
	}
	return &msg
}

// aiReply runs the AI leg of a send: ask the responder, then apply the
// reply against current state by chat id. The target may have become
// inactive in the meantime; the reply still lands in the right chat.
func (s *Store) aiReply(chatID string, aiUser model.User, prompt string) {
	defer s.aiPending.Done()

	// Deliberately unbounded: the collaborator imposes no timeout and no
	// cancellation is exposed once a prompt is dispatched.
	text, grounding := s.responder.GetResponse(context.Background(), prompt)

	msg := model.Message{
		ID:                uuid.New().String(),
		SenderID:          aiUser.ID,
		Content:           text,
		Timestamp:         time.Now().UnixMilli(),
		Reactions:         []model.Reaction{},
		Type:              model.ContentTypeText,
		GroundingMetadata: grounding,
	}

	s.mu.Lock()
	c := s.chatLocked(chatID)
	if c == nil {
		s.mu.Unlock()
		return
	}
	removeTypingLocked(c, aiUser.ID)
	s.appendLocked(c, msg)
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.TypingChanged(chatID, aiUser, false)
		s.notifier.MessageAppended(chatID, msg)
	}
}

// ToggleReaction flips the (emoji, byUserID) pair on a message: present →
// removed, absent → added. Strict XOR, never a counter. Unknown chat or
// message ids are a stale-UI race and are ignored.
func (s *Store) ToggleReaction(chatID, messageID, emoji, byUserID string) (added, ok bool) {
	s.mu.Lock()
	c := s.chatLocked(chatID)
	if c == nil {
		s.mu.Unlock()
		return false, false
	}
	m := messageLocked(c, messageID)
	if m == nil {
		s.mu.Unlock()
		return false, false
	}

	if m.HasReaction(emoji, byUserID) {
		kept := make([]model.Reaction, 0, len(m.Reactions)-1)
		for _, r := range m.Reactions {
			if r.Emoji == emoji && r.UserID == byUserID {
				continue
			}
			kept = append(kept, r)
		}
		m.Reactions = kept
	} else {
		m.Reactions = append(append([]model.Reaction(nil), m.Reactions...), model.Reaction{Emoji: emoji, UserID: byUserID})
		added = true
	}
	// Keep the lastMessage cache coherent when the tail was the target.
	if c.LastMessage != nil && c.LastMessage.ID == messageID {
		last := *m
		c.LastMessage = &last
	}
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.ReactionToggled(chatID, messageID, model.Reaction{Emoji: emoji, UserID: byUserID}, added)
	}
	return added, true
}

// --- Internals -------------------------------------------------------------

func (s *Store) chatLocked(id string) *model.Chat {
	for _, c := range s.chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// appendLocked appends msg and updates the lastMessage cache in the same
// transition. A message from someone other than the current user landing in
// an inactive chat bumps the unread counter.
func (s *Store) appendLocked(c *model.Chat, msg model.Message) {
	c.Messages = append(c.Messages, msg)
	last := msg
	c.LastMessage = &last
	if msg.SenderID != s.currentUser.ID && c.ID != s.activeChatID {
		c.UnreadCount++
	}
}

func (s *Store) selectUsersLocked(ids []string) []model.User {
	seen := make(map[string]struct{}, len(ids))
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == s.currentUser.ID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		for _, u := range s.users {
			if u.ID == id {
				seen[id] = struct{}{}
				out = append(out, u)
				break
			}
		}
	}
	return out
}

func messageLocked(c *model.Chat, messageID string) *model.Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].ID == messageID {
			return &c.Messages[i]
		}
	}
	return nil
}

func removeTypingLocked(c *model.Chat, userID string) {
	for i := range c.TypingParticipants {
		if c.TypingParticipants[i].ID == userID {
			c.TypingParticipants = append(c.TypingParticipants[:i], c.TypingParticipants[i+1:]...)
			return
		}
	}
}

func copyChat(c *model.Chat) model.Chat {
	out := *c
	out.Participants = append([]model.User(nil), c.Participants...)
	out.Messages = append([]model.Message(nil), c.Messages...)
	if c.LastMessage != nil {
		last := *c.LastMessage
		out.LastMessage = &last
	}
	if c.TypingParticipants != nil {
		out.TypingParticipants = append([]model.User(nil), c.TypingParticipants...)
	}
	return out
}

func sortedIDs(users []model.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	sort.Strings(ids)
	return ids
}

func idSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
