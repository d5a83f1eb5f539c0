package call

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatzone/internal/model"
)

type stubDirectory struct {
	me    model.User
	chats map[string]model.Chat
}

func (d *stubDirectory) Chat(id string) (model.Chat, bool) {
	c, ok := d.chats[id]
	return c, ok
}

func (d *stubDirectory) CurrentUser() model.User { return d.me }

type recordingEvents struct {
	mu      sync.Mutex
	entries []string
}

func (e *recordingEvents) record(s string) {
	e.mu.Lock()
	e.entries = append(e.entries, s)
	e.mu.Unlock()
}

func (e *recordingEvents) IncomingCall(c Call, from model.User) { e.record("incoming:" + from.ID) }
func (e *recordingEvents) CallStarted(c Call)                   { e.record("started:" + c.ID) }
func (e *recordingEvents) CallEnded(c Call)                     { e.record("ended:" + c.ID) }

func (e *recordingEvents) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.entries...)
}

func newTestManager(events Events) *Manager {
	me := model.User{ID: "user-1", Name: "You"}
	alice := model.User{ID: "user-2", Name: "Alice"}
	dir := &stubDirectory{
		me: me,
		chats: map[string]model.Chat{
			"chat-1": {ID: "chat-1", Participants: []model.User{me, alice}},
		},
	}
	return NewManager(dir, events)
}

func TestStartAndEnd(t *testing.T) {
	rec := &recordingEvents{}
	m := newTestManager(rec)

	c, ok := m.Start("chat-1", MediaAudio)
	require.True(t, ok)
	assert.Equal(t, StateActive, c.State)
	assert.Equal(t, DirectionOutgoing, c.Direction)
	assert.Equal(t, "user-1", c.FromID)
	assert.False(t, c.StartedAt.IsZero())

	got, ok := m.Active(c.ID)
	require.True(t, ok)
	assert.Equal(t, c.ID, got.ID)

	ended, ok := m.End(c.ID)
	require.True(t, ok)
	assert.Equal(t, StateEnded, ended.State)
	assert.Equal(t, model.CallOutgoing, ended.Outcome)
	assert.Regexp(t, `^\d{2}:\d{2}$`, ended.Duration)

	_, ok = m.Active(c.ID)
	assert.False(t, ok, "ended calls are forgotten")

	assert.Equal(t, []string{"started:" + c.ID, "ended:" + c.ID}, rec.snapshot())
}

func TestStartUnknownChat(t *testing.T) {
	m := newTestManager(nil)
	_, ok := m.Start("ghost", MediaAudio)
	assert.False(t, ok)
}

func TestStartDefaultsToAudio(t *testing.T) {
	m := newTestManager(nil)
	c, ok := m.Start("chat-1", Media("hologram"))
	require.True(t, ok)
	assert.Equal(t, MediaAudio, c.Media)
}

func TestRingAcceptEnd(t *testing.T) {
	rec := &recordingEvents{}
	m := newTestManager(rec)

	c, ok := m.Ring("chat-1", "user-2")
	require.True(t, ok)
	assert.Equal(t, StateRinging, c.State)
	assert.Equal(t, DirectionIncoming, c.Direction)
	assert.Equal(t, MediaVideo, c.Media)
	assert.Equal(t, "user-2", c.FromID)

	accepted, ok := m.Accept(c.ID)
	require.True(t, ok)
	assert.Equal(t, StateActive, accepted.State)

	// Accept twice is a no-op: the call is no longer ringing.
	_, ok = m.Accept(c.ID)
	assert.False(t, ok)

	ended, ok := m.End(c.ID)
	require.True(t, ok)
	assert.Equal(t, model.CallIncoming, ended.Outcome)

	assert.Equal(t, []string{"incoming:user-2", "started:" + c.ID, "ended:" + c.ID}, rec.snapshot())
}

func TestDeclineIsMissed(t *testing.T) {
	m := newTestManager(nil)

	c, ok := m.Ring("chat-1", "user-2")
	require.True(t, ok)

	declined, ok := m.Decline(c.ID)
	require.True(t, ok)
	assert.Equal(t, StateEnded, declined.State)
	assert.Equal(t, model.CallMissed, declined.Outcome)
	assert.Equal(t, "00:00", declined.Duration)

	_, ok = m.Decline(c.ID)
	assert.False(t, ok)
}

func TestRingRejectsNonParticipants(t *testing.T) {
	m := newTestManager(nil)

	_, ok := m.Ring("chat-1", "ghost")
	assert.False(t, ok)

	// The current user cannot ring themselves.
	_, ok = m.Ring("chat-1", "user-1")
	assert.False(t, ok)

	_, ok = m.Ring("ghost", "user-2")
	assert.False(t, ok)
}

func TestEndRequiresActiveCall(t *testing.T) {
	m := newTestManager(nil)

	c, ok := m.Ring("chat-1", "user-2")
	require.True(t, ok)

	// A ringing call cannot be ended, only accepted or declined.
	_, ok = m.End(c.ID)
	assert.False(t, ok)

	_, ok = m.End("ghost")
	assert.False(t, ok)
}

func TestScheduleRing(t *testing.T) {
	rec := &recordingEvents{}
	m := newTestManager(rec)

	m.ScheduleRing("chat-1", "user-2", 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(rec.snapshot()) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, []string{"incoming:user-2"}, rec.snapshot())
}

func TestScheduleRingDisabled(t *testing.T) {
	rec := &recordingEvents{}
	m := newTestManager(rec)

	m.ScheduleRing("chat-1", "user-2", 0)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", FormatDuration(0))
	assert.Equal(t, "00:05", FormatDuration(5*time.Second))
	assert.Equal(t, "01:05", FormatDuration(65*time.Second))
	assert.Equal(t, "60:00", FormatDuration(time.Hour))
	assert.Equal(t, "00:00", FormatDuration(-time.Second))
}
