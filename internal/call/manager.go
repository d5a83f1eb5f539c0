// Package call simulates voice/video calls: timers and state transitions
// only, no media and no signaling. Calls never outlive the process.
package call

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatzone/internal/logger"
	"github.com/chatzone/internal/model"
)

type Media string

const (
	MediaAudio Media = "audio"
	MediaVideo Media = "video"
)

type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

type State string

const (
	StateRinging State = "ringing"
	StateActive  State = "active"
	StateEnded   State = "ended"
)

// Call is one simulated call. Duration is filled in mm:ss form once the
// call has ended; a declined call ends with Missed and 00:00.
type Call struct {
	ID        string              `json:"id"`
	ChatID    string              `json:"chat_id"`
	FromID    string              `json:"from_id"`
	Media     Media               `json:"media"`
	Direction Direction           `json:"direction"`
	State     State               `json:"state"`
	StartedAt time.Time           `json:"started_at,omitempty"`
	Duration  string              `json:"duration,omitempty"`
	Outcome   model.CallDirection `json:"outcome,omitempty"`
}

// Events is the fan-out surface for call state changes. Implemented by the
// websocket hub; may be nil.
type Events interface {
	IncomingCall(c Call, from model.User)
	CallStarted(c Call)
	CallEnded(c Call)
}

// Directory is the read surface the manager needs from the conversation
// store: chat membership for ring targets and the local identity.
type Directory interface {
	Chat(id string) (model.Chat, bool)
	CurrentUser() model.User
}

// Manager owns the simulated call state. At most a handful of calls exist
// at once; everything lives in one mutex-guarded map.
type Manager struct {
	mu     sync.Mutex
	calls  map[string]*Call
	dir    Directory
	events Events
}

func NewManager(dir Directory, events Events) *Manager {
	return &Manager{
		calls:  make(map[string]*Call),
		dir:    dir,
		events: events,
	}
}

// Start begins an outgoing call in the chat. The call is active right away:
// the far side is a fixture, there is nothing to wait for.
func (m *Manager) Start(chatID string, media Media) (Call, bool) {
	if _, ok := m.dir.Chat(chatID); !ok {
		return Call{}, false
	}
	if media != MediaVideo {
		media = MediaAudio
	}
	c := &Call{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		FromID:    m.dir.CurrentUser().ID,
		Media:     media,
		Direction: DirectionOutgoing,
		State:     StateActive,
		StartedAt: time.Now(),
	}
	m.mu.Lock()
	m.calls[c.ID] = c
	snap := *c
	m.mu.Unlock()

	if m.events != nil {
		m.events.CallStarted(snap)
	}
	return snap, true
}

// Ring simulates an incoming call from a chat participant. No-op when the
// chat or the caller is unknown.
func (m *Manager) Ring(chatID, fromUserID string) (Call, bool) {
	chat, ok := m.dir.Chat(chatID)
	if !ok {
		return Call{}, false
	}
	var from *model.User
	for i := range chat.Participants {
		if chat.Participants[i].ID == fromUserID {
			from = &chat.Participants[i]
			break
		}
	}
	if from == nil || from.ID == m.dir.CurrentUser().ID {
		return Call{}, false
	}

	c := &Call{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		FromID:    from.ID,
		Media:     MediaVideo,
		Direction: DirectionIncoming,
		State:     StateRinging,
	}
	m.mu.Lock()
	m.calls[c.ID] = c
	snap := *c
	m.mu.Unlock()

	if m.events != nil {
		m.events.IncomingCall(snap, *from)
	}
	return snap, true
}

// ScheduleRing arms the demo incoming call: after delay the given
// participant rings the current user. A delay of zero disables it.
func (m *Manager) ScheduleRing(chatID, fromUserID string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	time.AfterFunc(delay, func() {
		if _, ok := m.Ring(chatID, fromUserID); ok {
			logger.Infof("call: simulated incoming call in chat=%s from=%s", chatID, fromUserID)
		}
	})
}

// Accept answers a ringing incoming call.
func (m *Manager) Accept(callID string) (Call, bool) {
	m.mu.Lock()
	c, ok := m.calls[callID]
	if !ok || c.State != StateRinging {
		m.mu.Unlock()
		return Call{}, false
	}
	c.State = StateActive
	c.StartedAt = time.Now()
	snap := *c
	m.mu.Unlock()

	if m.events != nil {
		m.events.CallStarted(snap)
	}
	return snap, true
}

// Decline rejects a ringing incoming call. The outcome is a missed call.
func (m *Manager) Decline(callID string) (Call, bool) {
	m.mu.Lock()
	c, ok := m.calls[callID]
	if !ok || c.State != StateRinging {
		m.mu.Unlock()
		return Call{}, false
	}
	c.State = StateEnded
	c.Duration = FormatDuration(0)
	c.Outcome = model.CallMissed
	snap := *c
	delete(m.calls, callID)
	m.mu.Unlock()

	if m.events != nil {
		m.events.CallEnded(snap)
	}
	return snap, true
}

// End hangs up an active call and reports its elapsed duration.
func (m *Manager) End(callID string) (Call, bool) {
	m.mu.Lock()
	c, ok := m.calls[callID]
	if !ok || c.State != StateActive {
		m.mu.Unlock()
		return Call{}, false
	}
	c.State = StateEnded
	c.Duration = FormatDuration(time.Since(c.StartedAt))
	if c.Direction == DirectionIncoming {
		c.Outcome = model.CallIncoming
	} else {
		c.Outcome = model.CallOutgoing
	}
	snap := *c
	delete(m.calls, callID)
	m.mu.Unlock()

	if m.events != nil {
		m.events.CallEnded(snap)
	}
	return snap, true
}

// Active returns a snapshot of the call, if it is still known.
func (m *Manager) Active(callID string) (Call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[callID]
	if !ok {
		return Call{}, false
	}
	return *c, true
}

// FormatDuration renders an elapsed time as mm:ss, the way the call overlay
// displays it.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
