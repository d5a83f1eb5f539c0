package ws

import (
	"context"
	"sync"

	"github.com/chatzone/internal/call"
	"github.com/chatzone/internal/logger"
	"github.com/chatzone/internal/model"
)

// Options tunes connection handling; zero values fall back to defaults.
type Options struct {
	MaxConnections int
	SendBufferSize int
	WriteTimeout   int // seconds
	PongTimeout    int // seconds
	MaxMessageSize int
}

func (o Options) withDefaults() Options {
	if o.MaxConnections <= 0 {
		o.MaxConnections = 10000
	}
	if o.SendBufferSize <= 0 {
		o.SendBufferSize = 256
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = 60
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
	return o
}

// Hub fans state-transition events out to every connected client. It is the
// push half of the UI contract: intents arrive over HTTP, re-render events
// leave through here. It implements the store's Notifier and the call
// manager's Events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	opts    Options

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(opts Options) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		opts:       opts.withDefaults(),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// Run processes register/unregister until ctx is cancelled, then closes
// every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) shutdown() {
	// Collect clients under the lock; network I/O happens outside it.
	h.mu.Lock()
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	for _, c := range all {
		c.Wait()
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if len(h.clients) >= h.opts.MaxConnections {
		h.mu.Unlock()
		logger.Errorf("ws connection limit reached (%d), rejecting user=%s", h.opts.MaxConnections, c.userID)
		c.Close()
		return
	}
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	logger.Debugf("ws client connected user=%s total=%d", c.userID, total)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Broadcast delivers msg to every connected client. Slow consumers whose
// send buffer is full are skipped rather than blocked on.
func (h *Hub) Broadcast(msg OutgoingMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		h.sendToClient(c, msg)
	}
}

func (h *Hub) sendToClient(c *Client, msg OutgoingMessage) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		logger.Errorf("ws send buffer full user=%s, dropping %s", c.userID, msg.Type)
	}
}

// HandleMessage dispatches a client frame. The only accepted intent over
// the socket is typing; everything else answers with an error frame.
func (h *Hub) HandleMessage(ctx context.Context, c *Client, msg IncomingMessage) {
	switch msg.Type {
	case EventTyping:
		if msg.ChatID == "" {
			h.sendToClient(c, OutgoingMessage{Type: EventError, Payload: "chat_id required"})
			return
		}
		h.Broadcast(OutgoingMessage{Type: EventTyping, Payload: TypingPayload{
			ChatID: msg.ChatID,
			UserID: c.userID,
			Typing: msg.Typing,
		}})
	default:
		h.sendToClient(c, OutgoingMessage{Type: EventError, Payload: "unknown event type"})
	}
}

// --- store.Notifier --------------------------------------------------------

func (h *Hub) MessageAppended(chatID string, msg model.Message) {
	h.Broadcast(OutgoingMessage{Type: EventNewMessage, Payload: NewMessagePayload{ChatID: chatID, Message: msg}})
}

func (h *Hub) ChatCreated(chat model.Chat) {
	h.Broadcast(OutgoingMessage{Type: EventChatCreated, Payload: ChatCreatedPayload{Chat: chat}})
}

func (h *Hub) ReactionToggled(chatID, messageID string, r model.Reaction, added bool) {
	ev := EventReactionRemoved
	if added {
		ev = EventReactionAdded
	}
	h.Broadcast(OutgoingMessage{Type: ev, Payload: ReactionPayload{
		ChatID:    chatID,
		MessageID: messageID,
		UserID:    r.UserID,
		Emoji:     r.Emoji,
	}})
}

func (h *Hub) TypingChanged(chatID string, user model.User, typing bool) {
	h.Broadcast(OutgoingMessage{Type: EventTyping, Payload: TypingPayload{
		ChatID: chatID,
		UserID: user.ID,
		Typing: typing,
	}})
}

func (h *Hub) UserUpdated(user model.User) {
	h.Broadcast(OutgoingMessage{Type: EventUserUpdated, Payload: UserUpdatedPayload{User: user}})
}

// --- call.Events -----------------------------------------------------------

func (h *Hub) IncomingCall(c call.Call, from model.User) {
	h.Broadcast(OutgoingMessage{Type: EventIncomingCall, Payload: CallPayload{Call: c, From: &from}})
}

func (h *Hub) CallStarted(c call.Call) {
	h.Broadcast(OutgoingMessage{Type: EventCallStarted, Payload: CallPayload{Call: c}})
}

func (h *Hub) CallEnded(c call.Call) {
	h.Broadcast(OutgoingMessage{Type: EventCallEnded, Payload: CallPayload{Call: c}})
}
