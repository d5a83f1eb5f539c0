package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/chatzone/internal/logger"
	"github.com/chatzone/internal/store"
	"github.com/chatzone/internal/ws"
)

type WSHandler struct {
	hub            *ws.Hub
	store          *store.Store
	allowedOrigins string
}

// NewWSHandler creates the WebSocket upgrade handler. allowedOrigins uses
// the CORS form (comma-separated or "*").
func NewWSHandler(hub *ws.Hub, st *store.Store, allowedOrigins string) *WSHandler {
	return &WSHandler{hub: hub, store: st, allowedOrigins: strings.TrimSpace(allowedOrigins)}
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	if h.allowedOrigins == "*" || h.allowedOrigins == "" {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, o := range strings.Split(h.allowedOrigins, ",") {
		if strings.TrimSpace(o) == origin {
			return true
		}
	}
	return false
}

// ServeWS upgrades the connection and attaches it to the hub. With no
// authentication in this system, the connection acts as the seeded current
// user unless ?user_id= names another fixture.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = h.store.CurrentUser().ID
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return h.checkOrigin(r) },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("ws upgrade: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := ws.NewClient(h.hub, conn, userID)
	client.Start(ctx, cancel)
	h.hub.Register(client)
}
