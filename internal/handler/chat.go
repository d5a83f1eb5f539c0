package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatzone/internal/model"
	"github.com/chatzone/internal/store"
)

type ChatHandler struct {
	store *store.Store
}

func NewChatHandler(st *store.Store) *ChatHandler {
	return &ChatHandler{store: st}
}

type chatListResponse struct {
	Chats        []model.Chat `json:"chats"`
	ActiveChatID string       `json:"active_chat_id,omitempty"`
}

type createChatRequest struct {
	MemberIDs []string `json:"member_ids"`
}

type createChatResponse struct {
	Chat    model.Chat `json:"chat"`
	Created bool       `json:"created"`
}

// GetChats returns every chat, most-recent-first, plus the active chat id.
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chatListResponse{
		Chats:        h.store.Chats(),
		ActiveChatID: h.store.ActiveChatID(),
	})
}

// GetChat returns one chat by id.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	c, ok := h.store.Chat(chi.URLParam(r, "chatId"))
	if !ok {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateChat creates (or finds) the conversation between the current user
// and the selected members. Creation is idempotent on the participant set:
// an existing match is activated and returned with created=false.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	c, created := h.store.CreateChat(req.MemberIDs)
	if c == nil {
		writeError(w, http.StatusBadRequest, "no valid members selected")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, createChatResponse{Chat: *c, Created: created})
}

// SelectChat activates a chat and resets its unread counter. A stale id is
// tolerated and reported as not found.
func (h *ChatHandler) SelectChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatId")
	if !h.store.SelectChat(chatID) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	c, _ := h.store.Chat(chatID)
	writeJSON(w, http.StatusOK, c)
}
