package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatzone/internal/model"
	"github.com/chatzone/internal/store"
)

type MessageHandler struct {
	store *store.Store
}

func NewMessageHandler(st *store.Store) *MessageHandler {
	return &MessageHandler{store: st}
}

type sendMessageRequest struct {
	Content     string            `json:"content"`
	ContentType model.ContentType `json:"content_type"`
}

type toggleReactionRequest struct {
	Emoji string `json:"emoji"`
}

type toggleReactionResponse struct {
	Added   bool          `json:"added"`
	Message model.Message `json:"message"`
}

// GetMessages returns a chat's messages, oldest first. An optional ?limit=
// caps the result to the newest N.
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	c, ok := h.store.Chat(chi.URLParam(r, "chatId"))
	if !ok {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	msgs := c.Messages
	if limit := queryInt(r, "limit", 0); limit > 0 && limit < len(msgs) {
		msgs = msgs[len(msgs)-limit:]
	}
	writeJSON(w, http.StatusOK, msgs)
}

// SendMessage appends a message from the current user. For an AI chat and a
// text message the reply arrives later over the websocket; the response here
// carries only the user's own message.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.ContentType == "" {
		req.ContentType = model.ContentTypeText
	}
	switch req.ContentType {
	case model.ContentTypeText, model.ContentTypeImage, model.ContentTypeAudio:
	default:
		writeError(w, http.StatusBadRequest, "unsupported content type")
		return
	}

	msg := h.store.SendMessage(chi.URLParam(r, "chatId"), req.Content, req.ContentType)
	if msg == nil {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ToggleReaction flips the current user's (emoji, user) pair on a message.
func (h *MessageHandler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	var req toggleReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Emoji == "" {
		writeError(w, http.StatusBadRequest, "emoji required")
		return
	}

	chatID := chi.URLParam(r, "chatId")
	messageID := chi.URLParam(r, "messageId")
	added, ok := h.store.ToggleReaction(chatID, messageID, req.Emoji, h.store.CurrentUser().ID)
	if !ok {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	msg, _ := h.store.Message(chatID, messageID)
	writeJSON(w, http.StatusOK, toggleReactionResponse{Added: added, Message: msg})
}

// GetReactions returns the reactions on a message.
func (h *MessageHandler) GetReactions(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.store.Message(chi.URLParam(r, "chatId"), chi.URLParam(r, "messageId"))
	if !ok {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	writeJSON(w, http.StatusOK, msg.Reactions)
}
