package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatzone/internal/call"
)

type CallHandler struct {
	mgr *call.Manager
}

func NewCallHandler(mgr *call.Manager) *CallHandler {
	return &CallHandler{mgr: mgr}
}

type startCallRequest struct {
	Media call.Media `json:"media"`
}

// StartCall begins a simulated outgoing call in a chat.
func (h *CallHandler) StartCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	c, ok := h.mgr.Start(chi.URLParam(r, "chatId"), req.Media)
	if !ok {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// AcceptCall answers a ringing incoming call.
func (h *CallHandler) AcceptCall(w http.ResponseWriter, r *http.Request) {
	c, ok := h.mgr.Accept(chi.URLParam(r, "callId"))
	if !ok {
		writeError(w, http.StatusNotFound, "no ringing call")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeclineCall rejects a ringing incoming call.
func (h *CallHandler) DeclineCall(w http.ResponseWriter, r *http.Request) {
	c, ok := h.mgr.Decline(chi.URLParam(r, "callId"))
	if !ok {
		writeError(w, http.StatusNotFound, "no ringing call")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// EndCall hangs up an active call; the response carries the final duration.
func (h *CallHandler) EndCall(w http.ResponseWriter, r *http.Request) {
	c, ok := h.mgr.End(chi.URLParam(r, "callId"))
	if !ok {
		writeError(w, http.StatusNotFound, "no active call")
		return
	}
	writeJSON(w, http.StatusOK, c)
}
