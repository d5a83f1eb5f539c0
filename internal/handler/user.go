package handler

import (
	"encoding/json"
	"net/http"

	"github.com/chatzone/internal/model"
	"github.com/chatzone/internal/store"
)

type UserHandler struct {
	store *store.Store
}

func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// GetProfile returns the current user.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.CurrentUser())
}

// UpdateProfile merges a partial patch into the current user's mutable
// fields. No validation beyond shape; last write wins.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch model.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, h.store.UpdateCurrentUser(patch))
}

// GetContacts returns every known user except the current one, the set
// offered by the new-chat picker.
func (h *UserHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Contacts())
}
