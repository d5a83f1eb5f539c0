package handler

import (
	"net/http"
)

// AIInfo is what the front end needs to know about the AI collaborator.
type AIInfo struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model"`
}

type ConfigHandler struct {
	ai AIInfo
}

func NewConfigHandler(ai AIInfo) *ConfigHandler {
	return &ConfigHandler{ai: ai}
}

// GetConfig exposes client-relevant settings.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ai": h.ai})
}
