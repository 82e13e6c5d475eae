package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"catalog-agent/internal/app"
)

type chatRequestBody struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// chat handles POST /api/chat: decode {question, session_id?}, run it through
// the orchestrator's full request lifecycle, and return the ResponseEnvelope.
func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var body chatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Question) == "" {
		writeError(w, r, "question is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	resp, err := h.svc.Chat(r.Context(), app.ChatRequest{
		Question:  body.Question,
		SessionID: body.SessionID,
	})
	if err != nil {
		writeError(w, r, err.Error(), "CHAT_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp)
}
