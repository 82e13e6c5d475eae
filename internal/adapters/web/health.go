package web

import "net/http"

// health handles GET /health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Health(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "HEALTH_CHECK_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// stats handles GET /api/stats.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "STATS_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}
