package web

import "net/http"

// searchOutlets handles GET /outlets?query=...
func (h *Handler) searchOutlets(w http.ResponseWriter, r *http.Request) {
	query := trimmedQueryParam(r, "query")
	if query == "" {
		writeError(w, r, "query is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.SearchOutlets(r.Context(), query)
	if err != nil {
		writeError(w, r, err.Error(), "SEARCH_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}
