package web

import (
	"net/http"
	"strconv"
)

// searchProducts handles GET /products?query=...&k=...
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	query := trimmedQueryParam(r, "query")
	if query == "" {
		writeError(w, r, "query is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	k := -1 // unset: let the product index apply its own default
	if raw := trimmedQueryParam(r, "k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, "k must be a non-negative integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		k = n
	}

	result, err := h.svc.SearchProducts(r.Context(), query, k)
	if err != nil {
		writeError(w, r, err.Error(), "SEARCH_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}
