package web

import "net/http"

// calculate handles GET /calculate?expression=...
func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	expr := trimmedQueryParam(r, "expression")
	if expr == "" {
		expr = trimmedQueryParam(r, "text")
	}
	if expr == "" {
		writeError(w, r, "expression is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Calculate(r.Context(), expr)
	if err != nil {
		writeError(w, r, err.Error(), "CALCULATE_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}
