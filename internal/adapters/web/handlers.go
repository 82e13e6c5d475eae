package web

import (
	"net/http"
	"strings"

	"catalog-agent/internal/app"

	"github.com/go-chi/chi/v5"
)

// maxChatBodyBytes bounds POST /api/chat request bodies (spec §6).
const maxChatBodyBytes = 16 * 1024

// Handler wires the application service to the HTTP surface described in
// spec §6: a single chat endpoint plus direct-access endpoints for each
// underlying tool, and two status endpoints.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler builds the chi router for the catalog agent's HTTP API.
// allowedOrigins is the comma-separated CORS_ORIGINS value; an empty
// string disables CORS entirely.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/health", h.health)
	r.Get("/api/stats", h.stats)
	r.Get("/products", h.searchProducts)
	r.Get("/outlets", h.searchOutlets)
	r.Get("/calculate", h.calculate)

	r.With(RequestBodyLimit(maxChatBodyBytes)).Post("/api/chat", h.chat)

	h.router = r
	return r
}

func trimmedQueryParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
