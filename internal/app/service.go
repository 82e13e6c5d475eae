package app

import (
	"context"
)

// ApplicationService is the single interface the Boundary calls. It decouples
// HTTP framing from business logic: implementations must contain no
// http.ResponseWriter, no routing, and no presentation logic of any kind.
type ApplicationService interface {
	// Chat drives one full request lifecycle (spec §4.6): resolve the
	// session, plan, dispatch to tools, compose the final answer, persist
	// the turn, and return the envelope the Boundary serializes verbatim.
	Chat(ctx context.Context, req ChatRequest) (*ResponseEnvelope, error)

	// SearchProducts exposes the Product Index directly for GET /products.
	SearchProducts(ctx context.Context, query string, k int) (*ProductSearchResult, error)

	// SearchOutlets exposes the Outlet SQL Gate directly for GET /outlets.
	SearchOutlets(ctx context.Context, query string) (*OutletSearchResult, error)

	// Calculate exposes the Calculator directly for GET /calculate.
	Calculate(ctx context.Context, text string) (*CalcResultView, error)

	// Stats returns the counters GET /api/stats reports.
	Stats(ctx context.Context) (*StatsResult, error)

	// Health returns the subsystem flags GET /health reports.
	Health(ctx context.Context) (*HealthResult, error)
}
