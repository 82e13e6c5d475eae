package app

import (
	"time"

	"catalog-agent/internal/core"
)

// ChatRequest is the decoded body of POST /api/chat.
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// ResponseEnvelope is what the Boundary emits for a chat request (spec §3, §6).
type ResponseEnvelope struct {
	Response          string           `json:"response"`
	SessionID         string           `json:"session_id"`
	PlanningInfo      core.Decision    `json:"planning_info"`
	CalculationResult *core.CalcResult `json:"calculation_result,omitempty"`
	ProductCount      int              `json:"product_count,omitempty"`
	OutletCount       int              `json:"outlet_count,omitempty"`
}

// ProductSearchResult is returned by SearchProducts.
type ProductSearchResult struct {
	Matches []core.ProductMatch `json:"matches"`
	Count   int                 `json:"count"`
}

// OutletSearchResult is returned by SearchOutlets. It intentionally echoes
// the generated SQL for debugging (spec §6: GET /outlets returns sql).
type OutletSearchResult struct {
	core.OutletAnswer
}

// CalcResultView is a thin alias kept for symmetry with the other *Result
// types; it carries exactly core.CalcResult.
type CalcResultView struct {
	core.CalcResult
}

// StatsResult is returned by GET /api/stats.
type StatsResult struct {
	CatalogSize    int       `json:"catalog_size"`
	CatalogEmpty   bool      `json:"catalog_empty"`
	CatalogBuiltAt time.Time `json:"catalog_built_at"`
	OutletCount    int       `json:"outlet_count"`
	SessionCount   int       `json:"session_count"`
}

// HealthResult is returned by GET /health.
type HealthResult struct {
	Status       string `json:"status"`
	CatalogEmpty bool   `json:"catalog_empty"`
	DatabaseUp   bool   `json:"database_up"`
}
