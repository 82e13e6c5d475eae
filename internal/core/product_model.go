package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry loaded once at startup and never mutated by the core.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CapacityML  *int            `json:"capacity_ml,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// SearchableText returns the text used to produce the product's embedding:
// name, description, and tags concatenated, so semantic search can match on
// any of them.
func (p Product) SearchableText() string {
	text := p.Name + ". " + p.Description
	for _, tag := range p.Tags {
		text += " " + tag
	}
	return text
}

// ProductEmbedding is the dense vector representation of a Product's
// searchable text, one-to-one with Product.
type ProductEmbedding struct {
	ProductID string
	Vector    []float64
}

// ProductMatch pairs a Product with its similarity score from a search.
type ProductMatch struct {
	Product    Product `json:"product"`
	Similarity float64 `json:"similarity"`
}

// SortKey is a deterministic secondary sort applied to product search results.
type SortKey string

const (
	SortNone           SortKey = ""
	SortCheapest       SortKey = "cheapest"
	SortMostExpensive  SortKey = "most_expensive"
	SortLargest        SortKey = "largest"
	SortSmallest       SortKey = "smallest"
)

// sortKeywords maps the closed keyword sets from spec §4.2 to their SortKey,
// checked in this order so the first match wins.
var sortKeywords = []struct {
	key      SortKey
	keywords []string
}{
	{SortCheapest, []string{"cheapest", "lowest price", "budget"}},
	{SortMostExpensive, []string{"most expensive", "premium", "highest price"}},
	{SortLargest, []string{"largest", "biggest", "most capacity"}},
	{SortSmallest, []string{"smallest", "smallest capacity"}},
}

// DetectSortKey scans query for a recognized sort-key phrase. The first
// matching keyword set wins; no match returns SortNone.
func DetectSortKey(query string) SortKey {
	lower := strings.ToLower(query)
	for _, sk := range sortKeywords {
		for _, kw := range sk.keywords {
			if strings.Contains(lower, kw) {
				return sk.key
			}
		}
	}
	return SortNone
}
