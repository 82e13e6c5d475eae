package core

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"time"
)

// Embedder is the abstract embedding capability the Product Index depends on.
// A production implementation calls a remote embedding API; a test
// implementation can return deterministic fixed vectors. Swapping embedders
// requires a full re-build, since vectors from different embedders are not
// comparable.
type Embedder interface {
	// Embed returns a single dense vector for text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// EmbedBatch returns one vector per input text, same order, in one call
	// where the underlying implementation supports batching.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

const (
	defaultSearchK = 5
	maxSearchK     = 20
)

// ProductIndex embeds a catalog once and serves top-k semantic-similarity
// lookups. It is read-mostly: after build() completes, concurrent Search
// calls never block each other.
type ProductIndex struct {
	embedder Embedder

	mu         sync.RWMutex
	products   []Product
	embeddings []ProductEmbedding // parallel to products, unit-normalized
	dimension  int
	builtAt    time.Time
}

// NewProductIndex constructs an empty index against the given embedder.
func NewProductIndex(embedder Embedder) *ProductIndex {
	return &ProductIndex{embedder: embedder}
}

// Build computes and stores embeddings for the given catalog. It is
// idempotent — calling it again replaces the index wholesale — but failure
// is fatal to startup (the caller should treat a non-nil error as fatal).
func (idx *ProductIndex) Build(ctx context.Context, catalog []Product) error {
	if len(catalog) == 0 {
		idx.mu.Lock()
		idx.products = nil
		idx.embeddings = nil
		idx.builtAt = time.Now()
		idx.mu.Unlock()
		return nil
	}

	texts := make([]string, len(catalog))
	for i, p := range catalog {
		texts[i] = p.SearchableText()
	}

	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	embeddings := make([]ProductEmbedding, len(catalog))
	dim := 0
	for i, v := range vectors {
		normalized := normalize(v)
		embeddings[i] = ProductEmbedding{ProductID: catalog[i].ID, Vector: normalized}
		if len(normalized) > dim {
			dim = len(normalized)
		}
	}

	idx.mu.Lock()
	idx.products = append([]Product(nil), catalog...)
	idx.embeddings = embeddings
	idx.dimension = dim
	idx.builtAt = time.Now()
	idx.mu.Unlock()

	return nil
}

// Size returns the number of products currently indexed.
func (idx *ProductIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.products)
}

// BuiltAt returns when Build last completed, for GET /api/stats.
func (idx *ProductIndex) BuiltAt() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.builtAt
}

// Search returns the top-k products by cosine similarity to query_text's
// embedding. k defaults to 5, hard-capped at 20. Ties in similarity are
// broken by product id ascending so results are deterministic. If embedding
// the query fails, Search returns an empty list and logs a non-fatal warning.
func (idx *ProductIndex) Search(ctx context.Context, queryText string, k int) []ProductMatch {
	return idx.SearchSorted(ctx, queryText, k, SortNone)
}

// SearchSorted is Search plus a deterministic secondary sort. When sortKey is
// not SortNone, results are reordered by the requested key instead of by
// similarity; ties are still broken by product id ascending.
func (idx *ProductIndex) SearchSorted(ctx context.Context, queryText string, k int, sortKey SortKey) []ProductMatch {
	k = clampK(k)
	if k == 0 {
		return nil
	}

	idx.mu.RLock()
	products := idx.products
	embeddings := idx.embeddings
	idx.mu.RUnlock()

	if len(products) == 0 {
		return nil
	}

	queryVec, err := idx.embedder.Embed(ctx, queryText)
	if err != nil {
		log.Printf("product index: embedding query failed, returning no matches: %v", err)
		return nil
	}
	queryVec = normalize(queryVec)

	matches := make([]ProductMatch, len(products))
	for i, p := range products {
		sim := cosineSimilarity(queryVec, embeddings[i].Vector)
		matches[i] = ProductMatch{Product: p, Similarity: sim}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Product.ID < matches[j].Product.ID
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	if sortKey != SortNone {
		applySortKey(matches, sortKey)
	}

	return matches
}

func clampK(k int) int {
	if k <= 0 {
		if k == 0 {
			return 0
		}
		return defaultSearchK
	}
	if k > maxSearchK {
		return maxSearchK
	}
	return k
}

// applySortKey reorders matches in place by the requested secondary sort,
// breaking ties by product id ascending.
func applySortKey(matches []ProductMatch, key SortKey) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Product, matches[j].Product
		switch key {
		case SortCheapest:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case SortMostExpensive:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case SortLargest:
			ac, bc := capacityOrSentinel(a.CapacityML, math.MinInt32), capacityOrSentinel(b.CapacityML, math.MinInt32)
			if ac != bc {
				return ac > bc
			}
		case SortSmallest:
			ac, bc := capacityOrSentinel(a.CapacityML, math.MaxInt32), capacityOrSentinel(b.CapacityML, math.MaxInt32)
			if ac != bc {
				return ac < bc
			}
		}
		return a.ID < b.ID
	})
}

// capacityOrSentinel returns the capacity value, or sentinel when unknown, so
// unknown capacities always sort last regardless of direction.
func capacityOrSentinel(capacityML *int, sentinel int) int {
	if capacityML == nil {
		return sentinel
	}
	return *capacityML
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot
}

// normalize returns v scaled to unit length. A zero vector is returned
// unchanged (cosine similarity against it is defined as 0).
func normalize(v []float64) []float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
