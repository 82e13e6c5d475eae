package core_test

import (
	"context"
	"strings"
	"testing"

	"catalog-agent/internal/core"

	"github.com/shopspring/decimal"
)

// fakeEmbedder returns a deterministic bag-of-words-ish vector so tests don't
// need a real embedding API: one dimension per keyword in vocab, counting
// occurrences of that keyword in the (lowercased) text.
type fakeEmbedder struct {
	vocab []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	lower := strings.ToLower(text)
	vec := make([]float64, len(f.vocab))
	for i, w := range f.vocab {
		vec[i] = float64(strings.Count(lower, w))
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

func sampleCatalog() []core.Product {
	return []core.Product{
		{ID: "p1", Name: "Steel Tumbler", Description: "insulated tumbler with lid", Price: decimal.NewFromFloat(19.99), CapacityML: intPtr(500), Tags: []string{"tumbler", "steel"}},
		{ID: "p2", Name: "Glass Bottle", Description: "reusable glass bottle", Price: decimal.NewFromFloat(14.50), CapacityML: intPtr(750), Tags: []string{"bottle", "glass"}},
		{ID: "p3", Name: "Travel Mug", Description: "ceramic travel mug, no lid", Price: decimal.NewFromFloat(9.99), CapacityML: nil, Tags: []string{"mug"}},
		{ID: "p4", Name: "Cold Cup", Description: "plastic cold cup with straw", Price: decimal.NewFromFloat(4.99), CapacityML: intPtr(400), Tags: []string{"cold cup", "straw"}},
	}
}

func newTestIndex(t *testing.T) *core.ProductIndex {
	t.Helper()
	embedder := &fakeEmbedder{vocab: []string{"tumbler", "bottle", "mug", "cup", "steel", "glass", "ceramic", "plastic", "lid", "straw"}}
	idx := core.NewProductIndex(embedder)
	if err := idx.Build(context.Background(), sampleCatalog()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestProductIndex_SearchReturnsMatches(t *testing.T) {
	idx := newTestIndex(t)
	matches := idx.Search(context.Background(), "tumbler", 5)
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	if matches[0].Product.ID != "p1" {
		t.Errorf("expected tumbler (p1) to rank first, got %s", matches[0].Product.ID)
	}
}

func TestProductIndex_SearchDeterministic(t *testing.T) {
	idx := newTestIndex(t)
	first := idx.Search(context.Background(), "mug", 5)
	second := idx.Search(context.Background(), "mug", 5)
	if len(first) != len(second) {
		t.Fatalf("result length changed across invocations: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Product.ID != second[i].Product.ID {
			t.Errorf("order changed at index %d: %s vs %s", i, first[i].Product.ID, second[i].Product.ID)
		}
	}
}

func TestProductIndex_KZeroReturnsEmpty(t *testing.T) {
	idx := newTestIndex(t)
	matches := idx.Search(context.Background(), "tumbler", 0)
	if len(matches) != 0 {
		t.Errorf("expected empty result for k=0, got %d", len(matches))
	}
}

func TestProductIndex_KHardCapped(t *testing.T) {
	idx := newTestIndex(t)
	matches := idx.Search(context.Background(), "tumbler", 1000)
	if len(matches) > len(sampleCatalog()) {
		t.Errorf("result length %d exceeds catalog size", len(matches))
	}
}

func TestProductIndex_EmptyCatalog(t *testing.T) {
	embedder := &fakeEmbedder{vocab: []string{"tumbler"}}
	idx := core.NewProductIndex(embedder)
	if err := idx.Build(context.Background(), nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Size() != 0 {
		t.Errorf("expected empty index, got size %d", idx.Size())
	}
	matches := idx.Search(context.Background(), "tumbler", 5)
	if len(matches) != 0 {
		t.Errorf("expected no matches for empty catalog, got %d", len(matches))
	}
}

func TestProductIndex_SearchSortedCheapestAscending(t *testing.T) {
	idx := newTestIndex(t)
	matches := idx.SearchSorted(context.Background(), "cup mug bottle tumbler", 10, core.SortCheapest)
	for i := 1; i < len(matches); i++ {
		if matches[i].Product.Price.LessThan(matches[i-1].Product.Price) {
			t.Errorf("prices not non-decreasing at index %d: %s < %s", i, matches[i].Product.Price, matches[i-1].Product.Price)
		}
	}
}

func TestProductIndex_SearchSortedLargestUnknownsLast(t *testing.T) {
	idx := newTestIndex(t)
	matches := idx.SearchSorted(context.Background(), "cup mug bottle tumbler", 10, core.SortLargest)
	lastID := matches[len(matches)-1].Product.ID
	if lastID != "p3" {
		t.Errorf("expected unknown-capacity product p3 last, got %s", lastID)
	}
}

func TestDetectSortKey(t *testing.T) {
	tests := []struct {
		query string
		want  core.SortKey
	}{
		{"cheapest tumbler", core.SortCheapest},
		{"most expensive bottle", core.SortMostExpensive},
		{"largest cup", core.SortLargest},
		{"smallest mug", core.SortSmallest},
		{"show me tumblers", core.SortNone},
	}
	for _, tt := range tests {
		if got := core.DetectSortKey(tt.query); got != tt.want {
			t.Errorf("DetectSortKey(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
