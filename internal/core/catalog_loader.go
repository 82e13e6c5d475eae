package core

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
)

// catalogRecord mirrors the line-delimited JSON record shape from spec §6:
// {id, name, description, price, capacity_ml?, tags[]}.
type catalogRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	CapacityML  *int     `json:"capacity_ml,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// LoadCatalogFile reads a line-delimited catalog file from path. Blank lines
// are skipped. A malformed line is a fatal load error — the catalog is
// loaded once at startup and any corruption should surface immediately
// rather than silently producing a partial catalog.
func LoadCatalogFile(path string) ([]Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file %s: %w", path, err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog reads line-delimited catalog records from r and validates that
// product ids are unique.
func LoadCatalog(r io.Reader) ([]Product, error) {
	var products []Product
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if len(text) == 0 {
			continue
		}

		var rec catalogRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("catalog line %d: invalid JSON: %w", line, err)
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("catalog line %d: missing id", line)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("catalog line %d: duplicate product id %q", line, rec.ID)
		}
		seen[rec.ID] = true

		price, err := decimal.NewFromString(rec.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: invalid price %q: %w", line, rec.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("catalog line %d: negative price %q", line, rec.Price)
		}

		products = append(products, Product{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Price:       price,
			CapacityML:  rec.CapacityML,
			Tags:        rec.Tags,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	return products, nil
}
