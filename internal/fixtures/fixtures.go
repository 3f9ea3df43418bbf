// Package fixtures provides the catalog served by the mock API.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hyperjump/vitrina/internal/models"
)

//go:embed catalog.json
var defaultCatalog []byte

// Default returns the embedded catalog.
func Default() (*models.Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a JSON file. An empty path returns the embedded catalog.
func Load(path string) (*models.Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*models.Catalog, error) {
	var c models.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Listings))
	for i, l := range c.Listings {
		if l == nil || l.ID == "" {
			return nil, fmt.Errorf("listing %d has no id", i)
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("duplicate listing id %s", l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	for i, p := range c.Products {
		if p == nil || p.ID == "" {
			return nil, fmt.Errorf("product %d has no id", i)
		}
	}
	return &c, nil
}
