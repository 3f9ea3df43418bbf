// Package keyword provides the listing keyword index.
package keyword

import (
	"context"

	"github.com/hyperjump/vitrina/internal/models"
)

// DefaultFuzziness is the edit distance used when fuzzy matching is enabled.
const DefaultFuzziness = 1

// SearchOptions controls paging and typo tolerance.
type SearchOptions struct {
	Limit  int
	Offset int
	// Fuzzy matches terms within Fuzziness edits (DefaultFuzziness when 0).
	Fuzzy     bool
	Fuzziness int
}

// Result is one page of matching listing ids, best first.
type Result struct {
	IDs   []string
	Total uint64
}

// KeywordIndex defines listing search operations.
type KeywordIndex interface {
	Index(ctx context.Context, l *models.Listing) error
	Search(ctx context.Context, query string, opts SearchOptions) (*Result, error)
	Delete(ctx context.Context, id string) error
	// Reset removes every listing from the index.
	Reset(ctx context.Context) error
	DocCount() (uint64, error)
	// Vocabulary returns indexed title terms with their document frequency.
	Vocabulary() (map[string]int, error)
	Close() error
}
