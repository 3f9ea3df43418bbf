package keyword

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/vitrina/internal/models"
	"github.com/hyperjump/vitrina/pkg/utils"
)

const titleField = "title"

// listingDoc is what gets indexed for a listing. Title is accent-folded.
type listingDoc struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer lowercases and tokenizes without stemming, so "iphone" matches "iPhone"
	// and model numbers like "13" stay intact.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(titleField, textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	im.AddDocumentMapping("listing", docMapping)
	im.DefaultType = "listing"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path keeps the index in memory.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}
	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a listing by id, replacing any previous version.
func (b *BleveIndex) Index(ctx context.Context, l *models.Listing) error {
	return b.index.Index(l.ID, listingDoc{ID: l.ID, Title: utils.FoldAccents(l.Title)})
}

// Search returns the ids of listings whose title contains every query term.
func (b *BleveIndex) Search(ctx context.Context, query string, opts SearchOptions) (*Result, error) {
	terms := tokenizeQuery(query)
	if len(terms) == 0 {
		return &Result{}, nil
	}
	fuzziness := 0
	if opts.Fuzzy {
		fuzziness = opts.Fuzziness
		if fuzziness <= 0 {
			fuzziness = DefaultFuzziness
		}
	}

	req := bleve.NewSearchRequestOptions(buildQuery(terms, fuzziness), opts.Limit, opts.Offset, false)
	req.SortBy([]string{"-_score", "_id"})
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := &Result{IDs: make([]string, len(res.Hits)), Total: res.Total}
	for i, hit := range res.Hits {
		out.IDs[i] = hit.ID
	}
	return out, nil
}

// buildQuery ANDs one clause per term. With fuzziness > 0 each clause is a FuzzyQuery.
func buildQuery(terms []string, fuzziness int) blevequery.Query {
	clauses := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		if fuzziness > 0 {
			fq := bleve.NewFuzzyQuery(term)
			fq.SetFuzziness(fuzziness)
			fq.SetField(titleField)
			clauses = append(clauses, fq)
			continue
		}
		mq := bleve.NewMatchQuery(term)
		mq.SetField(titleField)
		clauses = append(clauses, mq)
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return bleve.NewConjunctionQuery(clauses...)
}

// tokenizeQuery splits a query into lowercase, accent-folded terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(utils.NormalizeQuery(query))
}

// Delete removes a listing from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Reset deletes every indexed listing in one batch.
func (b *BleveIndex) Reset(ctx context.Context) error {
	count, err := b.index.DocCount()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list indexed listings: %w", err)
	}
	batch := b.index.NewBatch()
	for _, hit := range res.Hits {
		batch.Delete(hit.ID)
	}
	return b.index.Batch(batch)
}

// DocCount returns the total number of listings in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Vocabulary returns every title term with its document frequency.
func (b *BleveIndex) Vocabulary() (map[string]int, error) {
	dict, err := b.index.FieldDict(titleField)
	if err != nil {
		return nil, fmt.Errorf("failed to read term dictionary: %w", err)
	}
	defer dict.Close()

	vocab := make(map[string]int)
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		vocab[entry.Term] = int(entry.Count)
	}
	return vocab, nil
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
