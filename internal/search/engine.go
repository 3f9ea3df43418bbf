// Package search resolves catalog queries and product lookups.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/vitrina/internal/keyword"
	"github.com/hyperjump/vitrina/internal/models"
	"github.com/hyperjump/vitrina/internal/storage"
	"go.uber.org/zap"
)

var (
	// ErrNoResults is returned when a query matches no listing.
	ErrNoResults = errors.New("no results for this query")
	// ErrNotFound is returned when a product id is unknown.
	ErrNotFound = errors.New("product not found")
)

// Engine answers search and item requests from storage and the keyword index.
type Engine struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	logger       *zap.Logger
	correct      bool
	fuzzy        bool

	mu        sync.Mutex
	corrector *keyword.Corrector
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithSpellCorrection retries queries with no results after correcting misspelled terms.
func WithSpellCorrection(enabled bool) EngineOption {
	return func(e *Engine) { e.correct = enabled }
}

// WithFuzzyFallback retries queries with no results using fuzzy term matching.
func WithFuzzyFallback(enabled bool) EngineOption {
	return func(e *Engine) { e.fuzzy = enabled }
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(storage storage.Storage, keywordIndex keyword.KeywordIndex, opts ...EngineOption) *Engine {
	e := &Engine{
		storage:      storage,
		keywordIndex: keywordIndex,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invalidate drops cached index-derived state. Call after the catalog changes.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.corrector = nil
	e.mu.Unlock()
}

// Search returns one page of listings for query. ErrNoResults when nothing matches.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	normalized, err := ProcessQuery(query)
	if err != nil {
		return nil, err
	}
	opts := keyword.SearchOptions{Limit: query.Limit, Offset: query.Offset}

	res, err := e.keywordIndex.Search(ctx, normalized, opts)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	resp := &models.SearchResponse{Query: normalized}

	if res.Total == 0 && e.correct {
		if corrected, ok := e.correctQuery(normalized); ok {
			res, err = e.keywordIndex.Search(ctx, corrected, opts)
			if err != nil {
				return nil, fmt.Errorf("keyword search failed: %w", err)
			}
			if res.Total > 0 {
				resp.CorrectedQuery = corrected
			}
		}
	}
	if res.Total == 0 && e.fuzzy {
		fuzzyOpts := opts
		fuzzyOpts.Fuzzy = true
		res, err = e.keywordIndex.Search(ctx, normalized, fuzzyOpts)
		if err != nil {
			return nil, fmt.Errorf("fuzzy search failed: %w", err)
		}
	}
	if res.Total == 0 {
		return nil, ErrNoResults
	}

	resp.Results = make([]*models.Listing, 0, len(res.IDs))
	for _, id := range res.IDs {
		l, err := e.storage.GetListing(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			// index and storage briefly disagree while a catalog reload is in flight
			e.logger.Debug("indexed listing missing from storage", zap.String("id", id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
		}
		resp.Results = append(resp.Results, l)
	}
	resp.Paging = models.Paging{Total: int(res.Total), Offset: query.Offset, Limit: query.Limit}
	return resp, nil
}

func (e *Engine) correctQuery(q string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.corrector == nil {
		vocab, err := e.keywordIndex.Vocabulary()
		if err != nil {
			e.logger.Warn("spell correction unavailable", zap.Error(err))
			return "", false
		}
		e.corrector = keyword.NewCorrector(vocab, 0)
	}
	return e.corrector.Correct(q)
}

// Item returns the product with id. ErrNotFound when the id is unknown.
func (e *Engine) Item(ctx context.Context, id string) (*models.Product, error) {
	p, err := e.storage.GetProduct(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	return p, nil
}

// Stats reports catalog size.
func (e *Engine) Stats(ctx context.Context) (listings, products int64, err error) {
	if listings, err = e.storage.CountListings(ctx); err != nil {
		return 0, 0, err
	}
	if products, err = e.storage.CountProducts(ctx); err != nil {
		return 0, 0, err
	}
	return listings, products, nil
}
