// Package indexer loads catalogs into storage and the keyword index.
package indexer

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/vitrina/internal/fixtures"
	"github.com/hyperjump/vitrina/internal/keyword"
	"github.com/hyperjump/vitrina/internal/models"
	"github.com/hyperjump/vitrina/internal/storage"
	"go.uber.org/zap"
)

// Stats summarizes a catalog load.
type Stats struct {
	Listings int
	Products int
	// Derived counts products synthesized from listings without a full record.
	Derived int
}

// Indexer keeps storage and the keyword index in sync with a catalog.
type Indexer struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	logger       *zap.Logger

	mu       sync.Mutex
	onReload []func(Stats)
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for catalog load events.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithReloadHook registers fn to run after every successful catalog load.
func WithReloadHook(fn func(Stats)) IndexerOption {
	return func(idx *Indexer) { idx.onReload = append(idx.onReload, fn) }
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(storage storage.Storage, keywordIndex keyword.KeywordIndex, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		storage:      storage,
		keywordIndex: keywordIndex,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// LoadCatalog replaces the whole catalog with c. Listings without a product get a derived one.
func (idx *Indexer) LoadCatalog(ctx context.Context, c *models.Catalog) (Stats, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	full := &models.Catalog{
		Listings: make([]*models.Listing, 0, len(c.Listings)),
		Products: make([]*models.Product, 0, len(c.Products)+len(c.Listings)),
	}
	products := make(map[string]struct{}, len(c.Products))
	for _, p := range c.Products {
		cp := *p
		normalizeProduct(&cp)
		full.Products = append(full.Products, &cp)
		products[cp.ID] = struct{}{}
	}
	stats := Stats{Products: len(full.Products)}
	for _, l := range c.Listings {
		cl := *l
		normalizeListing(&cl)
		full.Listings = append(full.Listings, &cl)
		if _, ok := products[cl.ID]; !ok {
			full.Products = append(full.Products, productFromListing(&cl))
			stats.Derived++
		}
	}
	stats.Listings = len(full.Listings)

	if err := idx.storage.ReplaceCatalog(ctx, full); err != nil {
		return Stats{}, fmt.Errorf("failed to store catalog: %w", err)
	}
	if err := idx.keywordIndex.Reset(ctx); err != nil {
		return Stats{}, fmt.Errorf("failed to reset keyword index: %w", err)
	}
	for _, l := range full.Listings {
		if err := idx.keywordIndex.Index(ctx, l); err != nil {
			return Stats{}, fmt.Errorf("failed to index listing %s: %w", l.ID, err)
		}
	}

	idx.logger.Info("catalog loaded",
		zap.Int("listings", stats.Listings),
		zap.Int("products", stats.Products),
		zap.Int("derived", stats.Derived))
	for _, fn := range idx.onReload {
		fn(stats)
	}
	return stats, nil
}

// LoadFile loads a catalog JSON file. An empty path loads the embedded catalog.
func (idx *Indexer) LoadFile(ctx context.Context, path string) (Stats, error) {
	c, err := fixtures.Load(path)
	if err != nil {
		return Stats{}, err
	}
	if path != "" {
		idx.logger.Debug("indexer loading catalog file", zap.String("path", path))
	}
	return idx.LoadCatalog(ctx, c)
}

// PutListing stores and indexes a single listing.
func (idx *Indexer) PutListing(ctx context.Context, l *models.Listing) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	cl := *l
	normalizeListing(&cl)
	if cl.ID == "" {
		return fmt.Errorf("listing has no id")
	}
	if err := idx.storage.PutListing(ctx, &cl); err != nil {
		return fmt.Errorf("failed to store listing: %w", err)
	}
	if err := idx.keywordIndex.Index(ctx, &cl); err != nil {
		return fmt.Errorf("failed to index listing: %w", err)
	}
	idx.logger.Debug("indexer listing stored", zap.String("id", cl.ID))
	return nil
}

// DeleteListing removes a listing from the keyword index and storage.
func (idx *Indexer) DeleteListing(ctx context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.keywordIndex.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from keyword index: %w", err)
	}
	if err := idx.storage.DeleteListing(ctx, id); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	idx.logger.Debug("indexer listing deleted", zap.String("id", id))
	return nil
}
