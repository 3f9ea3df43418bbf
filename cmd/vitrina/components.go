package main

import (
	"fmt"

	"github.com/hyperjump/vitrina/internal/config"
	"github.com/hyperjump/vitrina/internal/indexer"
	"github.com/hyperjump/vitrina/internal/keyword"
	"github.com/hyperjump/vitrina/internal/search"
	"github.com/hyperjump/vitrina/internal/storage"
	"go.uber.org/zap"
)

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	KeywordIndex keyword.KeywordIndex
	Engine       *search.Engine
	Indexer      *indexer.Indexer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	engine := search.NewEngine(store, keywordIndex,
		search.WithLogger(logger),
		search.WithSpellCorrection(cfg.Mock.SpellCorrection),
		search.WithFuzzyFallback(cfg.Mock.FuzzyFallback),
	)

	idxOpts := []indexer.IndexerOption{
		indexer.WithReloadHook(func(indexer.Stats) { engine.Invalidate() }),
	}
	if debug && logger != nil {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idx := indexer.NewIndexer(store, keywordIndex, idxOpts...)

	return &Components{
		Storage:      store,
		KeywordIndex: keywordIndex,
		Engine:       engine,
		Indexer:      idx,
	}, nil
}
