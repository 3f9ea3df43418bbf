// Package server provides the mock catalog API.
package server

import (
	"context"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/vitrina/internal/config"
	"github.com/hyperjump/vitrina/internal/indexer"
	"github.com/hyperjump/vitrina/internal/search"
	"github.com/hyperjump/vitrina/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the mock catalog API.
type Server struct {
	engine  *search.Engine
	indexer *indexer.Indexer
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server

	now     func() time.Time
	readyAt time.Time

	randMu sync.Mutex
	random func() float64

	fixturesMu   sync.Mutex
	fixturesPath string
	watcher      FileWatcher
}

// FileWatcher is the fixture watcher re-pointed when a reload names a new catalog file.
type FileWatcher interface {
	AddFile(path string) error
	RemoveFile(path string) error
	Files() []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock replaces time.Now for the warm-up gate.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithRandom replaces the source used to decide simulated failures. fn returns values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(s *Server) { s.random = fn }
}

// WithWatcher keeps w watching whichever catalog file the last reload loaded.
func WithWatcher(w FileWatcher) Option {
	return func(s *Server) { s.watcher = w }
}

// NewServer creates a server with the given dependencies. The warm-up gap starts now.
func NewServer(engine *search.Engine, idx *indexer.Indexer, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		indexer: idx,
		config:  cfg,
		logger:  zap.NewNop(),
		now:     time.Now,

		fixturesPath: cfg.Mock.FixturesPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.random == nil {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		s.random = r.Float64
	}
	s.readyAt = s.now().Add(cfg.Mock.StartupDelay)
	return s
}

// Ready reports whether the warm-up gap has elapsed and /api/* serves JSON.
func (s *Server) Ready() bool {
	return !s.now().Before(s.readyAt)
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleShell)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.warmUpGate)
		r.Get("/search", s.handleSearch)
		r.Get("/items/{id}", s.handleItem)
		r.Get("/status", s.handleStatus)
		r.Post("/listings", s.handlePutListing)
		r.Delete("/listings/{id}", s.handleDeleteListing)
		r.Post("/reload", s.handleReload)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.Duration("startup_delay", s.config.Mock.StartupDelay))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) failNow() bool {
	rate := s.config.Mock.FailureRate
	if rate <= 0 {
		return false
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.random() < rate
}

// retargetLocked moves the watch from the previous catalog file to path. Callers hold fixturesMu.
func (s *Server) retargetLocked(path string) {
	prev := s.fixturesPath
	s.fixturesPath = path
	if s.watcher == nil {
		return
	}
	if prev != "" {
		if err := s.watcher.RemoveFile(prev); err != nil {
			s.logger.Warn("unwatch fixtures failed", zap.String("path", prev), zap.Error(err))
		}
	}
	if path != "" {
		if err := s.watcher.AddFile(path); err != nil {
			s.logger.Warn("watch fixtures failed", zap.String("path", path), zap.Error(err))
		}
	}
}

func (s *Server) currentFixtures() (string, []string) {
	s.fixturesMu.Lock()
	defer s.fixturesMu.Unlock()
	if s.watcher == nil {
		return s.fixturesPath, nil
	}
	files := s.watcher.Files()
	sort.Strings(files)
	return s.fixturesPath, files
}

func (s *Server) diskUsage() (storage.DiskUsage, error) {
	return storage.MeasureDiskUsage(s.config.Storage.DatabasePath, s.config.Storage.BleveIndexPath)
}
