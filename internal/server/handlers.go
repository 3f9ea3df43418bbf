package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/vitrina/internal/models"
	"github.com/hyperjump/vitrina/internal/search"
	"go.uber.org/zap"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.simulateLatency(r.Context(), s.config.Mock.SearchLatency) {
		return
	}
	if s.failNow() {
		s.logger.Debug("simulated search failure")
		s.respondError(w, http.StatusInternalServerError, models.ErrorNetwork, models.MessageFetchFailed)
		return
	}

	params := r.URL.Query()
	query := models.SearchQuery{
		Query:  params.Get("q"),
		Limit:  atoiOr(params.Get("limit"), 0),
		Offset: atoiOr(params.Get("offset"), 0),
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit), zap.Int("offset", query.Offset))

	response, err := s.engine.Search(r.Context(), &query)
	switch {
	case errors.Is(err, models.ErrEmptyQuery):
		s.respondError(w, http.StatusBadRequest, models.ErrorBadRequest, models.MessageQueryRequired)
	case errors.Is(err, search.ErrNoResults):
		s.respondError(w, http.StatusNotFound, models.ErrorNotFound, models.MessageNoResults)
	case err != nil:
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, models.ErrorInternal, err.Error())
	default:
		s.respondJSON(w, http.StatusOK, response)
	}
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	if !s.simulateLatency(r.Context(), s.config.Mock.ItemLatency) {
		return
	}
	id := chi.URLParam(r, "id")
	product, err := s.engine.Item(r.Context(), id)
	switch {
	case errors.Is(err, search.ErrNotFound):
		s.respondError(w, http.StatusNotFound, models.ErrorNotFound, models.MessageProductNotFound)
	case err != nil:
		s.logger.Error("item lookup failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, models.ErrorInternal, err.Error())
	default:
		s.respondJSON(w, http.StatusOK, product)
	}
}

func (s *Server) handlePutListing(w http.ResponseWriter, r *http.Request) {
	var listing models.Listing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		s.respondError(w, http.StatusBadRequest, models.ErrorBadRequest, "invalid request body")
		return
	}
	if listing.ID == "" {
		s.respondError(w, http.StatusBadRequest, models.ErrorBadRequest, "listing id is required")
		return
	}
	s.logger.Debug("put listing request", zap.String("id", listing.ID), zap.String("title", listing.Title))
	if err := s.indexer.PutListing(r.Context(), &listing); err != nil {
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, models.ErrorInternal, err.Error())
		return
	}
	s.engine.Invalidate()
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": listing.ID, "status": "indexed"})
}

func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete listing request", zap.String("id", id))
	if err := s.indexer.DeleteListing(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, models.ErrorInternal, err.Error())
		return
	}
	s.engine.Invalidate()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type reloadRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var req reloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, models.ErrorBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		req.Path = r.URL.Query().Get("path")
	}

	s.fixturesMu.Lock()
	defer s.fixturesMu.Unlock()
	path := s.fixturesPath
	if req.Path != "" {
		path = req.Path
	}
	stats, err := s.indexer.LoadFile(r.Context(), path)
	if err != nil {
		s.logger.Error("reload failed", zap.String("path", path), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, models.ErrorInternal, err.Error())
		return
	}
	if path != s.fixturesPath {
		s.logger.Info("fixtures path changed", zap.String("from", s.fixturesPath), zap.String("to", path))
		s.retargetLocked(path)
	}
	s.respondJSON(w, http.StatusOK, map[string]int{
		"listings": stats.Listings,
		"products": stats.Products,
		"derived":  stats.Derived,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	listings, products, err := s.engine.Stats(r.Context())
	if err != nil {
		s.logger.Error("status: count failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, models.ErrorInternal, err.Error())
		return
	}
	fixturesPath, watched := s.currentFixtures()
	resp := map[string]interface{}{
		"listings": listings,
		"products": products,
		"ready":    s.Ready(),
		"config": map[string]interface{}{
			"search_latency":   s.config.Mock.SearchLatency.String(),
			"item_latency":     s.config.Mock.ItemLatency.String(),
			"failure_rate":     s.config.Mock.FailureRate,
			"database_path":    s.config.Storage.DatabasePath,
			"bleve_index_path": s.config.Storage.BleveIndexPath,
			"fixtures_path":    fixturesPath,
		},
	}
	if watched != nil {
		resp["watched_files"] = watched
	}
	if usage, err := s.diskUsage(); err == nil {
		resp["disk_usage_bytes"] = usage.Total()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !s.Ready() {
		status = "starting"
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	writeShell(w)
}

// simulateLatency waits d or until the request is cancelled. Returns false when cancelled.
func (s *Server) simulateLatency(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, kind, message string) {
	s.respondJSON(w, status, models.ErrorBody{Error: kind, Message: message})
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
