package fetcher

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/hyperjump/vitrina/internal/fetch"
	"go.uber.org/zap"
)

// DetailState is the observable state of a DetailFetcher.
type DetailState struct {
	ID string
	// Product is the raw product payload; nil until loaded.
	Product   json.RawMessage
	IsLoading bool
	Error     string
	Kind      fetch.Kind
	HasLoaded bool
}

func (s DetailState) clone() DetailState {
	if s.Product != nil {
		s.Product = append(json.RawMessage{}, s.Product...)
	}
	return s
}

// DetailFetcher loads a single product from /api/items/{id}.
type DetailFetcher struct {
	unit    *fetch.Unit
	baseURL string
	opts    options

	emitMu sync.Mutex
	mu     sync.Mutex
	state  DetailState
	gen    generation
	subs   listeners[DetailState]
}

// NewDetailFetcher creates a detail fetcher for the API at baseURL.
func NewDetailFetcher(unit *fetch.Unit, baseURL string, opts ...Option) *DetailFetcher {
	return &DetailFetcher{
		unit:    unit,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    buildOptions(opts),
	}
}

// State returns a snapshot of the current state.
func (f *DetailFetcher) State() DetailState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// Subscribe registers fn to receive every state change and returns an unsubscribe func.
// fn must not call FetchDetail or Clear synchronously.
func (f *DetailFetcher) Subscribe(fn func(DetailState)) func() {
	return f.subs.add(fn)
}

// FetchDetail starts loading product id. A blank id fails immediately with
// KindInvalidInput and issues no request. The returned channel is closed when the
// invocation ends.
func (f *DetailFetcher) FetchDetail(ctx context.Context, id string) <-chan struct{} {
	trimmed := strings.TrimSpace(id)

	f.emitMu.Lock()
	f.mu.Lock()
	if trimmed == "" {
		f.gen.reset()
		f.state.ID = ""
		f.state.Product = nil
		f.state.IsLoading = false
		f.state.Error = fetch.MessageIDRequired
		f.state.Kind = fetch.KindInvalidInput
		f.state.HasLoaded = true
		snap := f.state.clone()
		f.mu.Unlock()
		f.subs.notify(snap)
		f.emitMu.Unlock()
		return closedChan()
	}
	ictx, gen := f.gen.begin(ctx)
	f.state.ID = trimmed
	f.state.Product = nil
	f.state.IsLoading = true
	f.state.Error = ""
	f.state.Kind = ""
	snap := f.state.clone()
	f.mu.Unlock()
	f.subs.notify(snap)
	f.emitMu.Unlock()

	done := make(chan struct{})
	go f.run(ictx, gen, trimmed, done)
	return done
}

func (f *DetailFetcher) run(ctx context.Context, gen uint64, id string, done chan struct{}) {
	defer close(done)

	out, err := f.unit.Get(ctx, f.baseURL+"/api/items/"+url.PathEscape(id), fetch.EndpointDetail)

	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	f.mu.Lock()
	if !f.gen.commit(gen) {
		f.mu.Unlock()
		f.opts.logger.Debug("discarding superseded detail result", zap.String("id", id))
		return
	}
	f.state.IsLoading = false
	f.state.HasLoaded = true
	if err != nil {
		ferr := classify(err)
		f.state.Product = nil
		f.state.Error = ferr.Display()
		f.state.Kind = ferr.Kind
	} else {
		f.state.Product = out.Body
	}
	snap := f.state.clone()
	f.mu.Unlock()
	f.subs.notify(snap)
}

// Clear resets the fetcher to its initial state and cancels any pending invocation.
func (f *DetailFetcher) Clear() {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	f.mu.Lock()
	f.gen.reset()
	f.state = DetailState{}
	snap := f.state.clone()
	f.mu.Unlock()
	f.subs.notify(snap)
}
