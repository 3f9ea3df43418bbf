package fetcher

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/hyperjump/vitrina/internal/fetch"
	"go.uber.org/zap"
)

// SearchState is the observable state of a SearchFetcher.
// IsLoading and a non-empty Error are never set together.
type SearchState struct {
	Query string
	// Results are the raw listing payloads; never nil.
	Results   []json.RawMessage
	IsLoading bool
	// Error is the user-facing message of the last terminal failure, "" when none.
	Error       string
	Kind        fetch.Kind
	HasSearched bool
}

func initialSearchState() SearchState {
	return SearchState{Results: []json.RawMessage{}}
}

func (s SearchState) clone() SearchState {
	s.Results = append([]json.RawMessage{}, s.Results...)
	return s
}

// searchEnvelope is the part of the search response the fetcher reads.
type searchEnvelope struct {
	Results []json.RawMessage `json:"results"`
}

// SearchFetcher runs product searches against /api/search.
type SearchFetcher struct {
	unit    *fetch.Unit
	baseURL string
	opts    options

	emitMu sync.Mutex // serializes commit+notify so subscribers see transitions in order
	mu     sync.Mutex
	state  SearchState
	gen    generation
	subs   listeners[SearchState]
}

// NewSearchFetcher creates a search fetcher for the API at baseURL.
func NewSearchFetcher(unit *fetch.Unit, baseURL string, opts ...Option) *SearchFetcher {
	return &SearchFetcher{
		unit:    unit,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    buildOptions(opts),
		state:   initialSearchState(),
	}
}

// State returns a snapshot of the current state.
func (f *SearchFetcher) State() SearchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// Subscribe registers fn to receive every state change and returns an unsubscribe func.
// fn must not call Search or Clear synchronously.
func (f *SearchFetcher) Subscribe(fn func(SearchState)) func() {
	return f.subs.add(fn)
}

// Search starts a search for query. A blank query is ignored. The returned channel is
// closed when the invocation ends, whether committed, superseded, or cleared.
func (f *SearchFetcher) Search(ctx context.Context, query string) <-chan struct{} {
	q := strings.TrimSpace(query)
	if q == "" {
		return closedChan()
	}
	q = truncateRunes(q, MaxQueryLength)

	f.emitMu.Lock()
	f.mu.Lock()
	ictx, id := f.gen.begin(ctx)
	f.state.Query = q
	f.state.IsLoading = true
	f.state.Error = ""
	f.state.Kind = ""
	snap := f.state.clone()
	f.mu.Unlock()
	f.subs.notify(snap)
	f.emitMu.Unlock()

	done := make(chan struct{})
	go f.run(ictx, id, q, done)
	return done
}

func (f *SearchFetcher) run(ctx context.Context, id uint64, q string, done chan struct{}) {
	defer close(done)

	out, err := f.unit.Get(ctx, f.searchURL(q), fetch.EndpointSearch)

	results := []json.RawMessage{}
	var ferr *fetch.Error
	if err != nil {
		ferr = classify(err)
	} else if !out.Empty {
		var env searchEnvelope
		if uerr := json.Unmarshal(out.Body, &env); uerr != nil {
			ferr = &fetch.Error{Kind: fetch.KindResponseFormat, Cause: uerr}
		} else if env.Results != nil {
			results = env.Results
		}
	}

	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	f.mu.Lock()
	if !f.gen.commit(id) {
		f.mu.Unlock()
		f.opts.logger.Debug("discarding superseded search result", zap.String("query", q))
		return
	}
	f.state.Results = results
	f.state.IsLoading = false
	f.state.HasSearched = true
	if ferr != nil {
		f.state.Results = []json.RawMessage{}
		f.state.Error = ferr.Display()
		f.state.Kind = ferr.Kind
	}
	snap := f.state.clone()
	f.mu.Unlock()
	f.subs.notify(snap)
}

// Clear resets the fetcher to its initial state and cancels any pending invocation.
func (f *SearchFetcher) Clear() {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	f.mu.Lock()
	f.gen.reset()
	f.state = initialSearchState()
	snap := f.state.clone()
	f.mu.Unlock()
	f.subs.notify(snap)
}

func (f *SearchFetcher) searchURL(q string) string {
	v := url.Values{}
	v.Set("q", q)
	v.Set("limit", strconv.Itoa(f.opts.limit))
	v.Set("offset", "0")
	return f.baseURL + "/api/search?" + v.Encode()
}
