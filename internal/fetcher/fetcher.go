// Package fetcher provides the stateful search and detail fetchers used by the CLI.
//
// A fetcher owns one state value and exposes an action (Search / FetchDetail) plus Clear.
// Actions return immediately after entering the loading state; the request runs in its own
// goroutine through a fetch.Unit. Every action starts a new generation and cancels the
// previous one, so only the latest invocation's terminal outcome is ever committed.
package fetcher

import (
	"context"
	"errors"
	"sync"

	"github.com/hyperjump/vitrina/internal/config"
	"github.com/hyperjump/vitrina/internal/fetch"
	"go.uber.org/zap"
)

// MaxQueryLength is the maximum number of characters sent as a search query.
const MaxQueryLength = 100

type options struct {
	limit  int
	logger *zap.Logger
}

// Option configures a fetcher.
type Option func(*options)

// WithSearchLimit sets the page size requested by the search fetcher.
func WithSearchLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithLogger sets a logger for debug output (stale results, state changes).
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{limit: config.DefaultSearchLimit, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limit <= 0 {
		o.limit = config.DefaultSearchLimit
	}
	return o
}

// generation tracks the current invocation. Callers hold the fetcher mutex.
type generation struct {
	id     uint64
	cancel context.CancelFunc
}

// begin supersedes the current invocation and returns the context and id of a new one.
func (g *generation) begin(parent context.Context) (context.Context, uint64) {
	g.stop()
	g.id++
	ctx, cancel := context.WithCancel(parent)
	g.cancel = cancel
	return ctx, g.id
}

// reset invalidates the current invocation without starting a new one.
func (g *generation) reset() {
	g.stop()
	g.id++
}

// commit reports whether id is still current and, if so, releases its context.
func (g *generation) commit(id uint64) bool {
	if g.id != id {
		return false
	}
	g.stop()
	return true
}

func (g *generation) stop() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// listeners fans state snapshots out to subscribers.
type listeners[S any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(S)
}

func (l *listeners[S]) add(fn func(S)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(S))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

func (l *listeners[S]) notify(s S) {
	l.mu.Lock()
	fns := make([]func(S), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// classify turns a Unit error into a *fetch.Error. Anything unclassified, such as a
// cancelled or expired caller context, surfaces as a network failure.
func classify(err error) *fetch.Error {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		return fe
	}
	return &fetch.Error{Kind: fetch.KindNetwork, Cause: err}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
