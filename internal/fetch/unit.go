// Package fetch implements the resilient fetch unit shared by the search and detail fetchers.
//
// A Unit performs one logical GET and produces exactly one terminal outcome. It masks the
// transient state in which the mock API answers its HTML shell instead of JSON by retrying
// with a linear backoff (baseDelay * attempt), and classifies every terminal failure into a
// Kind.
//
// Example usage:
//
//	unit := fetch.NewUnit(fetch.WithLogger(logger))
//	out, err := unit.Get(ctx, baseURL+"/api/items/MLA1", fetch.EndpointDetail)
//	if err != nil {
//	    fmt.Println(fetch.Message(err))
//	}
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 200 * time.Millisecond

	notFoundError    = "Not found"
	noResultsMessage = "No results"
)

// errNotReady marks an attempt whose response looks like the HTML shell (or an
// unparseable error body) rather than an API answer.
var errNotReady = errors.New("api not ready")

// Endpoint selects the 404 policy of a request.
type Endpoint int

const (
	// EndpointSearch treats the recognized "no results" 404 as an empty success.
	EndpointSearch Endpoint = iota
	// EndpointDetail treats any 404 as KindNotFound.
	EndpointDetail
)

func (e Endpoint) String() string {
	if e == EndpointDetail {
		return "detail"
	}
	return "search"
}

// Outcome is a successful terminal outcome.
type Outcome struct {
	// Body is the raw JSON payload; nil when Empty.
	Body json.RawMessage
	// Empty is set for the search endpoint's "no results" 404.
	Empty bool
	// Attempts is the number of requests issued, including retries.
	Attempts int
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// RetryHook observes non-terminal retry scheduling events.
type RetryHook func(attempt int, delay time.Duration)

// Unit is the resilient fetch unit. It is safe for concurrent use.
type Unit struct {
	client     *http.Client
	logger     *zap.Logger
	maxRetries int
	baseDelay  time.Duration
	wait       WaitFunc
	onRetry    RetryHook
}

// Option configures a Unit.
type Option func(*Unit)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(u *Unit) { u.client = c }
}

// WithLogger sets a logger for retry and failure events.
func WithLogger(l *zap.Logger) Option {
	return func(u *Unit) { u.logger = l }
}

// WithMaxRetries sets the number of retries after the initial attempt.
func WithMaxRetries(n int) Option {
	return func(u *Unit) { u.maxRetries = n }
}

// WithBaseDelay sets the backoff unit; retry n waits baseDelay*n.
func WithBaseDelay(d time.Duration) Option {
	return func(u *Unit) { u.baseDelay = d }
}

// WithWait replaces the backoff wait. Tests use it to run without real timers.
func WithWait(w WaitFunc) Option {
	return func(u *Unit) { u.wait = w }
}

// WithRetryHook registers a callback for every scheduled retry.
func WithRetryHook(h RetryHook) Option {
	return func(u *Unit) { u.onRetry = h }
}

// NewUnit creates a Unit with 3 retries and a 200ms backoff unit unless overridden.
func NewUnit(opts ...Option) *Unit {
	u := &Unit{
		client:     http.DefaultClient,
		logger:     zap.NewNop(),
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		wait:       sleep,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.maxRetries < 0 {
		u.maxRetries = 0
	}
	return u
}

// MaxRetries returns the configured retry budget.
func (u *Unit) MaxRetries() int {
	return u.maxRetries
}

// Get performs one logical GET against rawURL. It returns either an Outcome or an error;
// the error is a *Error unless ctx was cancelled, in which case it is the context error.
func (u *Unit) Get(ctx context.Context, rawURL string, endpoint Endpoint) (*Outcome, error) {
	fetchID := uuid.NewString()
	logger := u.logger.With(
		zap.String("fetch_id", fetchID),
		zap.String("endpoint", endpoint.String()),
		zap.String("url", rawURL),
	)

	attempt := 0
	for {
		out, err := u.do(ctx, rawURL, endpoint)
		if err == nil {
			out.Attempts = attempt + 1
			logger.Debug("fetch done", zap.Int("attempts", out.Attempts), zap.Bool("empty", out.Empty))
			return out, nil
		}
		if !errors.Is(err, errNotReady) {
			if ctx.Err() == nil {
				logger.Warn("fetch failed", zap.Int("attempts", attempt+1), zap.Error(err))
			}
			return nil, err
		}
		if attempt >= u.maxRetries {
			logger.Warn("fetch retries exhausted", zap.Int("attempts", attempt+1), zap.Error(err))
			return nil, &Error{Kind: KindMockNotReady, Cause: err}
		}
		attempt++
		delay := u.baseDelay * time.Duration(attempt)
		logger.Debug("api not ready, retrying", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		if u.onRetry != nil {
			u.onRetry(attempt, delay)
		}
		if err := u.wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// do issues a single request and classifies its response.
func (u *Unit) do(ctx context.Context, rawURL string, endpoint Endpoint) (*Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Kind: KindNetwork, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Cause: fmt.Errorf("reading response body: %w", err)}
	}

	if isHTML(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: html response with status %d", errNotReady, resp.StatusCode)
	}

	status := resp.StatusCode
	if status == http.StatusNotFound && endpoint == EndpointDetail {
		return nil, &Error{Kind: KindNotFound, Status: status}
	}
	if status < 200 || status > 299 {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err != nil {
			return nil, fmt.Errorf("%w: unparseable error body with status %d", errNotReady, status)
		}
		if status == http.StatusNotFound {
			if eb.isNoResults() {
				return &Outcome{Empty: true}, nil
			}
			// Any other search 404 means the mock routes are not up yet.
			return nil, fmt.Errorf("%w: unrecognized 404 body", errNotReady)
		}
		return nil, &Error{Kind: KindServer, Status: status, Message: eb.Message}
	}

	if !json.Valid(body) {
		return nil, &Error{Kind: KindResponseFormat, Status: status, Cause: errors.New("invalid JSON body")}
	}
	return &Outcome{Body: json.RawMessage(body)}, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b *errorBody) isNoResults() bool {
	return b.Error == notFoundError && strings.Contains(b.Message, noResultsMessage)
}

func isHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}

// sleep waits for d with context cancellation support.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
