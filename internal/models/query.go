package models

import (
	"errors"
	"strings"
)

// ErrEmptyQuery is returned by Validate when the query is blank.
var ErrEmptyQuery = errors.New("query cannot be empty")

// SearchQuery is a catalog search request as parsed from the query string.
type SearchQuery struct {
	Query  string `json:"q"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Validate trims the query and normalizes paging.
// Returns an error if the query is empty after trimming.
func (q *SearchQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return ErrEmptyQuery
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 50 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}
