package search

import (
	"github.com/hyperjump/vitrina/internal/models"
	"github.com/hyperjump/vitrina/pkg/utils"
)

// ProcessQuery validates the query, applies paging defaults and returns the normalized
// (lowercased, trimmed, accent-folded) text used for lookup.
func ProcessQuery(query *models.SearchQuery) (string, error) {
	if err := query.Validate(); err != nil {
		return "", err
	}
	return utils.NormalizeQuery(query.Query), nil
}
