// Package cli renders fetcher state for the terminal and for export.
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperjump/vitrina/internal/models"
	"github.com/hyperjump/vitrina/pkg/utils"
)

// OutputFormat is the format for rendered output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputXLSX is an Excel workbook (search results only).
	OutputXLSX OutputFormat = "xlsx"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON, OutputXLSX:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, json or xlsx", s)
	}
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	return utils.Truncate(s, maxLen)
}

// decodeListings turns raw search payloads into listings, skipping entries that do not decode.
func decodeListings(raw []json.RawMessage) []*models.Listing {
	out := make([]*models.Listing, 0, len(raw))
	for _, r := range raw {
		var l models.Listing
		if err := json.Unmarshal(r, &l); err != nil {
			continue
		}
		out = append(out, &l)
	}
	return out
}

func stars(avg float64) string {
	full := int(avg)
	if full > 5 {
		full = 5
	}
	if full < 0 {
		full = 0
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}
