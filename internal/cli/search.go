package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/vitrina/internal/fetch"
	"github.com/hyperjump/vitrina/internal/fetcher"
	"github.com/hyperjump/vitrina/internal/models"
	"github.com/hyperjump/vitrina/internal/pricing"
)

// Suggestions shown when a search has no results.
var Suggestions = []string{
	"Verificá que todas las palabras estén escritas correctamente",
	"Probá con palabras más generales o menos específicas",
	"Intentá con sinónimos o marcas relacionadas",
}

// searchOutput is the JSON shape of a rendered search state.
type searchOutput struct {
	Query     string            `json:"query"`
	IsLoading bool              `json:"is_loading"`
	Error     string            `json:"error,omitempty"`
	Kind      fetch.Kind        `json:"kind,omitempty"`
	Results   []json.RawMessage `json:"results"`
}

// WriteSearchResults writes the search state to w in the given format.
func WriteSearchResults(w io.Writer, state fetcher.SearchState, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(searchOutput{
			Query:     state.Query,
			IsLoading: state.IsLoading,
			Error:     state.Error,
			Kind:      state.Kind,
			Results:   state.Results,
		})
	case OutputCompact:
		writeSearchResultsCompact(w, state)
		return nil
	case OutputXLSX:
		return WriteSearchResultsXLSX(w, state)
	default:
		writeSearchResultsText(w, state)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, state fetcher.SearchState) {
	switch {
	case state.IsLoading:
		fmt.Fprintln(w, "Buscando productos...")
		fmt.Fprintf(w, "Estamos buscando los mejores productos para: %s\n", state.Query)
	case state.Error != "":
		fmt.Fprintln(w, "Oops! Algo salió mal")
		fmt.Fprintln(w, state.Error)
	case !state.HasSearched:
	case len(state.Results) == 0:
		fmt.Fprintln(w, "No encontramos lo que buscas")
		fmt.Fprintf(w, "No hay productos que coincidan con \"%s\"\n\n", state.Query)
		fmt.Fprintln(w, "Te sugerimos:")
		for _, s := range Suggestions {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	default:
		listings := decodeListings(state.Results)
		fmt.Fprintf(w, "\n%d resultados para \"%s\"\n\n", len(listings), state.Query)
		for _, l := range listings {
			writeListing(w, l)
		}
	}
}

func writeListing(w io.Writer, l *models.Listing) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%s\n", l.Title)
	fmt.Fprintf(w, "ID: %s | %s\n", l.ID, pricing.FormatCondition(l.Condition))
	fmt.Fprintf(w, "$ %s\n", pricing.FormatListPrice(l.Price))
	if l.Installments != nil && l.Installments.Quantity > 0 {
		fmt.Fprintf(w, "Mismo precio en %d cuotas de $ %s\n", l.Installments.Quantity, pricing.FormatPrice(l.Installments.Amount))
	}
	if l.Shipping != nil && l.Shipping.FreeShipping {
		fmt.Fprintln(w, "Envío gratis")
	}
	if l.Reviews != nil && l.Reviews.Total > 0 {
		fmt.Fprintf(w, "%.1f %s (%d)\n", l.Reviews.RatingAverage, stars(l.Reviews.RatingAverage), l.Reviews.Total)
	}
	fmt.Fprintln(w)
}

func writeSearchResultsCompact(w io.Writer, state fetcher.SearchState) {
	if state.Error != "" {
		fmt.Fprintf(w, "error\t%s\t%s\n", state.Kind, state.Error)
		return
	}
	for _, l := range decodeListings(state.Results) {
		fmt.Fprintf(w, "%s\t$ %s\t%s\n", l.ID, pricing.FormatListPrice(l.Price), Truncate(l.Title, 80))
	}
}
