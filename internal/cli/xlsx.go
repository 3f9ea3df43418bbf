package cli

import (
	"fmt"
	"io"

	"github.com/hyperjump/vitrina/internal/fetcher"
	"github.com/hyperjump/vitrina/internal/pricing"
	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Resultados"

var xlsxHeader = []interface{}{"ID", "Título", "Precio", "Moneda", "Condición", "Cuotas", "Monto cuota", "Envío gratis", "Calificación", "Opiniones"}

// WriteSearchResultsXLSX writes the search results as a one-sheet workbook.
// A failed search is an error; there is nothing to export.
func WriteSearchResultsXLSX(w io.Writer, state fetcher.SearchState) error {
	if state.Error != "" {
		return fmt.Errorf("search failed: %s", state.Error)
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &xlsxHeader); err != nil {
		return err
	}
	for i, l := range decodeListings(state.Results) {
		row := []interface{}{l.ID, l.Title, l.Price, l.CurrencyID, pricing.FormatCondition(l.Condition), nil, nil, false, nil, nil}
		if l.Installments != nil {
			row[5], row[6] = l.Installments.Quantity, l.Installments.Amount
		}
		if l.Shipping != nil {
			row[7] = l.Shipping.FreeShipping
		}
		if l.Reviews != nil {
			row[8], row[9] = l.Reviews.RatingAverage, l.Reviews.Total
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
