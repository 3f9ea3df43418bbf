package indexer

import (
	"strings"
	"unicode"

	"github.com/hyperjump/vitrina/internal/models"
)

const defaultCurrency = "ARS"

// collapseSpace trims text and collapses runs of whitespace to a single space.
func collapseSpace(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}

// normalizeListing cleans a listing in place before it is stored and indexed.
func normalizeListing(l *models.Listing) {
	l.ID = strings.TrimSpace(l.ID)
	l.Title = collapseSpace(l.Title)
	if l.CurrencyID == "" {
		l.CurrencyID = defaultCurrency
	}
}

// normalizeProduct cleans a product in place before it is stored.
func normalizeProduct(p *models.Product) {
	p.ID = strings.TrimSpace(p.ID)
	p.Title = collapseSpace(p.Title)
	if p.CurrencyID == "" {
		p.CurrencyID = defaultCurrency
	}
}

// productFromListing builds a minimal product record for a listing that has no full product.
func productFromListing(l *models.Listing) *models.Product {
	p := &models.Product{
		ID:           l.ID,
		Title:        l.Title,
		Price:        l.Price,
		CurrencyID:   l.CurrencyID,
		Condition:    l.Condition,
		Thumbnail:    l.Thumbnail,
		Installments: l.Installments,
		Shipping:     l.Shipping,
		Reviews:      l.Reviews,
	}
	if l.Thumbnail != "" {
		p.Pictures = []models.Picture{{ID: "1", URL: l.Thumbnail}}
	}
	return p
}
