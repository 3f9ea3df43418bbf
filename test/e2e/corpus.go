// Package e2e provides end-to-end tests: a generated catalog served by the mock API
// and consumed through the fetchers.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/vitrina/internal/models"
)

// QueryTestCase defines a query and the listing IDs that must appear in its results.
type QueryTestCase struct {
	Query       string
	ExpectedIDs []string
	// Exact requires the results to be exactly ExpectedIDs (in any order).
	Exact       bool
	Description string
}

// Corpus holds a generated catalog and query test cases for E2E tests.
type Corpus struct {
	Catalog      *models.Catalog
	TestCases    []QueryTestCase
	TotalDocs    int
	TotalQueries int
}

type catalogModel struct {
	category string
	brand    string
	model    string
	price    float64
}

// catalogModels are chosen so that every model name is a unique pair of tokens across the catalog.
var catalogModels = []catalogModel{
	{"Celular", "Samsung", "Galaxy S24", 1499999},
	{"Celular", "Samsung", "Galaxy A55", 699999},
	{"Celular", "Motorola", "Edge 50", 899999},
	{"Celular", "Motorola", "Moto G84", 449999},
	{"Celular", "Xiaomi", "Redmi Note13", 529999},
	{"Celular", "Xiaomi", "Poco X6", 619999},
	{"Tablet", "Apple", "iPad Air", 1299999},
	{"Tablet", "Lenovo", "Tab M10", 329999},
	{"Notebook", "Lenovo", "IdeaPad Slim3", 999999},
	{"Notebook", "Apple", "MacBook M3", 2899999},
	{"Notebook", "Asus", "Vivobook Go15", 749999},
	{"Notebook", "Dell", "Inspiron 3520", 879999},
	{"Auriculares", "Sony", "WH 1000XM5", 589999},
	{"Auriculares", "JBL", "Tune 520BT", 79999},
	{"Smartwatch", "Garmin", "Forerunner 265", 699999},
	{"Smartwatch", "Amazfit", "GTR4", 229999},
	{"Consola", "Sony", "PlayStation 5", 1099999},
	{"Consola", "Nintendo", "Switch OLED", 749999},
	{"Monitor", "LG", "UltraGear 27GN", 459999},
	{"Monitor", "Samsung", "Odyssey G5", 529999},
	{"Parlante", "JBL", "Flip 6", 189999},
	{"Parlante", "Ultimate", "Boom 3", 149999},
	{"Camara", "Canon", "EOS R50", 1399999},
	{"Camara", "GoPro", "Hero 12", 799999},
	{"Drone", "DJI", "Mini 4Pro", 1499999},
}

var variants = []struct {
	label string
	delta float64
}{
	{"128gb Negro", 0},
	{"256gb Azul", 150000},
	{"512gb Plata", 320000},
	{"1tb Grafito", 540000},
}

// BuildCorpus returns a catalog of 100 listings (25 models x 4 variants) and query test cases.
// The first listing of each model also gets a full product record.
func BuildCorpus() *Corpus {
	cat := buildCatalog()
	cases := buildQueryTestCases(cat)
	return &Corpus{
		Catalog:      cat,
		TestCases:    cases,
		TotalDocs:    len(cat.Listings),
		TotalQueries: len(cases),
	}
}

func listingID(model, variant int) string {
	return fmt.Sprintf("MLA%03d%02d", model+1, variant+1)
}

func buildCatalog() *models.Catalog {
	cat := &models.Catalog{}
	for mi, m := range catalogModels {
		for vi, v := range variants {
			price := m.price + v.delta
			l := &models.Listing{
				ID:         listingID(mi, vi),
				Title:      fmt.Sprintf("%s %s %s %s", m.category, m.brand, m.model, v.label),
				Price:      price,
				CurrencyID: "ARS",
				Condition:  "new",
				Installments: &models.Installments{
					Quantity: 12,
					Amount:   float64(int64(price/12*100)) / 100,
				},
				Shipping: &models.Shipping{FreeShipping: price > 500000},
				Reviews:  &models.Reviews{RatingAverage: 4.5, Total: 10 + mi},
			}
			if vi == len(variants)-1 {
				l.Condition = "used"
			}
			cat.Listings = append(cat.Listings, l)
		}
		first := cat.Listings[len(cat.Listings)-len(variants)]
		cat.Products = append(cat.Products, &models.Product{
			ID:                first.ID,
			Title:             first.Title,
			Price:             first.Price,
			OriginalPrice:     first.Price * 1.25,
			CurrencyID:        "ARS",
			AvailableQuantity: 5,
			SoldQuantity:      mi * 3,
			Condition:         "new",
			Installments:      first.Installments,
			Shipping:          first.Shipping,
			Attributes: []models.Attribute{
				{ID: "BRAND", Name: "Marca", ValueName: m.brand},
				{ID: "MODEL", Name: "Modelo", ValueName: m.model},
			},
			Description: &models.Description{PlainText: fmt.Sprintf("%s %s en caja sellada.", m.brand, m.model)},
			Reviews:     first.Reviews,
		})
	}
	return cat
}

func buildQueryTestCases(cat *models.Catalog) []QueryTestCase {
	var cases []QueryTestCase
	for mi, m := range catalogModels {
		all := make([]string, len(variants))
		for vi := range variants {
			all[vi] = listingID(mi, vi)
		}
		cases = append(cases, QueryTestCase{
			Query:       m.model,
			ExpectedIDs: all,
			Exact:       true,
			Description: fmt.Sprintf("model %q returns its %d variants", m.model, len(variants)),
		})
		vi := mi % len(variants)
		storage := strings.Fields(variants[vi].label)[0]
		cases = append(cases, QueryTestCase{
			Query:       strings.ToLower(m.model + " " + storage),
			ExpectedIDs: []string{listingID(mi, vi)},
			Exact:       true,
			Description: fmt.Sprintf("model %q with %s narrows to one listing", m.model, storage),
		})
	}
	cases = append(cases, QueryTestCase{
		Query:       "CÁMARA canon",
		ExpectedIDs: []string{listingID(22, 0)},
		Description: "accents and case are folded",
	})
	return cases
}

// ListingTitle returns the title of the listing with id, or "".
func (c *Corpus) ListingTitle(id string) string {
	for _, l := range c.Catalog.Listings {
		if l.ID == id {
			return l.Title
		}
	}
	return ""
}
