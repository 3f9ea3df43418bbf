// Package models defines the catalog payloads served by the mock API and rendered by the CLI.
package models

// Listing is a product summary as it appears in search results.
type Listing struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Price        float64       `json:"price"`
	CurrencyID   string        `json:"currency_id"`
	Thumbnail    string        `json:"thumbnail"`
	Condition    string        `json:"condition"`
	Installments *Installments `json:"installments,omitempty"`
	Shipping     *Shipping     `json:"shipping,omitempty"`
	Reviews      *Reviews      `json:"reviews,omitempty"`
}

// Product is the full product record returned by the item endpoint.
type Product struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Price             float64        `json:"price"`
	OriginalPrice     float64        `json:"original_price,omitempty"`
	CurrencyID        string         `json:"currency_id"`
	AvailableQuantity int            `json:"available_quantity,omitempty"`
	SoldQuantity      int            `json:"sold_quantity,omitempty"`
	Condition         string         `json:"condition"`
	Permalink         string         `json:"permalink,omitempty"`
	Thumbnail         string         `json:"thumbnail,omitempty"`
	Pictures          []Picture      `json:"pictures,omitempty"`
	Installments      *Installments  `json:"installments,omitempty"`
	Shipping          *Shipping      `json:"shipping,omitempty"`
	SellerAddress     *SellerAddress `json:"seller_address,omitempty"`
	Attributes        []Attribute    `json:"attributes,omitempty"`
	Warranty          string         `json:"warranty,omitempty"`
	Description       *Description   `json:"description,omitempty"`
	Reviews           *Reviews       `json:"reviews,omitempty"`
}

// Picture is one gallery image of a product.
type Picture struct {
	ID        string `json:"id,omitempty"`
	URL       string `json:"url,omitempty"`
	SecureURL string `json:"secure_url,omitempty"`
}

// Installments describes the financing offer.
type Installments struct {
	Quantity   int     `json:"quantity"`
	Amount     float64 `json:"amount"`
	Rate       float64 `json:"rate,omitempty"`
	CurrencyID string  `json:"currency_id,omitempty"`
}

// Shipping describes delivery options.
type Shipping struct {
	FreeShipping bool   `json:"free_shipping"`
	Mode         string `json:"mode,omitempty"`
	LogisticType string `json:"logistic_type,omitempty"`
	StorePickUp  bool   `json:"store_pick_up,omitempty"`
}

// Reviews holds the aggregated rating.
type Reviews struct {
	RatingAverage float64 `json:"rating_average"`
	Total         int     `json:"total"`
}

// SellerAddress is the seller location.
type SellerAddress struct {
	City  NamedPlace `json:"city"`
	State NamedPlace `json:"state"`
}

// NamedPlace is a city or state name.
type NamedPlace struct {
	Name string `json:"name"`
}

// Attribute is one technical specification row.
type Attribute struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ValueName string `json:"value_name"`
}

// Description holds the long product description.
type Description struct {
	PlainText string `json:"plain_text"`
}

// Catalog is the fixture format loaded by the indexer: search listings plus full products.
type Catalog struct {
	Listings []*Listing `json:"listings"`
	Products []*Product `json:"products"`
}
