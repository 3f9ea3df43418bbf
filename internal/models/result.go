package models

// Paging describes the window of a search response.
type Paging struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SearchResponse is the body of a successful GET /api/search.
type SearchResponse struct {
	Query string `json:"query"`
	// CorrectedQuery is set when results come from a spelling-corrected query.
	CorrectedQuery string     `json:"corrected_query,omitempty"`
	Results        []*Listing `json:"results"`
	Paging         Paging     `json:"paging"`
}

// ErrorBody is the JSON error payload of the API.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error values used by the API.
const (
	ErrorNotFound   = "Not found"
	ErrorBadRequest = "Bad request"
	ErrorNetwork    = "Network error"
	ErrorInternal   = "Internal error"

	MessageNoResults       = "No results for this query"
	MessageQueryRequired   = "Query parameter is required"
	MessageProductNotFound = "Product not found"
	MessageFetchFailed     = "Failed to fetch products"
)
