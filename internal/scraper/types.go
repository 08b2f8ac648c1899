package scraper

import "context"

// Offer represents one scraped classifieds listing
type Offer struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PriceText string `json:"price_text,omitempty"`
	Price     *int   `json:"price,omitempty"`
	URL       string `json:"url,omitempty"`
	Location  string `json:"location,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
}

// Scraper interface defines the contract for all search source implementations
type Scraper interface {
	// FetchOffers retrieves offers from a search source
	FetchOffers(ctx context.Context) ([]Offer, error)

	// Source returns the search URL for logging and identification
	Source() string
}
