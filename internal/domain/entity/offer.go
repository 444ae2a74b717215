package entity

import "time"

// Source offer provider
type Source string

const (
	SourceGoogle Source = "Google"
	SourceAmazon Source = "Amazon"
)

// Offer one priced listing returned by a provider
type Offer struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Seller   string  `json:"seller"`
	Source   Source  `json:"source"`
	ImageURL string  `json:"image_url"`
	URL      string  `json:"url"`
}

// SearchResult filtered offers for one query, cheapest first
type SearchResult struct {
	Query     string    `json:"query"`
	Offers    []Offer   `json:"offers"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Best cheapest offer
func (r SearchResult) Best() (Offer, bool) {
	if len(r.Offers) == 0 {
		return Offer{}, false
	}
	return r.Offers[0], true
}

// Empty reports whether nothing survived the filters
func (r SearchResult) Empty() bool {
	return len(r.Offers) == 0
}
