package shopping

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/price"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

const (
	rapidAPIHost    = "real-time-amazon-data.p.rapidapi.com"
	rapidAPIBaseURL = "https://" + rapidAPIHost
)

// AmazonClient Amazon search and deals through RapidAPI's real-time-amazon-data
type AmazonClient struct {
	APIKey  string
	BaseURL string
	Country string
	client  *http.Client
}

type amazonSearchResponse struct {
	Status string `json:"status"`
	Data   struct {
		Products []amazonProduct `json:"products"`
	} `json:"data"`
}

type amazonProduct struct {
	Title string `json:"product_title"`
	Price any    `json:"product_price"`
	URL   string `json:"product_url"`
	Alt   string `json:"url"`
	Photo string `json:"product_photo"`
}

type amazonDealsResponse struct {
	Data struct {
		Deals []amazonDeal `json:"deals"`
	} `json:"data"`
}

type amazonAmount struct {
	Amount   any    `json:"amount"`
	Currency string `json:"currency"`
}

type amazonDeal struct {
	DealTitle    string       `json:"deal_title"`
	ProductTitle string       `json:"product_title"`
	DealPhoto    string       `json:"deal_photo"`
	ProductPhoto string       `json:"product_photo"`
	DealPrice    amazonAmount `json:"deal_price"`
	ListPrice    amazonAmount `json:"list_price"`
	Savings      any          `json:"savings_percentage"`
	ProductURL   string       `json:"product_url"`
	DealURL      string       `json:"deal_url"`
}

// NewAmazonClient creates a RapidAPI client; httpClient may be nil
func NewAmazonClient(apiKey, country string, httpClient *http.Client) *AmazonClient {
	if country == "" {
		country = "TR"
	}
	return &AmazonClient{
		APIKey:  apiKey,
		BaseURL: rapidAPIBaseURL,
		Country: country,
		client:  newHTTPClient(httpClient),
	}
}

var (
	_ repository.OfferProvider = (*AmazonClient)(nil)
	_ repository.DealsProvider = (*AmazonClient)(nil)
)

func (a *AmazonClient) Name() string { return "rapidapi-amazon" }

func (a *AmazonClient) Enabled() bool { return a.APIKey != "" }

func (a *AmazonClient) headers() map[string]string {
	return map[string]string{
		"X-RapidAPI-Key":  a.APIKey,
		"X-RapidAPI-Host": rapidAPIHost,
	}
}

func (a *AmazonClient) seller() string {
	return "Amazon " + strings.ToUpper(a.Country)
}

// Search /search sorted by relevance, first page only
func (a *AmazonClient) Search(ctx context.Context, query string) ([]entity.Offer, error) {
	if !a.Enabled() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("country", a.Country)
	params.Set("sort_by", "RELEVANCE")
	params.Set("page", "1")

	var resp amazonSearchResponse
	if err := getJSON(ctx, a.client, a.Name(), a.BaseURL+"/search", params, a.headers(), &resp); err != nil {
		return nil, err
	}

	offers := make([]entity.Offer, 0, len(resp.Data.Products))
	for _, item := range resp.Data.Products {
		offers = append(offers, entity.Offer{
			Title:    item.Title,
			Price:    price.Parse(item.Price),
			Seller:   a.seller(),
			Source:   entity.SourceAmazon,
			ImageURL: item.Photo,
			URL:      firstNonEmpty(item.URL, item.Alt),
		})
	}
	return offers, nil
}

// Deals /deals-v2 page. Discount holds the feed's own savings figure; the
// deals use case reconciles it with the prices.
func (a *AmazonClient) Deals(ctx context.Context, country string, page int) ([]entity.Deal, error) {
	if !a.Enabled() {
		return nil, nil
	}
	if country == "" {
		country = a.Country
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("country", country)
	params.Set("min_product_star_rating", "ALL")
	params.Set("price_range", "ALL")
	params.Set("discount_range", "ALL")
	params.Set("page", strconv.Itoa(page))

	var resp amazonDealsResponse
	if err := getJSON(ctx, a.client, a.Name(), a.BaseURL+"/deals-v2", params, a.headers(), &resp); err != nil {
		return nil, err
	}

	deals := make([]entity.Deal, 0, len(resp.Data.Deals))
	for _, d := range resp.Data.Deals {
		deals = append(deals, entity.Deal{
			Title:     firstNonEmpty(d.DealTitle, d.ProductTitle),
			Price:     price.Parse(d.DealPrice.Amount),
			ListPrice: price.Parse(d.ListPrice.Amount),
			Discount:  int(price.Parse(d.Savings)),
			ImageURL:  firstNonEmpty(d.DealPhoto, d.ProductPhoto, entity.PlaceholderImage),
			URL:       firstNonEmpty(d.ProductURL, d.DealURL, "#"),
		})
	}
	return deals, nil
}
