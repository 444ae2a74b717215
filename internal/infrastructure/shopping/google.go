package shopping

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/price"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

const serpAPIBaseURL = "https://serpapi.com/search.json"

// GoogleShoppingClient Google Shopping results through SerpApi
type GoogleShoppingClient struct {
	APIKey   string
	BaseURL  string
	Language string
	Country  string
	client   *http.Client
}

type serpShoppingResponse struct {
	Error           string             `json:"error"`
	ShoppingResults []serpShoppingItem `json:"shopping_results"`
}

type serpShoppingItem struct {
	Title          string  `json:"title"`
	Price          any     `json:"price"`
	ExtractedPrice float64 `json:"extracted_price"`
	Source         string  `json:"source"`
	Link           string  `json:"link"`
	ProductLink    string  `json:"product_link"`
	URL            string  `json:"url"`
	Thumbnail      string  `json:"thumbnail"`
}

// NewGoogleShoppingClient creates a SerpApi client; httpClient may be nil
func NewGoogleShoppingClient(apiKey string, httpClient *http.Client) repository.OfferProvider {
	return &GoogleShoppingClient{
		APIKey:   apiKey,
		BaseURL:  serpAPIBaseURL,
		Language: "tr",
		Country:  "tr",
		client:   newHTTPClient(httpClient),
	}
}

func (g *GoogleShoppingClient) Name() string { return "serpapi" }

func (g *GoogleShoppingClient) Enabled() bool { return g.APIKey != "" }

// Search google_shopping engine
func (g *GoogleShoppingClient) Search(ctx context.Context, query string) ([]entity.Offer, error) {
	if !g.Enabled() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("hl", g.Language)
	params.Set("gl", g.Country)
	params.Set("api_key", g.APIKey)

	var resp serpShoppingResponse
	if err := getJSON(ctx, g.client, g.Name(), g.BaseURL, params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &StatusError{Provider: g.Name(), StatusCode: http.StatusOK, Body: resp.Error}
	}

	offers := make([]entity.Offer, 0, len(resp.ShoppingResults))
	for _, item := range resp.ShoppingResults {
		p := price.Parse(item.Price)
		if p == 0 {
			p = item.ExtractedPrice
		}
		offers = append(offers, entity.Offer{
			Title:    item.Title,
			Price:    p,
			Seller:   item.Source,
			Source:   entity.SourceGoogle,
			ImageURL: item.Thumbnail,
			URL:      firstNonEmpty(item.Link, item.ProductLink, item.URL),
		})
	}
	return offers, nil
}
