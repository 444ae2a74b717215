package shopping

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
)

const serpFixture = `{
  "search_metadata": {"status": "Success"},
  "shopping_results": [
    {"title": "Apple AirPods Pro 2", "price": "8.499,00 TL", "extracted_price": 8499.0, "source": "Hepsiburada", "link": "https://example.com/a", "thumbnail": "https://img/a.jpg"},
    {"title": "AirPods Pro 2 Kılıf", "price": "₺149,90", "source": "Trendyol", "product_link": "https://example.com/b", "thumbnail": "https://img/b.jpg"},
    {"title": "AirPods Pro 2 (USB-C)", "extracted_price": 8999.5, "source": "MediaMarkt", "url": "https://example.com/c"}
  ]
}`

func newGoogleTestClient(t *testing.T, handler http.HandlerFunc) *GoogleShoppingClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c := NewGoogleShoppingClient("serp-key", ts.Client()).(*GoogleShoppingClient)
	c.BaseURL = ts.URL + "/search.json"
	return c
}

func TestGoogleShoppingClient_Search(t *testing.T) {
	var gotQuery map[string]string
	c := newGoogleTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"engine": q.Get("engine"), "q": q.Get("q"), "hl": q.Get("hl"), "gl": q.Get("gl"), "api_key": q.Get("api_key"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(serpFixture))
	})

	offers, err := c.Search(context.Background(), "airpods pro 2")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := map[string]string{"engine": "google_shopping", "q": "airpods pro 2", "hl": "tr", "gl": "tr", "api_key": "serp-key"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query param %s = %q, want %q", k, gotQuery[k], v)
		}
	}

	if len(offers) != 3 {
		t.Fatalf("expected 3 offers, got %d", len(offers))
	}
	first := offers[0]
	if first.Price != 8499 || first.Seller != "Hepsiburada" || first.Source != entity.SourceGoogle {
		t.Errorf("unexpected first offer: %+v", first)
	}
	if first.URL != "https://example.com/a" || first.ImageURL != "https://img/a.jpg" {
		t.Errorf("unexpected links: %+v", first)
	}
	if offers[1].Price != 149.90 || offers[1].URL != "https://example.com/b" {
		t.Errorf("unexpected second offer: %+v", offers[1])
	}
	// price missing: falls back to extracted_price, link falls back to url
	if offers[2].Price != 8999.5 || offers[2].URL != "https://example.com/c" {
		t.Errorf("unexpected third offer: %+v", offers[2])
	}
}

func TestGoogleShoppingClient_Disabled(t *testing.T) {
	called := false
	c := newGoogleTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	c.APIKey = ""

	offers, err := c.Search(context.Background(), "x")
	if err != nil || offers != nil {
		t.Fatalf("expected nil, nil; got %v, %v", offers, err)
	}
	if called {
		t.Error("disabled client must not hit the network")
	}
}

func TestGoogleShoppingClient_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newGoogleTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota", http.StatusTooManyRequests)
		})
		_, err := c.Search(context.Background(), "x")
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected StatusError 429, got %v", err)
		}
	})

	t.Run("api error field", func(t *testing.T) {
		c := newGoogleTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error": "Invalid API key."}`))
		})
		if _, err := c.Search(context.Background(), "x"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("bad json", func(t *testing.T) {
		c := newGoogleTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		})
		if _, err := c.Search(context.Background(), "x"); err == nil {
			t.Fatal("expected error")
		}
	})
}
