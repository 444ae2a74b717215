package repository

import (
	"context"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
)

// OfferProvider a shopping search backend
type OfferProvider interface {
	// Name provider name used in logs
	Name() string

	// Enabled false when the provider has no credentials
	Enabled() bool

	// Search offers matching the query, prices already normalized
	Search(ctx context.Context, query string) ([]entity.Offer, error)
}

// DealsProvider a marketplace deals feed
type DealsProvider interface {
	Enabled() bool

	// Deals one page of the feed; an empty slice means the feed is exhausted
	Deals(ctx context.Context, country string, page int) ([]entity.Deal, error)
}
