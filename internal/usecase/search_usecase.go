package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

// SearchUseCase fetch, filter and rank offers from every provider
type SearchUseCase interface {
	// Search runs one query across all providers. An empty result is not an error.
	Search(ctx context.Context, query string) (entity.SearchResult, error)
}

type searchUseCase struct {
	providers []repository.OfferProvider
	filter    FilterOptions
	now       func() time.Time
}

// NewSearchUseCase providers are queried in the given order
func NewSearchUseCase(filter FilterOptions, providers ...repository.OfferProvider) SearchUseCase {
	return &searchUseCase{
		providers: providers,
		filter:    filter,
		now:       time.Now,
	}
}

func (u *searchUseCase) Search(ctx context.Context, query string) (entity.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return entity.SearchResult{}, ErrEmptyQuery
	}

	result := entity.SearchResult{Query: query, Offers: []entity.Offer{}, FetchedAt: u.now()}

	var all []entity.Offer
	for _, p := range u.providers {
		if !p.Enabled() {
			continue
		}
		offers, err := p.Search(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Printf("search: provider %s failed for %q: %v", p.Name(), query, err)
			continue
		}
		all = append(all, offers...)
	}
	if len(all) == 0 {
		return result, nil
	}

	priced := keep(all, func(o entity.Offer) bool { return o.Price > 0 })
	offers := FilterRelevant(priced, query, u.filter)
	offers = DedupeOffers(offers)
	SortByPrice(offers)

	log.Printf("search: %q fetched=%d kept=%d", query, len(all), len(offers))
	result.Offers = offers
	return result, nil
}
