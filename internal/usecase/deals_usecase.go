package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

// DealsUseCase marketplace deals feed
type DealsUseCase interface {
	// Deals up to pages pages for a country, biggest discount first
	Deals(ctx context.Context, country string, pages int) ([]entity.Deal, error)
}

type dealsUseCase struct {
	provider       repository.DealsProvider
	defaultCountry string
	pageDelay      time.Duration
}

// NewDealsUseCase defaultCountry is used when the caller passes none
func NewDealsUseCase(provider repository.DealsProvider, defaultCountry string) DealsUseCase {
	if defaultCountry == "" {
		defaultCountry = "TR"
	}
	return &dealsUseCase{
		provider:       provider,
		defaultCountry: defaultCountry,
		pageDelay:      200 * time.Millisecond,
	}
}

func (u *dealsUseCase) Deals(ctx context.Context, country string, pages int) ([]entity.Deal, error) {
	if u.provider == nil || !u.provider.Enabled() {
		return []entity.Deal{}, nil
	}
	if country == "" {
		country = u.defaultCountry
	}
	if pages < 1 {
		pages = 1
	}

	var all []entity.Deal
	for page := 1; page <= pages; page++ {
		if page > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(u.pageDelay):
			}
		}

		batch, err := u.provider.Deals(ctx, country, page)
		if err != nil {
			log.Printf("deals: page %d for %s failed: %v", page, country, err)
			break
		}
		if len(batch) == 0 {
			break
		}

		for _, d := range batch {
			d.Discount = HybridDiscount(d.ListPrice, d.Price, d.Discount)
			if d.Discount < 1 {
				continue
			}
			d.DiscountLabel = fmt.Sprintf("%%%d", d.Discount)
			all = append(all, d)
		}
	}

	deals := dedupeDeals(all)
	sort.SliceStable(deals, func(i, j int) bool {
		return deals[i].Discount > deals[j].Discount
	})
	return deals, nil
}

// HybridDiscount the larger of the computed and the reported percentage
func HybridDiscount(listPrice, dealPrice float64, reported int) int {
	manual := 0
	if listPrice > dealPrice && listPrice > 0 {
		manual = int((listPrice - dealPrice) / listPrice * 100)
	}
	if reported > manual {
		return reported
	}
	return manual
}

// dedupeDeals cheapest deal per title
func dedupeDeals(deals []entity.Deal) []entity.Deal {
	sorted := make([]entity.Deal, len(deals))
	copy(sorted, deals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]entity.Deal, 0, len(sorted))
	for _, d := range sorted {
		key := normalizeTitle(d.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
