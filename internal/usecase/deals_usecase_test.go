package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
)

func TestHybridDiscount(t *testing.T) {
	tests := []struct {
		name     string
		list     float64
		deal     float64
		reported int
		want     int
	}{
		{"computed wins", 1000, 700, 10, 30},
		{"reported wins", 1000, 950, 12, 12},
		{"truncates", 300, 200, 0, 33},
		{"no list price", 0, 500, 15, 15},
		{"price went up", 500, 600, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HybridDiscount(tt.list, tt.deal, tt.reported); got != tt.want {
				t.Errorf("HybridDiscount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDealsUseCase_Deals(t *testing.T) {
	provider := &fakeDeals{enabled: true, pages: map[int][]entity.Deal{
		1: {
			{Title: "Kulaklık", Price: 600, ListPrice: 1000},
			{Title: "Saat", Price: 950, ListPrice: 1000},
			{Title: "Fiyatı aynı", Price: 100, ListPrice: 100},
		},
		2: {
			{Title: "kulaklık", Price: 500, ListPrice: 1000},
			{Title: "Hoparlör", Price: 100, ListPrice: 0, Discount: 20},
		},
	}}

	uc := NewDealsUseCase(provider, "TR").(*dealsUseCase)
	uc.pageDelay = 0

	deals, err := uc.Deals(context.Background(), "", 5)
	if err != nil {
		t.Fatalf("Deals: %v", err)
	}
	if len(provider.called) != 3 {
		t.Errorf("pages fetched = %v, want stop at the first empty page", provider.called)
	}

	if len(deals) != 3 {
		t.Fatalf("got %d deals: %+v", len(deals), deals)
	}
	if deals[0].Title != "kulaklık" || deals[0].Discount != 50 || deals[0].DiscountLabel != "%50" {
		t.Errorf("first = %+v", deals[0])
	}
	if deals[1].Title != "Hoparlör" || deals[2].Title != "Saat" {
		t.Errorf("order = %+v", deals)
	}
}

func TestDealsUseCase_StopsOnError(t *testing.T) {
	provider := &fakeDeals{
		enabled: true,
		pages:   map[int][]entity.Deal{1: {{Title: "a", Price: 1, ListPrice: 2}}},
		errs:    map[int]error{2: errors.New("503")},
	}
	uc := NewDealsUseCase(provider, "TR").(*dealsUseCase)
	uc.pageDelay = 0

	deals, err := uc.Deals(context.Background(), "DE", 3)
	if err != nil {
		t.Fatalf("Deals: %v", err)
	}
	if len(deals) != 1 || len(provider.called) != 2 {
		t.Errorf("deals=%v called=%v", deals, provider.called)
	}
}

func TestDealsUseCase_Disabled(t *testing.T) {
	uc := NewDealsUseCase(&fakeDeals{}, "")
	deals, err := uc.Deals(context.Background(), "", 1)
	if err != nil || deals == nil || len(deals) != 0 {
		t.Errorf("deals=%v err=%v", deals, err)
	}
}
