package usecase

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
)

// DefaultBlocklist accessory words that usually mean "not the product itself"
var DefaultBlocklist = []string{
	"kılıf", "case", "kapak", "silikon", "koruyucu", "cam", "jelatin",
	"askı", "tutucu", "stand", "kablo", "adaptör", "şarj",
}

var digitRuns = regexp.MustCompile(`\d+`)

// FilterOptions relevance filter tuning
type FilterOptions struct {
	Blocklist   []string
	MedianRatio float64
	MinOverlap  float64
}

// DefaultFilterOptions blocklist, 50% of the median, half of the query words
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		Blocklist:   DefaultBlocklist,
		MedianRatio: 0.5,
		MinOverlap:  0.5,
	}
}

// FilterRelevant runs the predicates in order, each on the previous output
func FilterRelevant(offers []entity.Offer, query string, opts FilterOptions) []entity.Offer {
	offers = dropBlocklisted(offers, query, opts.Blocklist)
	offers = dropBelowMedian(offers, opts.MedianRatio)
	offers = requireNumbers(offers, query)
	offers = requireOverlap(offers, query, opts.MinOverlap)
	return offers
}

// dropBlocklisted skipped when the user asked for an accessory
func dropBlocklisted(offers []entity.Offer, query string, blocklist []string) []entity.Offer {
	if len(blocklist) == 0 || containsAny(strings.ToLower(query), blocklist) {
		return offers
	}
	return keep(offers, func(o entity.Offer) bool {
		return !containsAny(strings.ToLower(o.Title), blocklist)
	})
}

func dropBelowMedian(offers []entity.Offer, ratio float64) []entity.Offer {
	if len(offers) == 0 || ratio <= 0 {
		return offers
	}
	threshold := median(offers) * ratio
	return keep(offers, func(o entity.Offer) bool {
		return o.Price >= threshold
	})
}

// requireNumbers "iphone 17" must not match "iphone 13"
func requireNumbers(offers []entity.Offer, query string) []entity.Offer {
	numbers := digitRuns.FindAllString(query, -1)
	if len(numbers) == 0 {
		return offers
	}
	return keep(offers, func(o entity.Offer) bool {
		title := strings.ToLower(o.Title)
		for _, n := range numbers {
			if !strings.Contains(title, n) {
				return false
			}
		}
		return true
	})
}

func requireOverlap(offers []entity.Offer, query string, minOverlap float64) []entity.Offer {
	words := tokenize(query)
	if len(words) == 0 || minOverlap <= 0 {
		return offers
	}
	return keep(offers, func(o entity.Offer) bool {
		title := make(map[string]struct{})
		for _, t := range tokenize(o.Title) {
			title[t] = struct{}{}
		}
		hits := 0
		for _, w := range words {
			if _, ok := title[w]; ok {
				hits++
			}
		}
		return float64(hits)/float64(len(words)) >= minOverlap
	})
}

// DedupeOffers keeps the cheapest offer per normalized title and seller.
// Order of first appearance is preserved.
func DedupeOffers(offers []entity.Offer) []entity.Offer {
	index := make(map[string]int, len(offers))
	out := make([]entity.Offer, 0, len(offers))
	for _, o := range offers {
		key := normalizeTitle(o.Title) + "|" + normalizeTitle(o.Seller)
		if i, ok := index[key]; ok {
			if o.Price < out[i].Price {
				out[i] = o
			}
			continue
		}
		index[key] = len(out)
		out = append(out, o)
	}
	return out
}

// SortByPrice cheapest first, stable
func SortByPrice(offers []entity.Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})
}

func median(offers []entity.Offer) float64 {
	prices := make([]float64, len(offers))
	for i, o := range offers {
		prices[i] = o.Price
	}
	sort.Float64s(prices)
	mid := len(prices) / 2
	if len(prices)%2 == 0 {
		return (prices[mid-1] + prices[mid]) / 2
	}
	return prices[mid]
}

// tokenize lower-cased words, split on anything that is not a letter or digit
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func keep(offers []entity.Offer, pred func(entity.Offer) bool) []entity.Offer {
	out := make([]entity.Offer, 0, len(offers))
	for _, o := range offers {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}
