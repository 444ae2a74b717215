// Package price normalizes the price strings returned by shopping APIs.
package price

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonPriceChars = regexp.MustCompile(`[^\d.,]`)

// Parse turns a provider price value into a decimal. Strings like
// "1.299,99 TL", "₺1,299.99" or "49,90" are accepted; anything that cannot
// be read yields 0.
func Parse(v any) float64 {
	switch p := v.(type) {
	case nil:
		return 0
	case float64:
		return p
	case float32:
		return float64(p)
	case int:
		return float64(p)
	case int64:
		return float64(p)
	case json.Number:
		return ParseString(p.String())
	case string:
		return ParseString(p)
	default:
		return 0
	}
}

// ParseString normalizes a price string
func ParseString(s string) float64 {
	clean := nonPriceChars.ReplaceAllString(s, "")
	if clean == "" {
		return 0
	}

	dot := strings.Index(clean, ".")
	comma := strings.Index(clean, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if dot < comma {
			// 1.299,99
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			// 1,299.99
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case comma >= 0:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// FormatTL renders 1234.5 as "1.234,50 TL"
func FormatTL(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	b.WriteString(" TL")
	return b.String()
}
