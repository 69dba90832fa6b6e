// Package pricing computes estimate costs. It has no state and performs no
// I/O; prompt previews and final totals both go through LineCost so the two
// always agree.
package pricing

import (
	"math"
	"strconv"
	"strings"
)

// Coster is anything that knows its own cost.
type Coster interface {
	Cost() float64
}

type Summary struct {
	Total               float64 `json:"total"`
	PricePerSquareMeter float64 `json:"pricePerSquareMeter"`
}

// LineCost is area × coefficient × price. Pass 1 as the coefficient for
// every section except the roof.
func LineCost(price, area, coefficient float64) float64 {
	return area * coefficient * price
}

func Aggregate[T Coster](area float64, lines []T) Summary {
	var s Summary
	for _, l := range lines {
		s.Total += l.Cost()
	}
	if area > 0 {
		s.PricePerSquareMeter = s.Total / area
	}
	return s
}

// FormatRub rounds to whole rubles and groups thousands with spaces,
// e.g. 1466400 -> "1 466 400 ₽".
func FormatRub(amount float64) string {
	v := int64(math.Round(amount))
	neg := v < 0
	if neg {
		v = -v
	}

	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteString(" ₽")
	return b.String()
}

// ParseDecimal accepts user typed numbers such as "1 200,5".
func ParseDecimal(text string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	// ParseFloat also takes hex floats and digit separators.
	if s == "" || strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
