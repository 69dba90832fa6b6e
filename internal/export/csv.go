// Package export renders a finished estimate as a table.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/hperssn/buildcalc/internal/domain"
)

var header = []string{"section", "id", "title", "effective_area_m2", "price_per_m2", "cost"}

// WriteCSV writes one row per line item followed by the area, total and
// price per m² rows.
func WriteCSV(w io.Writer, res *domain.Result) error {
	cw := csv.NewWriter(w)

	rows := [][]string{header}
	for _, li := range res.LineItems {
		rows = append(rows, []string{
			string(li.Section),
			li.ID,
			li.Title,
			number(li.EffectiveArea),
			number(li.PricePerSquareMeter),
			money(li.Cost()),
		})
	}
	rows = append(rows,
		[]string{"area", "", "", number(res.Area), "", ""},
		[]string{"total", "", "", "", "", money(res.Total)},
		[]string{"price_per_m2", "", "", "", money(res.PricePerSquareMeter), ""},
	)

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func number(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
