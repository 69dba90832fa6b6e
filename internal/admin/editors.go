package admin

import (
	"strconv"
	"strings"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/domain"
	"github.com/hperssn/buildcalc/internal/pricing"
)

type fieldEditor struct {
	hint  string
	apply func(it *catalog.Item, raw string) error
}

// fieldEditors is the complete set of editable item attributes.
var fieldEditors = map[domain.Field]fieldEditor{
	domain.FieldTitle: {hint: "any non-empty text", apply: setTitle},
	domain.FieldPrice: {hint: "a price per m², for example 1800", apply: setPrice},
	domain.FieldOrder: {hint: "a whole number, for example 20", apply: setOrder},
}

func setTitle(it *catalog.Item, raw string) error {
	if raw == "" {
		return domain.Invalid("the title cannot be empty")
	}
	it.Title = raw
	return nil
}

func setPrice(it *catalog.Item, raw string) error {
	v, ok := pricing.ParseDecimal(raw)
	if !ok || v < 0 {
		return domain.Invalid("invalid price %q, enter a non-negative number", raw)
	}
	it.PricePerSquareMeter = v
	return nil
}

func setOrder(it *catalog.Item, raw string) error {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return domain.Invalid("invalid order %q, enter a whole number", raw)
	}
	it.Order = v
	return nil
}

type coefficientEditor struct {
	hint    string
	current func(doc *catalog.Document) string
	apply   func(doc *catalog.Document, raw string) error
}

var coefficientEditors = map[domain.CoefficientKey]coefficientEditor{
	domain.CoefficientRoof: {
		hint: "a decimal, for example 1.2",
		current: func(doc *catalog.Document) string {
			return strconv.FormatFloat(doc.RoofCoefficient, 'f', -1, 64)
		},
		apply: setRoofCoefficient,
	},
	domain.CoefficientAreaLimits: {
		hint: "min,max, for example 20,1000",
		current: func(doc *catalog.Document) string {
			return strconv.Itoa(doc.AreaLimits.Min) + "," + strconv.Itoa(doc.AreaLimits.Max)
		},
		apply: setAreaLimits,
	},
}

func setRoofCoefficient(doc *catalog.Document, raw string) error {
	v, ok := pricing.ParseDecimal(raw)
	if !ok || v <= 0 {
		return domain.Invalid("invalid coefficient %q, enter a positive decimal such as 1.2", raw)
	}
	doc.RoofCoefficient = v
	return nil
}

func setAreaLimits(doc *catalog.Document, raw string) error {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return domain.Invalid("invalid limits %q, enter min,max such as 20,1000", raw)
	}
	lo, errLo := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, errHi := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errLo != nil || errHi != nil {
		return domain.Invalid("invalid limits %q, both values must be whole numbers", raw)
	}
	if lo <= 0 || lo > hi {
		return domain.Invalid("invalid limits %q, need 0 < min <= max", raw)
	}
	doc.AreaLimits = catalog.AreaLimits{Min: lo, Max: hi}
	return nil
}
