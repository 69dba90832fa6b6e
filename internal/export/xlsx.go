package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hperssn/buildcalc/internal/domain"
)

const sheetName = "Смета"

var (
	xlsxHeader = []any{"Раздел", "Описание", "Площадь", "Цена за м²", "Стоимость"}
	colWidths  = []float64{16, 38, 12, 14, 14}
)

// Summary labels sit in column D with their values in column E.
const (
	labelTotal      = "Итого:"
	labelPricePerM2 = "Цена за м²:"
	labelArea       = "Площадь:"
	labelDate       = "Дата расчёта:"

	dateLayout = "2006-01-02 15:04"
)

// WriteXLSX renders res as a single-sheet workbook: a bold centered header,
// one row per line item, a blank row and the summary rows.
func WriteXLSX(w io.Writer, res *domain.Result) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheetName, "A1", &xlsxHeader); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(xlsxHeader), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return err
	}

	row := 2
	for _, li := range res.LineItems {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{li.Section.Title(), li.Title, li.EffectiveArea, li.PricePerSquareMeter, li.Cost()}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
		row++
	}

	row++
	summary := []struct {
		label string
		value any
		bold  bool
	}{
		{labelTotal, res.Total, true},
		{labelPricePerM2, res.PricePerSquareMeter, true},
		{labelArea, res.Area, true},
		{labelDate, calculatedAt(res), false},
	}
	for _, s := range summary {
		label, _ := excelize.CoordinatesToCellName(4, row)
		value, _ := excelize.CoordinatesToCellName(5, row)
		if err := f.SetCellValue(sheetName, label, s.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, value, s.value); err != nil {
			return err
		}
		end := label
		if s.bold {
			end = value
		}
		if err := f.SetCellStyle(sheetName, label, end, boldStyle); err != nil {
			return err
		}
		row++
	}

	for i, width := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func calculatedAt(res *domain.Result) string {
	if res.CalculatedAt.IsZero() {
		return ""
	}
	return res.CalculatedAt.Format(dateLayout)
}
