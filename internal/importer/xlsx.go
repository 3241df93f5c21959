package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/strata/internal/models"
)

// excelDateLayouts are the formatted forms excelize produces for the
// built-in date number formats.
var excelDateLayouts = []string{"01-02-06", "1/2/06", "1/2/2006", "2-Jan-06", "Jan-06"}

// ReadXLSX reads a dataset from the named sheet (the first sheet when empty).
// Row 1 is the header: its first cell is ignored and every further cell
// names a series. Each following row is one x position: column A holds the
// x key and the remaining columns hold the series values. Blank value cells
// count as zero.
func ReadXLSX(r io.Reader, sheet string) (models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ImportError{Source: "xlsx", Err: err}
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &ImportError{Source: "xlsx", Err: ErrSheetAbsent}
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &ImportError{Source: "xlsx", Sheet: sheet, Err: ErrSheetAbsent}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ImportError{Source: "xlsx", Sheet: sheet, Err: err}
	}
	if len(rows) == 0 || len(rows[0]) < 2 {
		return nil, &ImportError{Source: "xlsx", Sheet: sheet, Err: ErrNoSeries}
	}

	header := rows[0]
	var body [][]string
	for _, row := range rows[1:] {
		if len(row) > 0 && strings.TrimSpace(row[0]) != "" {
			body = append(body, row)
		}
	}
	if len(body) == 0 {
		return nil, &ImportError{Source: "xlsx", Sheet: sheet, Err: ErrNoData}
	}

	ds := make(models.Dataset, len(header)-1)
	for col := 1; col < len(header); col++ {
		series := make(models.Series, len(body))
		for i, row := range body {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			y, err := parseNumber(cell)
			if err != nil {
				name, _ := excelize.CoordinatesToCellName(col+1, i+2)
				return nil, &ImportError{Source: "xlsx", Sheet: sheet, Cell: name, Err: err}
			}
			series[i] = models.DataPoint{X: parseXCell(row[0]), Y: y, ID: col}
		}
		series[0].Name = strings.TrimSpace(header[col])
		ds[col-1] = series
	}
	return ds, nil
}

func parseXCell(s string) models.XValue {
	x := models.ParseX(s)
	if x.Temporal {
		return x
	}
	trimmed := strings.TrimSpace(s)
	for _, layout := range excelDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return models.TimeX(t)
		}
	}
	return x
}

// parseNumber accepts plain numbers with optional grouping commas, a
// currency sign and a trailing percent sign.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	clean := strings.NewReplacer(",", "", "$", "", "%", "").Replace(s)
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadValue, s)
	}
	return v, nil
}
