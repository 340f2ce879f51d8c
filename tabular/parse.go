package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/uyouii/isotherm-augmentor/series"
	"github.com/uyouii/isotherm-augmentor/utils"
	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// ParseUpload decodes an uploaded .csv or .xlsx/.xls table into a series.
func ParseUpload(filename string, r io.Reader) (*model.Series, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx", ".xls":
		rows, err = readSpreadsheet(r)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, err
	}

	return fromRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", common.ErrInvalidInput, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

// readSpreadsheet returns the raw cell values of the first sheet.
func readSpreadsheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open spreadsheet: %v", common.ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet has no sheets", common.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", common.ErrInvalidInput, sheets[0], err)
	}
	return rows, nil
}

// fromRows treats the first row as the header and keeps every later row whose
// pressure and uptake cells are both numeric.
func fromRows(rows [][]string) (*model.Series, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty table", common.ErrInvalidInput)
	}
	headers := rows[0]
	pCol, yCol, err := FindColumns(headers)
	if err != nil {
		return nil, err
	}

	samples := []model.Sample{}
	for _, row := range rows[1:] {
		if pCol >= len(row) || yCol >= len(row) {
			continue
		}
		key, ok := toFloat(row[pCol])
		if !ok {
			continue
		}
		value, ok := toFloat(row[yCol])
		if !ok {
			continue
		}
		samples = append(samples, model.Sample{Key: key, Value: value})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no valid numeric data after dropping non-numeric rows", common.ErrInvalidInput)
	}

	return series.Normalize(samples, model.Columns{X: headers[pCol], Y: headers[yCol]})
}

// toFloat coerces numbers and numeric strings; anything else is treated as missing.
func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || !utils.IsFinite(f) {
		return 0, false
	}
	return f, true
}
