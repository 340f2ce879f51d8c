package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/xuri/excelize/v2"
)

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"

	methodColumn   = "method"
	maxSheetLength = 31
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case FormatCSV, FormatXLSX:
		return ExportFormat(s), nil
	}
	return "", fmt.Errorf("%w: export_format must be csv or xlsx, got %q", common.ErrInvalidParameter, s)
}

func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func (f ExportFormat) Filename() string {
	return "export_selected_methods." + string(f)
}

// ExportTable is a validated selection of method curves over a shared grid.
type ExportTable struct {
	Methods []string
	Grid    []float64
	Results map[string][]float64
}

// NewExportTable checks that every selected method has exactly one value per
// grid point. Repeated selections are kept once, in first-seen order.
func NewExportTable(selected []string, grid []float64, results map[string][]float64) (*ExportTable, error) {
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: select at least one method", common.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(selected))
	methods := make([]string, 0, len(selected))
	for _, m := range selected {
		if seen[m] {
			continue
		}
		seen[m] = true
		values, ok := results[m]
		if !ok {
			return nil, fmt.Errorf("%w: method missing from results: %s", common.ErrInvalidInput, m)
		}
		if len(values) != len(grid) {
			return nil, fmt.Errorf("%w: dimensions do not match for %s (%d values, %d grid points)",
				common.ErrInvalidInput, m, len(values), len(grid))
		}
		methods = append(methods, m)
	}

	return &ExportTable{Methods: methods, Grid: grid, Results: results}, nil
}

// TableFromOutput builds an export table from a computation; nil methods
// selects every method in presentation order.
func TableFromOutput(out *model.ComputationOutput, methods []model.MethodID) (*ExportTable, error) {
	if len(methods) == 0 {
		methods = out.MethodOrder
	}
	selected := make([]string, 0, len(methods))
	results := make(map[string][]float64, len(out.Methods))
	for id, result := range out.Methods {
		results[string(id)] = result.Values
	}
	for _, id := range methods {
		selected = append(selected, string(id))
	}
	return NewExportTable(selected, out.Grid, results)
}

func (t *ExportTable) Write(w io.Writer, format ExportFormat) error {
	switch format {
	case FormatCSV:
		return t.WriteLongCSV(w)
	case FormatXLSX:
		return t.WriteWideXLSX(w)
	}
	return fmt.Errorf("%w: unknown export format %q", common.ErrInvalidParameter, format)
}

// WriteLongCSV writes one row per (method, grid point).
func (t *ExportTable) WriteLongCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{methodColumn, model.PressureColumn, model.UptakeColumn}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, m := range t.Methods {
		values := t.Results[m]
		for i, x := range t.Grid {
			record := []string{m, formatFloat(x), formatFloat(values[i])}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record for %s: %w", m, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteWideXLSX writes one sheet per method with the grid and the method's values.
func (t *ExportTable) WriteWideXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, m := range t.Methods {
		sheet := sheetName(m)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}

		if err := f.SetSheetRow(sheet, "A1", &[]any{model.PressureColumn, model.UptakeColumn}); err != nil {
			return fmt.Errorf("failed to write header of %q: %w", sheet, err)
		}
		values := t.Results[m]
		for j, x := range t.Grid {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &[]any{x, values[j]}); err != nil {
				return fmt.Errorf("failed to write row %d of %q: %w", j+2, sheet, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func sheetName(method string) string {
	if len(method) > maxSheetLength {
		return method[:maxSheetLength]
	}
	return method
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
