package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/xuri/excelize/v2"
)

func TestFindColumns(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		p, y    int
	}{
		{"canonical", []string{"P [bar]", "mmol/g CO2"}, 0, 1},
		{"extra whitespace", []string{"id", "  Pressure   [bar] ", "Uptake"}, 1, 2},
		{"priority order", []string{"q", "p", "mmol/g co2"}, 1, 2},
		{"spanish", []string{"Presión (bar)", "Q"}, 0, 1},
		{"heuristic fallback", []string{"abs p in bar", "mmol CO2 per g"}, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, y, err := FindColumns(tc.headers)
			require.NoError(t, err)
			assert.Equal(t, tc.p, p)
			assert.Equal(t, tc.y, y)
		})
	}
}

func TestFindColumnsMissing(t *testing.T) {
	_, _, err := FindColumns([]string{"temperature", "uptake"})
	assert.ErrorIs(t, err, common.ErrMissingColumns)
}

func TestParseUploadCSV(t *testing.T) {
	data := "\ufeffP [bar],mmol/g co2,note\n" +
		"2,4.0,b\n" +
		"1,2.0,a\n" +
		"abc,1.0,bad\n" +
		"2,6.0,dup\n" +
		"3,,missing\n" +
		"3,7.5,c\n"

	s, err := ParseUpload("Data.CSV", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Keys)
	assert.Equal(t, []float64{2, 5, 7.5}, s.Values)
	assert.Equal(t, []string{"P [bar]", "mmol/g co2"}, s.Columns.List())
}

func TestParseUploadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Pressure", "Loading"},
		{0.5, 1.1},
		{1.5, 2.2},
		{"n/a", 3.0},
		{3.0, 3.3},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	s, err := ParseUpload("isotherm.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5, 3.0}, s.Keys)
	assert.InDeltaSlice(t, []float64{1.1, 2.2, 3.3}, s.Values, 1e-12)
	assert.Equal(t, model.Columns{X: "Pressure", Y: "Loading"}, s.Columns)
}

func TestParseUploadErrors(t *testing.T) {
	_, err := ParseUpload("data.txt", strings.NewReader("p,q\n1,1\n"))
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	_, err = ParseUpload("data.csv", strings.NewReader("p,q\nx,y\n"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = ParseUpload("data.csv", strings.NewReader("p,q\n1,1\n2,2\n"))
	assert.ErrorIs(t, err, common.ErrInsufficientData)

	_, err = ParseUpload("data.xlsx", strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestDecodeManualPoints(t *testing.T) {
	points, err := DecodeManualPoints(`[{"p": 1, "q": 2}, {"p": "2.5", "q": 3}, 7]`)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 1.0, points[0]["p"])
	assert.Empty(t, points[2])

	points, err = DecodeManualPoints("")
	require.NoError(t, err)
	assert.Empty(t, points)

	_, err = DecodeManualPoints(`{"p": 1}`)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestParseManualPoints(t *testing.T) {
	points := []map[string]any{
		{"p": 3.0, "q": 1.0},
		{"p": "1", "q": "0.5"},
		{"p": 2.0, "q": 0.7},
		{"p": 2.0, "q": 0.9},
		{"p": nil, "q": 4.0},
		{"p": "oops", "q": 4.0},
	}
	s, err := ParseManualPoints(points)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Keys)
	assert.InDeltaSlice(t, []float64{0.5, 0.8, 1.0}, s.Values, 1e-12)
	assert.Equal(t, model.DefaultColumns(), s.Columns)
}

func TestParseManualPointsErrors(t *testing.T) {
	_, err := ParseManualPoints([]map[string]any{{"p": 1, "q": 1}, {"p": 2, "q": 2}})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = ParseManualPoints([]map[string]any{{"x": 1, "q": 1}, {"x": 2, "q": 2}, {"x": 3, "q": 3}})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = ParseManualPoints([]map[string]any{{"p": 1, "q": 1}, {"p": "x", "q": 2}, {"p": 3, "q": 3}})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = ParseManualPoints([]map[string]any{{"p": 1, "q": 1}, {"p": 1, "q": 2}, {"p": 3, "q": 3}})
	assert.ErrorIs(t, err, common.ErrInsufficientData)
}

func exportFixture() (grid []float64, results map[string][]float64) {
	grid = []float64{0, 0.5, 1}
	results = map[string][]float64{
		"pchip":  {1, 1.25, 2},
		"linear": {1, 1.5, 2},
	}
	return grid, results
}

func TestNewExportTableValidation(t *testing.T) {
	grid, results := exportFixture()

	_, err := NewExportTable(nil, grid, results)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewExportTable([]string{"poly"}, grid, results)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	results["short"] = []float64{1}
	_, err = NewExportTable([]string{"short"}, grid, results)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	table, err := NewExportTable([]string{"pchip", "linear", "pchip"}, grid, results)
	require.NoError(t, err)
	assert.Equal(t, []string{"pchip", "linear"}, table.Methods)
}

func TestWriteLongCSV(t *testing.T) {
	grid, results := exportFixture()
	table, err := NewExportTable([]string{"linear", "pchip"}, grid, results)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.Write(&buf, FormatCSV))

	want := "method,P [bar],mmol/g co2\n" +
		"linear,0,1\n" +
		"linear,0.5,1.5\n" +
		"linear,1,2\n" +
		"pchip,0,1\n" +
		"pchip,0.5,1.25\n" +
		"pchip,1,2\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteWideXLSX(t *testing.T) {
	grid, results := exportFixture()
	table, err := NewExportTable([]string{"pchip", "linear"}, grid, results)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.Write(&buf, FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"pchip", "linear"}, f.GetSheetList())
	rows, err := f.GetRows("linear")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"P [bar]", "mmol/g co2"},
		{"0", "1"},
		{"0.5", "1.5"},
		{"1", "2"},
	}, rows)
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, "export_selected_methods.xlsx", format.Filename())
	assert.Equal(t, "text/csv", FormatCSV.ContentType())

	_, err = ParseExportFormat("pdf")
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}

func TestSheetNameTruncated(t *testing.T) {
	assert.Len(t, sheetName(strings.Repeat("m", 40)), 31)
	assert.Equal(t, "poly", sheetName("poly"))
}
