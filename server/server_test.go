package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/isotherm-augmentor/config"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/xuri/excelize/v2"
)

const isothermCSV = "P [bar],mmol/g co2\n0.1,0.3\n0.5,1.1\n1,1.6\n2,2.1\n4,2.6\n8,2.9\n"

func newTestServer() *Server {
	return New(config.Default())
}

func multipartRequest(t *testing.T, target string, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Detail
}

func TestHealthz(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestComputeWithFile(t *testing.T) {
	req := multipartRequest(t, "/api/compute", map[string]string{
		"n_points":    "25",
		"smoothing_s": "0.01",
		"poly_degree": "2",
	}, "isotherm.csv", isothermCSV)

	rec := serve(newTestServer(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out model.ComputationOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Grid, 25)
	assert.Equal(t, 6, out.Original.Count)
	assert.Equal(t, model.PresentationOrder, out.MethodOrder)
	require.Len(t, out.Methods, 5)
	assert.Equal(t, "Polynomial (deg=2)", out.Methods[model.MethodPoly].Meta.Name)
	require.NotNil(t, out.Methods[model.MethodSmoothingSpline].Meta.S)
	assert.Equal(t, 0.01, *out.Methods[model.MethodSmoothingSpline].Meta.S)
}

func TestComputeManualOnlyUsesConfigDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Fitting.NPoints = 12
	s := New(cfg)

	req := formRequest("/api/compute", url.Values{
		"manual_points_json": {`[{"p":1,"q":1},{"p":2,"q":1.5},{"p":3,"q":1.8},{"p":4,"q":2}]`},
	})
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out model.ComputationOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Grid, 12)
	assert.Equal(t, []string{"P [bar]", "mmol/g co2"}, out.Original.ColumnsUsed)
}

func TestComputeInvalidManualIgnoredWithFile(t *testing.T) {
	req := multipartRequest(t, "/api/compute", map[string]string{
		"manual_points_json": `[{"p":1,"q":1}]`,
	}, "isotherm.csv", isothermCSV)

	rec := serve(newTestServer(), req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestComputeErrors(t *testing.T) {
	cases := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		contain string
		prefix  string
	}{
		{
			name: "no data",
			req: func(t *testing.T) *http.Request {
				return formRequest("/api/compute", url.Values{"manual_points_json": {"[]"}})
			},
			contain: "no data",
		},
		{
			name: "manual not a list",
			req: func(t *testing.T) *http.Request {
				return formRequest("/api/compute", url.Values{"manual_points_json": {`{"p":1}`}})
			},
			contain: "manual_points_json",
		},
		{
			name: "unsupported file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/compute", nil, "isotherm.txt", isothermCSV)
			},
			prefix: "error reading file: ",
		},
		{
			name: "missing columns",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/compute", nil, "isotherm.csv", "a,b\n1,2\n")
			},
			prefix: "error reading file: ",
		},
		{
			name: "bad n_points",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/compute", map[string]string{"n_points": "many"}, "isotherm.csv", isothermCSV)
			},
			contain: "n_points",
		},
		{
			name: "grid too small",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/compute", map[string]string{"n_points": "2"}, "isotherm.csv", isothermCSV)
			},
			contain: "n_points",
		},
		{
			name: "degree out of range",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/compute", map[string]string{"poly_degree": "11"}, "isotherm.csv", isothermCSV)
			},
			contain: "poly_degree",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(newTestServer(), tc.req(t))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			msg := detail(t, rec)
			if tc.contain != "" {
				assert.Contains(t, msg, tc.contain)
			}
			if tc.prefix != "" {
				assert.True(t, strings.HasPrefix(msg, tc.prefix), msg)
			}
		})
	}
}

func exportValues(format string) url.Values {
	return url.Values{
		"export_format":         {format},
		"selected_methods_json": {`["pchip","linear"]`},
		"grid_json":             {`[0, 0.5, 1]`},
		"results_json":          {`{"pchip":[1,1.25,2],"linear":[1,1.5,2],"poly":[0,0,0]}`},
	}
}

func TestExportCSV(t *testing.T) {
	rec := serve(newTestServer(), formRequest("/api/export", exportValues("csv")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="export_selected_methods.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "method,P [bar],mmol/g co2\n"+
		"pchip,0,1\npchip,0.5,1.25\npchip,1,2\n"+
		"linear,0,1\nlinear,0.5,1.5\nlinear,1,2\n", rec.Body.String())
}

func TestExportXLSX(t *testing.T) {
	rec := serve(newTestServer(), formRequest("/api/export", exportValues("xlsx")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="export_selected_methods.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"pchip", "linear"}, f.GetSheetList())
}

func TestExportErrors(t *testing.T) {
	cases := map[string]func(url.Values){
		"bad format":       func(v url.Values) { v.Set("export_format", "pdf") },
		"empty selection":  func(v url.Values) { v.Set("selected_methods_json", "[]") },
		"unknown method":   func(v url.Values) { v.Set("selected_methods_json", `["gpr"]`) },
		"length mismatch":  func(v url.Values) { v.Set("grid_json", "[0, 1]") },
		"malformed json":   func(v url.Values) { v.Set("results_json", "{") },
		"missing grid":     func(v url.Values) { v.Del("grid_json") },
		"selection object": func(v url.Values) { v.Set("selected_methods_json", `{"a":1}`) },
	}
	for name, modify := range cases {
		t.Run(name, func(t *testing.T) {
			values := exportValues("csv")
			modify(values)
			rec := serve(newTestServer(), formRequest("/api/export", values))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, detail(t, rec))
		})
	}
}

func TestMetricsExposed(t *testing.T) {
	s := newTestServer()
	serve(s, multipartRequest(t, "/api/compute", nil, "isotherm.csv", isothermCSV))
	serve(s, formRequest("/api/compute", url.Values{}))
	serve(s, formRequest("/api/export", exportValues("csv")))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `isotherm_computations_total{outcome="success"} 1`)
	assert.Contains(t, body, `isotherm_computations_total{outcome="error"} 1`)
	assert.Contains(t, body, `isotherm_exports_total{format="csv"} 1`)
	assert.Contains(t, body, "isotherm_computation_duration_seconds_count 2")
}
