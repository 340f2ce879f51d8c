package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/spf13/cast"
	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/uyouii/isotherm-augmentor/pipeline"
	"github.com/uyouii/isotherm-augmentor/tabular"
	"github.com/uyouii/isotherm-augmentor/utils"
	"go.uber.org/zap"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	utils.GetLogger(r.Context()).Warn("request failed", zap.Int("status", status), zap.Error(err))
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Detail: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleCompute handles POST /api/compute
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	out, err := s.compute(w, r)
	s.metrics.observeCompute(time.Since(start), err)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}
	render.JSON(w, r, out)
}

func (s *Server) compute(w http.ResponseWriter, r *http.Request) (*model.ComputationOutput, error) {
	if err := s.parseForm(w, r); err != nil {
		return nil, err
	}

	req := pipeline.NewRequest()
	var err error
	if req.NPoints, err = formInt(r, "n_points", s.cfg.Fitting.NPoints); err != nil {
		return nil, err
	}
	if req.SmoothingS, err = formFloat(r, "smoothing_s", s.cfg.Fitting.SmoothingS); err != nil {
		return nil, err
	}
	if req.PolyDegree, err = formInt(r, "poly_degree", s.cfg.Fitting.PolyDegree); err != nil {
		return nil, err
	}

	if req.ManualPoints, err = tabular.DecodeManualPoints(r.FormValue("manual_points_json")); err != nil {
		return nil, err
	}

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return nil, fmt.Errorf("error reading file: %w", err)
		default:
			defer file.Close()
			if req.File, err = tabular.ParseUpload(header.Filename, file); err != nil {
				return nil, fmt.Errorf("error reading file: %w", err)
			}
		}
	}

	return pipeline.Compute(r.Context(), req)
}

// handleExport handles POST /api/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	table, format, err := s.exportTable(w, r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	var buf bytes.Buffer
	if err := table.Write(&buf, format); err != nil {
		renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.metrics.observeExport(string(format))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		utils.GetLogger(r.Context()).Error("write export failed", zap.Error(err))
	}
}

func (s *Server) exportTable(w http.ResponseWriter, r *http.Request) (*tabular.ExportTable, tabular.ExportFormat, error) {
	if err := s.parseForm(w, r); err != nil {
		return nil, "", err
	}

	format, err := tabular.ParseExportFormat(r.FormValue("export_format"))
	if err != nil {
		return nil, "", err
	}

	var (
		selected []string
		grid     []float64
		results  map[string][]float64
	)
	if err := formJSON(r, "selected_methods_json", &selected); err != nil {
		return nil, "", err
	}
	if err := formJSON(r, "grid_json", &grid); err != nil {
		return nil, "", err
	}
	if err := formJSON(r, "results_json", &results); err != nil {
		return nil, "", err
	}

	table, err := tabular.NewExportTable(selected, grid, results)
	if err != nil {
		return nil, "", err
	}
	return table, format, nil
}

// parseForm accepts both multipart and urlencoded bodies.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return nil
}

func formInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return def, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return 0, common.InvalidParameter(name, raw, "must be an integer")
	}
	return v, nil
}

func formFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return def, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, common.InvalidParameter(name, raw, "must be a number")
	}
	return v, nil
}

func formJSON(r *http.Request, name string, dst any) error {
	raw := r.FormValue(name)
	if raw == "" {
		return fmt.Errorf("%w: missing form field %s", common.ErrInvalidInput, name)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrInvalidInput, name, err)
	}
	return nil
}
