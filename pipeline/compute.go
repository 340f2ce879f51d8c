package pipeline

import (
	"context"
	"fmt"

	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/fitting"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/uyouii/isotherm-augmentor/series"
	"github.com/uyouii/isotherm-augmentor/tabular"
	"github.com/uyouii/isotherm-augmentor/utils"
	"go.uber.org/zap"
)

type Request struct {
	// File is the series decoded from an uploaded table, nil when none was sent.
	File *model.Series
	// ManualPoints are {"p": ..., "q": ...} entries typed in by the user.
	ManualPoints []map[string]any

	NPoints    int
	SmoothingS float64
	PolyDegree int
}

func NewRequest() *Request {
	return &Request{
		NPoints:    fitting.DefaultGridPoints,
		SmoothingS: fitting.DefaultSmoothingS,
		PolyDegree: fitting.DefaultPolyDegree,
	}
}

// Compute runs one reconciliation and fitting pass.
//
// Invalid manual points are an error only when no file series is present;
// otherwise the manual data is dropped entirely and the file series is used alone.
func Compute(ctx context.Context, req *Request) (*model.ComputationOutput, error) {
	logger := utils.GetLogger(ctx)

	var manual *model.Series
	if len(req.ManualPoints) > 0 {
		s, err := tabular.ParseManualPoints(req.ManualPoints)
		switch {
		case err == nil:
			manual = s
		case req.File.IsEmpty():
			return nil, err
		default:
			logger.Warn("ignore invalid manual points, use file data only",
				zap.Int("manualCount", len(req.ManualPoints)), zap.Error(err))
		}
	}

	if req.File.IsEmpty() && manual.IsEmpty() {
		return nil, common.ErrNoData
	}

	merged, err := series.Merge(req.File, manual)
	if err != nil {
		return nil, fmt.Errorf("error combining data: %w", err)
	}
	logger.Info("series ready", zap.String("series", merged.DebugString()))

	grid, err := series.BuildGrid(merged, req.NPoints)
	if err != nil {
		return nil, err
	}

	results, err := fitting.FitAll(ctx, merged, grid, fitting.Params{
		SmoothingS: req.SmoothingS,
		PolyDegree: req.PolyDegree,
	})
	if err != nil {
		return nil, err
	}

	out, err := Aggregate(merged, grid, results)
	if err != nil {
		return nil, err
	}
	logger.Info("compute success", zap.String("output", out.DebugString()))
	return out, nil
}
