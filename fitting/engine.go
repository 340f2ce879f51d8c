package fitting

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/uyouii/isotherm-augmentor/series"
	"github.com/uyouii/isotherm-augmentor/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/interp"
)

type Params struct {
	// SmoothingS bounds the residual sum of squares of the smoothing spline.
	SmoothingS float64
	// PolyDegree is the degree of the least squares polynomial.
	PolyDegree int
}

func DefaultParams() Params {
	return Params{
		SmoothingS: DefaultSmoothingS,
		PolyDegree: DefaultPolyDegree,
	}
}

func (p Params) Validate() error {
	if math.IsNaN(p.SmoothingS) || p.SmoothingS < 0 {
		return common.InvalidParameter("smoothing_s", p.SmoothingS, "must be >= 0")
	}
	if p.PolyDegree < MinPolyDegree || p.PolyDegree > MaxPolyDegree {
		return common.InvalidParameter("poly_degree", p.PolyDegree,
			fmt.Sprintf("must be between %d and %d", MinPolyDegree, MaxPolyDegree))
	}
	return nil
}

// FitAll evaluates every method of model.AllMethods on the grid.
// Any failing method fails the whole call; no partial result is returned.
func FitAll(ctx context.Context, s *model.Series, grid []float64,
	params Params) (map[model.MethodID]*model.MethodResult, error) {
	logger := utils.GetLogger(ctx)

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if s.Len() < series.MinDistinctKeys {
		return nil, common.ErrInsufficientData
	}

	results := make(map[model.MethodID]*model.MethodResult, len(model.AllMethods))
	for _, method := range model.AllMethods {
		result, err := fitMethod(ctx, method, s, grid, params)
		if err != nil {
			logger.Error("fit method failed", zap.String("method", string(method)), zap.Error(err))
			return nil, err
		}
		results[method] = result
	}

	logger.Debug("fit all methods success", zap.Int("points", s.Len()), zap.Int("gridSize", len(grid)),
		zap.Float64("s", params.SmoothingS), zap.Int("degree", params.PolyDegree))
	return results, nil
}

func fitMethod(ctx context.Context, method model.MethodID, s *model.Series, grid []float64,
	params Params) (result *model.MethodResult, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("fitMethod recover panic error!", zap.Any("err", r),
				zap.String("method", string(method)), zap.String("panic info", utils.GetPanicInfo()))
			result, err = nil, common.NewFittingError(string(method), fmt.Errorf("panic: %v", r))
		}
	}()

	predictor, meta, err := newPredictor(method, s.Keys, s.Values, params)
	if err != nil {
		return nil, common.NewFittingError(string(method), err)
	}

	values := make([]float64, len(grid))
	for i, x := range grid {
		v := predictor.Predict(x)
		if !utils.IsFinite(v) {
			return nil, common.NewFittingError(string(method), fmt.Errorf("non-finite value at x=%v", x))
		}
		values[i] = v
	}

	return &model.MethodResult{Values: values, Meta: meta}, nil
}

func newPredictor(method model.MethodID, xs, ys []float64, params Params) (interp.Predictor, model.MethodMeta, error) {
	switch method {
	case model.MethodLinear:
		p, err := fitLinear(xs, ys)
		return p, model.MethodMeta{Name: "Linear", Family: model.FamilyInterpolation}, err
	case model.MethodCubicSpline:
		p, err := fitNaturalCubic(xs, ys)
		return p, model.MethodMeta{Name: "CubicSpline", Family: model.FamilySpline}, err
	case model.MethodPchip:
		p, err := fitPchip(xs, ys)
		return p, model.MethodMeta{Name: "PCHIP", Family: model.FamilyInterpolation}, err
	case model.MethodSmoothingSpline:
		s := params.SmoothingS
		p, err := fitSmoothingSpline(xs, ys, s)
		return p, model.MethodMeta{Name: "Smoothing Spline", Family: model.FamilySpline, S: &s}, err
	case model.MethodPoly:
		degree := params.PolyDegree
		p, err := fitPolynomial(xs, ys, degree)
		return p, model.MethodMeta{
			Name:   fmt.Sprintf("Polynomial (deg=%d)", degree),
			Family: model.FamilyRegression,
			Degree: &degree,
		}, err
	}
	return nil, model.MethodMeta{}, errUnknownMethod
}

var errUnknownMethod = errors.New("unknown method")
