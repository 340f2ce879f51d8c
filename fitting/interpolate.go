package fitting

import (
	"gonum.org/v1/gonum/interp"
)

func fitLinear(xs, ys []float64) (*interp.PiecewiseLinear, error) {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	return &pl, nil
}

// fitNaturalCubic fits a C2 cubic spline whose second derivative vanishes at both ends.
func fitNaturalCubic(xs, ys []float64) (*interp.NaturalCubic, error) {
	var nc interp.NaturalCubic
	if err := nc.Fit(xs, ys); err != nil {
		return nil, err
	}
	return &nc, nil
}

// hermite builds the cubic with the given knot values and first derivatives.
// Callers guarantee strictly increasing xs of equal length to ys and dydxs.
func hermite(xs, ys, dydxs []float64) *interp.PiecewiseCubic {
	var pc interp.PiecewiseCubic
	pc.FitWithDerivatives(xs, ys, dydxs)
	return &pc
}
