package fitting

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// polynomial is evaluated in the scaled variable t = (x - center) / halfWidth,
// which maps the fitted key range onto [-1, 1].
type polynomial struct {
	coeffs    []float64 // ascending powers of t
	center    float64
	halfWidth float64
}

func (p *polynomial) Predict(x float64) float64 {
	t := (x - p.center) / p.halfWidth
	res := 0.0
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		res = res*t + p.coeffs[i]
	}
	return res
}

// fitPolynomial solves the ordinary least squares fit of the given degree.
// The Vandermonde columns are normalised before solving; an underdetermined
// system yields the minimum norm solution.
func fitPolynomial(xs, ys []float64, degree int) (*polynomial, error) {
	m := len(xs)
	if m == 0 || m != len(ys) {
		return nil, errors.New("polynomial fit needs matching, non-empty inputs")
	}
	lower, upper := floats.Min(xs), floats.Max(xs)
	halfWidth := (upper - lower) / 2
	if halfWidth == 0 {
		return nil, errors.New("polynomial fit needs a non-degenerate key range")
	}
	center := (upper + lower) / 2

	cols := degree + 1
	a := mat.NewDense(m, cols, nil)
	for i, x := range xs {
		t := (x - center) / halfWidth
		v := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, v)
			v *= t
		}
	}

	scale := make([]float64, cols)
	for j := 0; j < cols; j++ {
		norm := floats.Norm(mat.Col(nil, j, a), 2)
		if norm == 0 {
			norm = 1
		}
		scale[j] = norm
		for i := 0; i < m; i++ {
			a.Set(i, j, a.At(i, j)/norm)
		}
	}

	b := mat.NewVecDense(m, append([]float64(nil), ys...))
	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("least squares solve (degree=%d): %w", degree, err)
	}

	coeffs := make([]float64, cols)
	for j := range coeffs {
		coeffs[j] = coef.AtVec(j) / scale[j]
	}
	return &polynomial{coeffs: coeffs, center: center, halfWidth: halfWidth}, nil
}
