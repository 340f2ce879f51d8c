package fitting

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// fitSmoothingSpline fits the natural cubic smoothing spline that minimises
// the integrated squared second derivative subject to
//
//	sum((y_i - g(x_i))^2) <= s
//
// s == 0 interpolates every point. When s is at least the residual of the
// least squares line, the line itself is returned.
func fitSmoothingSpline(xs, ys []float64, s float64) (*interp.PiecewiseCubic, error) {
	if len(xs) < 3 || len(xs) != len(ys) {
		return nil, errors.New("smoothing spline needs at least 3 points of matching length")
	}
	sp, err := solveSmoothingSpline(xs, ys, s)
	if err != nil {
		return nil, err
	}
	return hermite(xs, sp.knots, sp.slopes(xs)), nil
}

// smoothingSolution holds the fitted values and second derivatives at the knots.
type smoothingSolution struct {
	knots  []float64
	second []float64
	rss    float64
}

// slopes returns the first derivative of the piecewise cubic at each knot.
func (sp *smoothingSolution) slopes(xs []float64) []float64 {
	n := len(xs)
	g, gamma := sp.knots, sp.second
	d := make([]float64, n)
	for i := 0; i < n-1; i++ {
		h := xs[i+1] - xs[i]
		d[i] = (g[i+1]-g[i])/h - h*(2*gamma[i]+gamma[i+1])/6
	}
	h := xs[n-1] - xs[n-2]
	d[n-1] = (g[n-1]-g[n-2])/h + h*(gamma[n-2]+2*gamma[n-1])/6
	return d
}

func solveSmoothingSpline(xs, ys []float64, s float64) (*smoothingSolution, error) {
	system := newReinschSystem(xs, ys)

	if s == 0 {
		return system.solve(0)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	line := &smoothingSolution{
		knots:  make([]float64, len(xs)),
		second: make([]float64, len(xs)),
	}
	for i, x := range xs {
		line.knots[i] = intercept + slope*x
		r := ys[i] - line.knots[i]
		line.rss += r * r
	}
	if s >= line.rss {
		return line, nil
	}

	// rss grows monotonically with alpha, bracket the root on a log scale
	best, err := system.solve(0)
	if err != nil {
		return nil, err
	}
	lo, hi := 0.0, 0.0
	alpha := 1.0
	sol, err := system.solve(alpha)
	if err != nil {
		return nil, err
	}
	if sol.rss <= s {
		lo, best = alpha, sol
		for i := 0; i < smoothingBracketSteps && hi == 0; i++ {
			alpha *= smoothingBracketFactor
			if sol, err = system.solve(alpha); err != nil {
				return nil, err
			}
			if sol.rss > s {
				hi = alpha
			} else {
				lo, best = alpha, sol
			}
		}
		if hi == 0 {
			return best, nil
		}
	} else {
		hi = alpha
		for i := 0; i < smoothingBracketSteps && lo == 0; i++ {
			alpha /= smoothingBracketFactor
			if sol, err = system.solve(alpha); err != nil {
				return nil, err
			}
			if sol.rss <= s {
				lo, best = alpha, sol
			} else {
				hi = alpha
			}
		}
	}

	for i := 0; i < smoothingMaxBisections; i++ {
		mid := hi / 2
		if lo > 0 {
			mid = math.Sqrt(lo * hi)
		}
		if sol, err = system.solve(mid); err != nil {
			return nil, err
		}
		if sol.rss <= s {
			lo, best = mid, sol
		} else {
			hi = mid
		}
		if hi-lo <= smoothingRelTolerance*hi || s-best.rss <= smoothingRelTolerance*s {
			break
		}
	}
	return best, nil
}

// reinschSystem holds the band matrices of the Reinsch formulation:
// Q is n x (n-2) second divided differences, R is the (n-2) x (n-2)
// tridiagonal roughness matrix. For a given alpha the second derivatives at
// the interior knots solve (R + alpha Q^T Q) gamma = Q^T y and the fitted
// values are y - alpha Q gamma.
type reinschSystem struct {
	n   int
	y   *mat.VecDense
	q   *mat.Dense
	r   *mat.SymDense
	qtq *mat.SymDense
	qty *mat.VecDense
}

func newReinschSystem(xs, ys []float64) *reinschSystem {
	n := len(xs)
	k := n - 2
	h := make([]float64, n-1)
	for i := range h {
		h[i] = xs[i+1] - xs[i]
	}

	q := mat.NewDense(n, k, nil)
	r := mat.NewSymDense(k, nil)
	for j := 0; j < k; j++ {
		i := j + 1
		q.Set(i-1, j, 1/h[i-1])
		q.Set(i, j, -1/h[i-1]-1/h[i])
		q.Set(i+1, j, 1/h[i])

		r.SetSym(j, j, (h[i-1]+h[i])/3)
		if j+1 < k {
			r.SetSym(j, j+1, h[i]/6)
		}
	}

	y := mat.NewVecDense(n, append([]float64(nil), ys...))

	var qtq mat.SymDense
	qtq.SymOuterK(1, q.T())

	var qty mat.VecDense
	qty.MulVec(q.T(), y)

	return &reinschSystem{n: n, y: y, q: q, r: r, qtq: &qtq, qty: &qty}
}

func (rs *reinschSystem) solve(alpha float64) (*smoothingSolution, error) {
	k := rs.n - 2
	a := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			a.SetSym(i, j, rs.r.At(i, j)+alpha*rs.qtq.At(i, j))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, fmt.Errorf("smoothing system not positive definite (alpha=%v)", alpha)
	}
	var inner mat.VecDense
	if err := chol.SolveVecTo(&inner, rs.qty); err != nil {
		return nil, fmt.Errorf("smoothing system solve (alpha=%v): %w", alpha, err)
	}

	var qg mat.VecDense
	qg.MulVec(rs.q, &inner)
	var g mat.VecDense
	g.AddScaledVec(rs.y, -alpha, &qg)

	second := make([]float64, rs.n)
	for j := 0; j < k; j++ {
		second[j+1] = inner.AtVec(j)
	}
	return &smoothingSolution{
		knots:  mat.Col(nil, 0, &g),
		second: second,
		rss:    alpha * alpha * mat.Dot(&qg, &qg),
	}, nil
}
