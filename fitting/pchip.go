package fitting

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/interp"
)

// fitPchip fits a monotone piecewise cubic Hermite interpolant.
// Slopes at interior knots are the weighted harmonic mean of the adjacent
// secants, or zero at a local extremum, so monotone data stays monotone.
func fitPchip(xs, ys []float64) (*interp.PiecewiseCubic, error) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return nil, errors.New("pchip needs at least 2 points of matching length")
	}
	return hermite(xs, ys, pchipSlopes(xs, ys)), nil
}

func pchipSlopes(xs, ys []float64) []float64 {
	n := len(xs)
	h := make([]float64, n-1)
	m := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = xs[i+1] - xs[i]
		m[i] = (ys[i+1] - ys[i]) / h[i]
	}

	d := make([]float64, n)
	if n == 2 {
		d[0], d[1] = m[0], m[0]
		return d
	}

	for k := 1; k < n-1; k++ {
		m0, m1 := m[k-1], m[k]
		if sign(m0) != sign(m1) || m0 == 0 || m1 == 0 {
			d[k] = 0
			continue
		}
		w1 := 2*h[k] + h[k-1]
		w2 := h[k] + 2*h[k-1]
		d[k] = (w1 + w2) / (w1/m0 + w2/m1)
	}

	d[0] = pchipEndSlope(h[0], h[1], m[0], m[1])
	d[n-1] = pchipEndSlope(h[n-2], h[n-3], m[n-2], m[n-3])
	return d
}

// pchipEndSlope is the one-sided three-point estimate, clipped to keep the shape.
func pchipEndSlope(h0, h1, m0, m1 float64) float64 {
	d := ((2*h0+h1)*m0 - h0*m1) / (h0 + h1)
	if sign(d) != sign(m0) {
		return 0
	}
	if sign(m0) != sign(m1) && math.Abs(d) > 3*math.Abs(m0) {
		return 3 * m0
	}
	return d
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
