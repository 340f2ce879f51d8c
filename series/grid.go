package series

import (
	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
	"gonum.org/v1/gonum/floats"
)

const MinGridPoints = 3

// BuildGrid returns n evenly spaced points spanning the key range of s.
// The end points are exactly the smallest and largest key.
func BuildGrid(s *model.Series, n int) ([]float64, error) {
	if n < MinGridPoints {
		return nil, common.InvalidParameter("n_points", n, "must be >= 3")
	}
	if s.Len() < MinDistinctKeys {
		return nil, common.ErrInsufficientData
	}

	lower, upper := s.MinKey(), s.MaxKey()
	grid := floats.Span(make([]float64, n), lower, upper)
	grid[0], grid[n-1] = lower, upper
	return grid, nil
}
