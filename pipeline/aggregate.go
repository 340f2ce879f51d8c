package pipeline

import (
	"errors"
	"fmt"

	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
)

// Aggregate packages the reconciled series, grid and per method results.
func Aggregate(s *model.Series, grid []float64,
	results map[model.MethodID]*model.MethodResult) (*model.ComputationOutput, error) {
	for _, method := range model.AllMethods {
		result, ok := results[method]
		if !ok || result == nil {
			return nil, common.NewFittingError(string(method), errors.New("missing result"))
		}
		if len(result.Values) != len(grid) {
			return nil, common.NewFittingError(string(method),
				fmt.Errorf("got %d values for %d grid points", len(result.Values), len(grid)))
		}
	}

	order := make([]model.MethodID, len(model.PresentationOrder))
	copy(order, model.PresentationOrder)

	return &model.ComputationOutput{
		Original: model.OriginalSeries{
			X:           s.Keys,
			Y:           s.Values,
			Count:       s.Len(),
			ColumnsUsed: s.Columns.List(),
		},
		Grid:        grid,
		Methods:     results,
		MethodOrder: order,
		Labels:      model.Labels{X: model.PressureColumn, Y: model.UptakeColumn},
	}, nil
}
