package model

import "fmt"

type MethodID string

const (
	MethodLinear          MethodID = "linear"
	MethodCubicSpline     MethodID = "cubic_spline"
	MethodPchip           MethodID = "pchip"
	MethodSmoothingSpline MethodID = "smoothing_spline"
	MethodPoly            MethodID = "poly"
)

var (
	// AllMethods is the closed set of fitting methods, in evaluation order.
	AllMethods = []MethodID{MethodLinear, MethodCubicSpline, MethodPchip, MethodSmoothingSpline, MethodPoly}

	// PresentationOrder is the default display order, not a ranking.
	PresentationOrder = []MethodID{MethodPchip, MethodSmoothingSpline, MethodCubicSpline, MethodLinear, MethodPoly}
)

func (m MethodID) Valid() bool {
	for _, id := range AllMethods {
		if id == m {
			return true
		}
	}
	return false
}

type Family string

const (
	FamilyInterpolation Family = "interpolation"
	FamilySpline        Family = "spline"
	FamilyRegression    Family = "regression"
)

type MethodMeta struct {
	Name   string   `json:"name"`
	Family Family   `json:"family"`
	S      *float64 `json:"s,omitempty"`
	Degree *int     `json:"degree,omitempty"`
}

type MethodResult struct {
	Values []float64  `json:"y"`
	Meta   MethodMeta `json:"meta"`
}

type OriginalSeries struct {
	X           []float64 `json:"x"`
	Y           []float64 `json:"y"`
	Count       int       `json:"n_original"`
	ColumnsUsed []string  `json:"columns_used"`
}

type Labels struct {
	X string `json:"x"`
	Y string `json:"y"`
}

type ComputationOutput struct {
	Original    OriginalSeries             `json:"original"`
	Grid        []float64                  `json:"grid"`
	Methods     map[MethodID]*MethodResult `json:"methods"`
	MethodOrder []MethodID                 `json:"method_order"`
	Labels      Labels                     `json:"labels"`
}

func (o *ComputationOutput) DebugString() string {
	if o == nil {
		return "<nil>"
	}
	return fmt.Sprintf("original: %v points, grid: %v points, methods: %v", o.Original.Count, len(o.Grid), len(o.Methods))
}
