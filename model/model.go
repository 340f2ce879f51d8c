package model

import (
	"fmt"
)

const (
	PressureColumn = "P [bar]"
	UptakeColumn   = "mmol/g co2"
)

type Sample struct {
	Key   float64
	Value float64
}

func (s *Sample) Before(sample Sample) bool {
	return s.Key < sample.Key
}

// Columns names the source columns a series was read from.
type Columns struct {
	X string
	Y string
}

func DefaultColumns() Columns {
	return Columns{X: PressureColumn, Y: UptakeColumn}
}

func (c Columns) List() []string {
	return []string{c.X, c.Y}
}

// Series is a reconciled sequence with strictly increasing, distinct keys.
// It must be built by the series package and is not modified afterwards.
type Series struct {
	Keys    []float64
	Values  []float64
	Columns Columns

	// raw samples that were grouped into Keys/Values
	samples []Sample
}

func NewSeries(keys, values []float64, columns Columns, samples []Sample) *Series {
	return &Series{
		Keys:    keys,
		Values:  values,
		Columns: columns,
		samples: samples,
	}
}

// Samples returns a copy of the raw samples the series was built from.
func (s *Series) Samples() []Sample {
	if s == nil {
		return nil
	}
	res := make([]Sample, len(s.samples))
	copy(res, s.samples)
	return res
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Keys)
}

func (s *Series) IsEmpty() bool {
	return s.Len() == 0
}

func (s *Series) MinKey() float64 {
	return s.Keys[0]
}

func (s *Series) MaxKey() float64 {
	return s.Keys[len(s.Keys)-1]
}

func (s *Series) DebugString() string {
	res := fmt.Sprintf("columns: %+v, pointCount: %+v, rawCount: %+v", s.Columns, s.Len(), len(s.samples))
	return res
}
