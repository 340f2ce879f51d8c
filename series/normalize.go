package series

import (
	"fmt"
	"sort"

	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/uyouii/isotherm-augmentor/utils"
	"gonum.org/v1/gonum/stat"
)

const MinDistinctKeys = 3

// Normalize sorts samples by key and collapses samples sharing a key into
// one whose value is the mean of the group.
// Samples with a non-finite key or value are dropped.
func Normalize(samples []model.Sample, columns model.Columns) (*model.Series, error) {
	raw := make([]model.Sample, 0, len(samples))
	for _, sample := range samples {
		if !utils.IsFinite(sample.Key) || !utils.IsFinite(sample.Value) {
			continue
		}
		raw = append(raw, sample)
	}

	sorted := make([]model.Sample, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})

	keys, values := []float64{}, []float64{}
	group := []float64{}
	for i, sample := range sorted {
		group = append(group, sample.Value)
		if i+1 < len(sorted) && sorted[i+1].Key == sample.Key {
			continue
		}
		keys = append(keys, sample.Key)
		values = append(values, stat.Mean(group, nil))
		group = group[:0]
	}

	if len(keys) < MinDistinctKeys {
		return nil, fmt.Errorf("%w: got %d", common.ErrInsufficientData, len(keys))
	}

	return model.NewSeries(keys, values, columns, raw), nil
}
