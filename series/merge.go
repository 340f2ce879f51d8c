package series

import (
	"fmt"

	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
)

// Merge combines a file-sourced and a manually entered series.
// When both are present the raw samples of both are regrouped together, so a
// shared key averages every contributing sample rather than the per-source means.
func Merge(file, manual *model.Series) (*model.Series, error) {
	if file.IsEmpty() && manual.IsEmpty() {
		return nil, common.ErrNoData
	}
	if manual.IsEmpty() {
		return file, nil
	}
	if file.IsEmpty() {
		return manual, nil
	}

	samples := append(file.Samples(), manual.Samples()...)
	merged, err := Normalize(samples, model.DefaultColumns())
	if err != nil {
		return nil, fmt.Errorf("after merging: %w", err)
	}
	return merged, nil
}
