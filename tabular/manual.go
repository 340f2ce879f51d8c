package tabular

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uyouii/isotherm-augmentor/common"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/uyouii/isotherm-augmentor/series"
)

const (
	manualKeyField   = "p"
	manualValueField = "q"
	minManualPoints  = 3
)

// DecodeManualPoints decodes a JSON list of {"p": <bar>, "q": <mmol/g>} objects.
// An empty string is an empty list. Entries that are not objects decode as
// empty points and are dropped later.
func DecodeManualPoints(raw string) ([]map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: manual_points_json must be a JSON list", common.ErrInvalidInput)
	}

	points := make([]map[string]any, 0, len(items))
	for _, item := range items {
		point, ok := item.(map[string]any)
		if !ok {
			point = map[string]any{}
		}
		points = append(points, point)
	}
	return points, nil
}

// ParseManualPoints turns manually entered points into a series.
func ParseManualPoints(points []map[string]any) (*model.Series, error) {
	if len(points) < minManualPoints {
		return nil, fmt.Errorf("%w: manual mode requires at least %d points", common.ErrInvalidInput, minManualPoints)
	}

	hasKey, hasValue := false, false
	for _, point := range points {
		_, p := point[manualKeyField]
		_, q := point[manualValueField]
		hasKey, hasValue = hasKey || p, hasValue || q
	}
	if !hasKey || !hasValue {
		return nil, fmt.Errorf("%w: each manual point must have %q and %q",
			common.ErrInvalidInput, manualKeyField, manualValueField)
	}

	samples := []model.Sample{}
	for _, point := range points {
		key, ok := toFloat(point[manualKeyField])
		if !ok {
			continue
		}
		value, ok := toFloat(point[manualValueField])
		if !ok {
			continue
		}
		samples = append(samples, model.Sample{Key: key, Value: value})
	}
	if len(samples) < minManualPoints {
		return nil, fmt.Errorf("%w: invalid or insufficient manual points (minimum %d)",
			common.ErrInvalidInput, minManualPoints)
	}

	s, err := series.Normalize(samples, model.DefaultColumns())
	if err != nil {
		return nil, fmt.Errorf("manual points: %w", err)
	}
	return s, nil
}
