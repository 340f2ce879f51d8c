package common

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData = errors.New("at least 3 distinct keys are required")
	ErrNoData           = errors.New("no data: upload a file or enter manual points")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrFitting          = errors.New("fitting failed")

	// input adapter errors
	ErrUnsupportedFormat = errors.New("unsupported format, use .csv or .xlsx/.xls")
	ErrMissingColumns    = errors.New("required columns not found, expected 'P [bar]' and 'mmol/g co2' (or similar)")
	ErrInvalidInput      = errors.New("invalid input")
)

// FittingError reports which method failed to produce a curve.
type FittingError struct {
	Method string
	Err    error
}

func NewFittingError(method string, err error) *FittingError {
	return &FittingError{Method: method, Err: err}
}

func (e *FittingError) Error() string {
	return fmt.Sprintf("%s: method %s: %v", ErrFitting, e.Method, e.Err)
}

func (e *FittingError) Unwrap() error {
	return e.Err
}

func (e *FittingError) Is(target error) bool {
	return target == ErrFitting
}

// InvalidParameter wraps ErrInvalidParameter with the offending name and value.
func InvalidParameter(name string, value any, rule string) error {
	return fmt.Errorf("%w: %s=%v, %s", ErrInvalidParameter, name, value, rule)
}
