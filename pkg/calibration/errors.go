package calibration

import "errors"

var (
	// ErrDivisionHazard is returned when a bulk quantity would divide by an
	// exactly zero sum.
	ErrDivisionHazard = errors.New("division by zero sum")

	// ErrInvalidParameter is returned for missing or non-physical inputs.
	ErrInvalidParameter = errors.New("invalid parameter")
)
