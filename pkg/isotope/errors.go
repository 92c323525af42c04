package isotope

import "errors"

var (
	// ErrAlreadyCorrected is returned when deadtime correction is requested
	// for data that is already corrected, including every ratio dataset.
	ErrAlreadyCorrected = errors.New("deadtime correction already applied")

	// ErrInvalidTrim is returned when a trim removes more cycles than exist.
	ErrInvalidTrim = errors.New("invalid trim")

	// ErrShapeMismatch is returned when two arrays or an array and a mask
	// do not describe the same pixel grid.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidParameter is returned for non-physical arguments such as a
	// non-positive dwell time.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDetectorSaturated is returned when a count rate is at or beyond the
	// inverse deadtime, where the non-paralyzable model has no solution.
	ErrDetectorSaturated = errors.New("detector saturated")
)
