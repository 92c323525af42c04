package isotope

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DeadtimeMarker is appended to the display label of corrected datasets.
const DeadtimeMarker = " (dt corrected)"

// CorrectDeadtime applies the non-paralyzable deadtime model to every cell
// and returns the corrected dataset. Counts are converted to a rate with
// dwellTime, corrected as rate/(1-rate*deadTime) and scaled back to counts.
//
// dwellTime and deadTime must both be in seconds. The raw dataset is left
// untouched but becomes spent: a second call fails with ErrAlreadyCorrected.
func (r *Raw) CorrectDeadtime(dwellTime, deadTime float64) (*Corrected, error) {
	if r.spent {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCorrected, r.label)
	}
	if dwellTime <= 0 {
		return nil, fmt.Errorf("%w: dwell time %g s must be positive", ErrInvalidParameter, dwellTime)
	}
	if deadTime < 0 {
		return nil, fmt.Errorf("%w: dead time %g s must not be negative", ErrInvalidParameter, deadTime)
	}

	planes := make([]*mat.Dense, len(r.planes))
	for c, p := range r.planes {
		saturated := false
		out := mat.NewDense(r.x, r.y, nil)
		out.Apply(func(_, _ int, counts float64) float64 {
			rate := counts / dwellTime
			loss := rate * deadTime
			if loss >= 1 {
				saturated = true
				return 0
			}
			return rate / (1 - loss) * dwellTime
		}, p)
		if saturated {
			return nil, fmt.Errorf("%w: %s cycle %d exceeds 1/deadtime", ErrDetectorSaturated, r.label, c)
		}
		planes[c] = out
	}

	r.spent = true
	return &Corrected{volume: volume{
		label:   r.label + DeadtimeMarker,
		isotope: r.isotope,
		planes:  planes,
		x:       r.x,
		y:       r.y,
	}}, nil
}
