package calibration

import (
	"fmt"
	"math"

	"nanosimsreduce/pkg/isotope"
)

// IsotopeSum is the masked total of one isotope.
type IsotopeSum struct {
	Isotope string
	Sum     float64
}

// CountingError is the Poisson uncertainty sqrt(N) of the total.
func (s IsotopeSum) CountingError() float64 {
	return math.Sqrt(s.Sum)
}

// Sums holds the masked totals of a reference isotope and its minors.
type Sums struct {
	Reference IsotopeSum
	Minors    []IsotopeSum

	// NPixels is the number of reference cells the mask keeps
	NPixels int
}

// Sum totals the reference and each minor isotope over the cells kept by
// mask, which must be the same mask for all of them. Only deadtime
// corrected datasets are accepted.
func Sum(mask *isotope.Mask, reference *isotope.Corrected, minors ...*isotope.Corrected) (*Sums, error) {
	if reference == nil {
		return nil, fmt.Errorf("%w: no reference isotope", ErrInvalidParameter)
	}
	if len(minors) == 0 {
		return nil, fmt.Errorf("%w: no minor isotopes", ErrInvalidParameter)
	}

	refSum, err := reference.Sum(mask)
	if err != nil {
		return nil, fmt.Errorf("summing %s: %w", reference.Isotope(), err)
	}
	n, err := reference.NPixels(mask)
	if err != nil {
		return nil, fmt.Errorf("counting %s pixels: %w", reference.Isotope(), err)
	}

	sums := &Sums{
		Reference: IsotopeSum{Isotope: reference.Isotope(), Sum: refSum},
		Minors:    make([]IsotopeSum, 0, len(minors)),
		NPixels:   n,
	}
	seen := map[string]bool{reference.Isotope(): true}
	for _, m := range minors {
		if m == nil {
			return nil, fmt.Errorf("%w: nil minor isotope", ErrInvalidParameter)
		}
		if m.Shape() != reference.Shape() {
			return nil, fmt.Errorf("%w: %s %s does not match %s %s", isotope.ErrShapeMismatch,
				m.Isotope(), m.Shape(), reference.Isotope(), reference.Shape())
		}
		if seen[m.Isotope()] {
			return nil, fmt.Errorf("%w: isotope %s given twice", ErrInvalidParameter, m.Isotope())
		}
		seen[m.Isotope()] = true

		total, err := m.Sum(mask)
		if err != nil {
			return nil, fmt.Errorf("summing %s: %w", m.Isotope(), err)
		}
		sums.Minors = append(sums.Minors, IsotopeSum{Isotope: m.Isotope(), Sum: total})
	}

	return sums, nil
}

// Minor returns the total of one minor isotope.
func (s *Sums) Minor(label string) (IsotopeSum, bool) {
	for _, m := range s.Minors {
		if m.Isotope == label {
			return m, true
		}
	}
	return IsotopeSum{}, false
}

// BulkRatio is a minor/reference ratio of masked totals.
type BulkRatio struct {
	Isotope string
	Initial float64
}

// BulkRatios is the output of Sums.Ratios.
type BulkRatios struct {
	sums   *Sums
	ratios []BulkRatio
}

// Ratios divides each minor total by the reference total. A zero reference
// total fails with ErrDivisionHazard.
func (s *Sums) Ratios() (*BulkRatios, error) {
	if s.Reference.Sum == 0 {
		return nil, fmt.Errorf("%w: %s total is zero over %d pixels",
			ErrDivisionHazard, s.Reference.Isotope, s.NPixels)
	}

	ratios := make([]BulkRatio, len(s.Minors))
	for i, m := range s.Minors {
		ratios[i] = BulkRatio{Isotope: m.Isotope, Initial: m.Sum / s.Reference.Sum}
	}
	return &BulkRatios{sums: s, ratios: ratios}, nil
}

// Sums returns the totals the ratios were computed from.
func (b *BulkRatios) Sums() *Sums { return b.sums }

// Ratios returns the uncorrected bulk ratios.
func (b *BulkRatios) Ratios() []BulkRatio {
	return append([]BulkRatio(nil), b.ratios...)
}
