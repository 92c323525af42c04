package calibration

import (
	"fmt"
	"math"
)

// IonsPerPicoampereSecond converts a primary current in pA to ions per second.
const IonsPerPicoampereSecond = 6.2415e6

// Beam describes the primary beam of an analysis.
type Beam struct {
	// PrimaryCurrent in picoamperes
	PrimaryCurrent float64

	// DwellTime per pixel in seconds
	DwellTime float64
}

// CorrectedRatio is a bulk ratio after QSA correction with its counting
// statistics uncertainty.
type CorrectedRatio struct {
	Isotope string
	Initial float64
	Ratio   float64

	// SigmaStat is the 1 sigma uncertainty propagated from sqrt(N) of the
	// numerator and denominator totals
	SigmaStat float64
}

// QSACorrected is the output of BulkRatios.CorrectQSA.
type QSACorrected struct {
	sums   *Sums
	beam   Beam
	beta   float64
	k      float64
	ratios []CorrectedRatio
}

// CorrectQSA applies the quasi-simultaneous arrival correction of Hillion
// et al. (2008):
//
//	K = sum(reference) / (I * 6.2415e6 * dwell * n_pixels)
//	R = R_init / (1 + beta*K)
//
// and propagates the Poisson uncertainty of both totals into each ratio.
// A zero minor total fails with ErrDivisionHazard since its relative
// uncertainty is undefined.
func (b *BulkRatios) CorrectQSA(beam Beam, beta float64) (*QSACorrected, error) {
	if beam.PrimaryCurrent <= 0 {
		return nil, fmt.Errorf("%w: primary current %g pA must be positive", ErrInvalidParameter, beam.PrimaryCurrent)
	}
	if beam.DwellTime <= 0 {
		return nil, fmt.Errorf("%w: dwell time %g s must be positive", ErrInvalidParameter, beam.DwellTime)
	}
	if beta < 0 {
		return nil, fmt.Errorf("%w: QSA beta %g must not be negative", ErrInvalidParameter, beta)
	}

	s := b.sums
	if s.NPixels == 0 {
		return nil, fmt.Errorf("%w: no unmasked pixels", ErrDivisionHazard)
	}

	k := s.Reference.Sum / (beam.PrimaryCurrent * IonsPerPicoampereSecond * beam.DwellTime * float64(s.NPixels))
	refRel := s.Reference.CountingError() / s.Reference.Sum

	ratios := make([]CorrectedRatio, len(b.ratios))
	for i, r := range b.ratios {
		minor, _ := s.Minor(r.Isotope)
		if minor.Sum == 0 {
			return nil, fmt.Errorf("%w: %s total is zero", ErrDivisionHazard, r.Isotope)
		}

		corrected := r.Initial / (1 + beta*k)
		minorRel := minor.CountingError() / minor.Sum
		ratios[i] = CorrectedRatio{
			Isotope:   r.Isotope,
			Initial:   r.Initial,
			Ratio:     corrected,
			SigmaStat: corrected * math.Sqrt(minorRel*minorRel+refRel*refRel),
		}
	}

	return &QSACorrected{sums: s, beam: beam, beta: beta, k: k, ratios: ratios}, nil
}

// K returns the QSA count-rate factor.
func (q *QSACorrected) K() float64 { return q.k }

// Beta returns the coefficient the correction used.
func (q *QSACorrected) Beta() float64 { return q.beta }

// Beam returns the beam parameters the correction used.
func (q *QSACorrected) Beam() Beam { return q.beam }

// Sums returns the totals behind the ratios.
func (q *QSACorrected) Sums() *Sums { return q.sums }

// Ratios returns the corrected ratios.
func (q *QSACorrected) Ratios() []CorrectedRatio {
	return append([]CorrectedRatio(nil), q.ratios...)
}
