package calibration

import (
	"fmt"
	"math"

	"nanosimsreduce/pkg/isotope"
)

// MeasuredRatio adds the pixel-to-pixel spread to a corrected ratio.
type MeasuredRatio struct {
	CorrectedRatio

	// PixelStdDev is the population standard deviation of the unmasked
	// pixel ratios
	PixelStdDev float64

	// SigmaEmpirical is the standard error PixelStdDev / sqrt(n_pixels)
	SigmaEmpirical float64

	// SigmaCombined adds SigmaEmpirical and SigmaStat in quadrature
	SigmaCombined float64

	pixels *isotope.MaskedView
}

// Pixels returns the masked per-pixel ratio values.
func (m MeasuredRatio) Pixels() *isotope.MaskedView { return m.pixels }

// Measured is the output of QSACorrected.WithPixelSpread.
type Measured struct {
	qsa    *QSACorrected
	ratios []MeasuredRatio
}

// WithPixelSpread estimates each ratio's uncertainty from the distribution
// of pixel-by-pixel ratios under the same mask used for the sums. One pixel
// ratio per minor isotope is required, each over the reference isotope.
func (q *QSACorrected) WithPixelSpread(mask *isotope.Mask, pixelRatios ...*isotope.Ratio) (*Measured, error) {
	byIsotope := make(map[string]*isotope.Ratio, len(pixelRatios))
	for _, r := range pixelRatios {
		if r == nil {
			return nil, fmt.Errorf("%w: nil pixel ratio", ErrInvalidParameter)
		}
		if r.Denominator() != q.sums.Reference.Isotope {
			return nil, fmt.Errorf("%w: pixel ratio %s is over %s, want %s",
				ErrInvalidParameter, r.Label(), r.Denominator(), q.sums.Reference.Isotope)
		}
		byIsotope[r.Numerator()] = r
	}

	n := float64(q.sums.NPixels)
	ratios := make([]MeasuredRatio, len(q.ratios))
	for i, c := range q.ratios {
		pixelRatio, ok := byIsotope[c.Isotope]
		if !ok {
			return nil, fmt.Errorf("%w: no pixel ratio for %s/%s",
				ErrInvalidParameter, c.Isotope, q.sums.Reference.Isotope)
		}
		view, err := pixelRatio.Data(mask)
		if err != nil {
			return nil, fmt.Errorf("masking %s: %w", pixelRatio.Label(), err)
		}

		std := view.StdDev()
		sigma := std / math.Sqrt(n)
		ratios[i] = MeasuredRatio{
			CorrectedRatio: c,
			PixelStdDev:    std,
			SigmaEmpirical: sigma,
			SigmaCombined:  math.Hypot(sigma, c.SigmaStat),
			pixels:         view,
		}
	}

	return &Measured{qsa: q, ratios: ratios}, nil
}

// QSA returns the preceding stage.
func (m *Measured) QSA() *QSACorrected { return m.qsa }

// Ratios returns the measured ratios.
func (m *Measured) Ratios() []MeasuredRatio {
	return append([]MeasuredRatio(nil), m.ratios...)
}
