package calibration

import (
	"fmt"
	"math"

	"nanosimsreduce/pkg/config"
	"nanosimsreduce/pkg/isotope"
)

// ToDelta converts a ratio to permil deviation from a standard ratio.
func ToDelta(ratio, standardRatio float64) float64 {
	return (ratio/standardRatio - 1) * 1000
}

// Delta is a bulk ratio expressed in permil against its standard ratio.
type Delta struct {
	Isotope       string
	StandardRatio float64
	Delta         float64

	// Sigma is SigmaEmpirical expressed in permil; TwoSigma doubles it
	Sigma    float64
	TwoSigma float64

	// PixelStdDev is the spread of the per-pixel delta values
	PixelStdDev float64

	pixels *isotope.MaskedView
}

// Pixels returns the masked per-pixel delta values.
func (d Delta) Pixels() *isotope.MaskedView { return d.pixels }

// Deltas is the output of Measured.Deltas.
type Deltas struct {
	measured *Measured
	values   []Delta
}

// Deltas converts each ratio, its empirical uncertainty and its pixel
// distribution to permil using the standard ratios in cal.
func (m *Measured) Deltas(cal config.Calibration) (*Deltas, error) {
	values := make([]Delta, len(m.ratios))
	for i, r := range m.ratios {
		rc, ok := cal.Ratio(r.Isotope)
		if !ok {
			return nil, fmt.Errorf("%w: no calibration for %s", ErrInvalidParameter, r.Isotope)
		}
		if rc.StandardRatio <= 0 {
			return nil, fmt.Errorf("%w: standard ratio of %s is %g", ErrInvalidParameter, r.Isotope, rc.StandardRatio)
		}

		std := rc.StandardRatio
		pixels := r.pixels.Map(func(v float64) float64 { return ToDelta(v, std) })
		sigma := r.SigmaEmpirical / std * 1000
		values[i] = Delta{
			Isotope:       r.Isotope,
			StandardRatio: std,
			Delta:         ToDelta(r.Ratio, std),
			Sigma:         sigma,
			TwoSigma:      2 * sigma,
			PixelStdDev:   pixels.StdDev(),
			pixels:        pixels,
		}
	}
	return &Deltas{measured: m, values: values}, nil
}

// Measured returns the preceding stage.
func (d *Deltas) Measured() *Measured { return d.measured }

// Values returns the delta values.
func (d *Deltas) Values() []Delta {
	return append([]Delta(nil), d.values...)
}

// Delta returns the delta value of one isotope.
func (d *Deltas) Delta(label string) (Delta, bool) {
	for _, v := range d.values {
		if v.Isotope == label {
			return v, true
		}
	}
	return Delta{}, false
}

// AsStandard returns a copy of cal whose standards are this analysis: the
// measured deltas and their 1 sigma become MeasuredDelta and
// MeasuredDeltaErr, and literature supplies the accepted values per
// isotope. Isotopes missing from literature keep their previous literature
// value.
func (d *Deltas) AsStandard(cal config.Calibration, name string, literature map[string]float64) config.Calibration {
	out := cal
	out.Ratios = make([]config.RatioCalibration, len(cal.Ratios))
	copy(out.Ratios, cal.Ratios)

	for i, rc := range out.Ratios {
		v, ok := d.Delta(rc.Isotope)
		if !ok {
			continue
		}
		rc.Standard.Name = name
		rc.Standard.MeasuredDelta = v.Delta
		rc.Standard.MeasuredDeltaErr = v.Sigma
		if lit, ok := literature[rc.Isotope]; ok {
			rc.Standard.LiteratureDelta = lit
		}
		out.Ratios[i] = rc
	}
	return out
}

// StandardizedDelta is a sample delta corrected for instrumental mass
// fractionation.
type StandardizedDelta struct {
	Isotope  string
	Standard config.Standard

	// Measured is the uncorrected sample delta
	Measured float64

	// IMF is measured minus literature delta of the standard
	IMF float64

	// Corrected is Measured - IMF
	Corrected float64

	// Sigma combines the sample and standard uncertainties in quadrature;
	// TwoSigma doubles it
	Sigma    float64
	TwoSigma float64
}

// Standardized is the output of Deltas.Standardize.
type Standardized struct {
	deltas *Deltas
	values []StandardizedDelta
}

// Standardize removes the instrumental mass fractionation measured on the
// standard in cal from each delta value and combines uncertainties.
func (d *Deltas) Standardize(cal config.Calibration) (*Standardized, error) {
	values := make([]StandardizedDelta, len(d.values))
	for i, v := range d.values {
		rc, ok := cal.Ratio(v.Isotope)
		if !ok {
			return nil, fmt.Errorf("%w: no standard for %s", ErrInvalidParameter, v.Isotope)
		}

		std := rc.Standard
		imf := std.MeasuredDelta - std.LiteratureDelta
		sigma := math.Sqrt(v.Sigma*v.Sigma + std.MeasuredDeltaErr*std.MeasuredDeltaErr)
		values[i] = StandardizedDelta{
			Isotope:   v.Isotope,
			Standard:  std,
			Measured:  v.Delta,
			IMF:       imf,
			Corrected: v.Delta - imf,
			Sigma:     sigma,
			TwoSigma:  2 * sigma,
		}
	}
	return &Standardized{deltas: d, values: values}, nil
}

// Deltas returns the preceding stage.
func (s *Standardized) Deltas() *Deltas { return s.deltas }

// Values returns the standardized deltas.
func (s *Standardized) Values() []StandardizedDelta {
	return append([]StandardizedDelta(nil), s.values...)
}

// Value returns the standardized delta of one isotope.
func (s *Standardized) Value(label string) (StandardizedDelta, bool) {
	for _, v := range s.values {
		if v.Isotope == label {
			return v, true
		}
	}
	return StandardizedDelta{}, false
}
