package isotope

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ratio is a pixel-by-pixel quotient of two datasets. Its counts are
// derived, so it has no deadtime transition.
type Ratio struct {
	volume

	numerator   string
	denominator string
}

// NewRatio divides numerator by denominator cell by cell. Where the
// denominator is exactly zero the ratio is zero; any other denominator,
// negative or tiny, divides normally.
func NewRatio(label string, numerator, denominator Dataset) (*Ratio, error) {
	num, den := numerator.base(), denominator.base()
	if num.Shape() != den.Shape() {
		return nil, fmt.Errorf("%w: %s %s over %s %s",
			ErrShapeMismatch, num.label, num.Shape(), den.label, den.Shape())
	}

	planes := make([]*mat.Dense, len(num.planes))
	for c := range num.planes {
		d := den.planes[c]
		out := mat.NewDense(num.x, num.y, nil)
		out.Apply(func(i, j int, n float64) float64 {
			q := d.At(i, j)
			if q == 0 {
				return 0
			}
			return n / q
		}, num.planes[c])
		planes[c] = out
	}

	return &Ratio{
		volume: volume{
			label:   label,
			isotope: label,
			planes:  planes,
			x:       num.x,
			y:       num.y,
		},
		numerator:   num.isotope,
		denominator: den.isotope,
	}, nil
}

// IsDeadtimeCorrected always reports false: a ratio never transitions.
func (r *Ratio) IsDeadtimeCorrected() bool { return false }

// Numerator returns the isotope label of the numerator.
func (r *Ratio) Numerator() string { return r.numerator }

// Denominator returns the isotope label of the denominator.
func (r *Ratio) Denominator() string { return r.denominator }

// SumCycles collapses the cycle axis into a single-plane ratio dataset.
func (r *Ratio) SumCycles() *Ratio {
	return &Ratio{volume: r.volume.sumCycles(), numerator: r.numerator, denominator: r.denominator}
}
