// Package isotope holds per-isotope image stacks from a NanoSIMS analysis
// and the transforms applied to them before bulk statistics: deadtime
// correction, exclusion masks, cycle trimming, pixel rolling and
// pixel-by-pixel ratios.
//
// A dataset is one of three variants. Raw holds imported counts and is the
// only variant with a deadtime transition; Corrected is its output; Ratio is
// derived from two datasets and can never be corrected.
package isotope

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"nanosimsreduce/internal/models"
)

// Dataset is implemented by *Raw, *Corrected and *Ratio only.
type Dataset interface {
	Label() string
	SetLabel(label string)
	Isotope() string
	Shape() models.Shape
	NCycles() int
	IsDeadtimeCorrected() bool

	// Mask returns an exclusion mask, true where value <= lower or
	// value > upper.
	Mask(lower, upper float64) *Mask

	// DefaultMask excludes non-positive values only.
	DefaultMask() *Mask

	// Sum totals the cells not excluded by m; a nil mask sums everything.
	Sum(m *Mask) (float64, error)

	// NPixels counts the cells not excluded by m; a nil mask counts all.
	NPixels(m *Mask) (int, error)

	// Data returns a copy of the counts with m's exclusions attached.
	Data(m *Mask) (*MaskedView, error)

	// Projection sums included cells over the cycle axis into one X×Y plane.
	Projection(m *Mask) (*mat.Dense, error)

	TrimFront(n int) error
	TrimBack(n int) error
	Roll(xShift, yShift int)

	Plane(cycle int) (*mat.Dense, error)
	Flat() []float64

	base() *volume
}

// Raw is an imported, uncorrected isotope image stack.
type Raw struct {
	volume

	// spent is set once the counts have been handed to a Corrected dataset
	spent bool
}

// NewRaw creates a raw dataset from counts laid out as [cycle][x][y].
func NewRaw(label string, counts [][][]float64) (*Raw, error) {
	v, err := newVolume(label, counts)
	if err != nil {
		return nil, err
	}
	return &Raw{volume: v}, nil
}

// NewRawFlat creates a raw dataset from row-major counts of the given shape.
func NewRawFlat(label string, shape models.Shape, counts []float64) (*Raw, error) {
	v, err := newVolumeFlat(label, shape, counts)
	if err != nil {
		return nil, err
	}
	return &Raw{volume: v}, nil
}

// IsDeadtimeCorrected reports whether this raw value has already been
// turned into a Corrected dataset.
func (r *Raw) IsDeadtimeCorrected() bool { return r.spent }

// SumCycles collapses the cycle axis into a single-plane raw dataset.
func (r *Raw) SumCycles() *Raw {
	return &Raw{volume: r.volume.sumCycles()}
}

// Corrected is an isotope stack that has been deadtime corrected exactly
// once. It has no correction transition.
type Corrected struct {
	volume
}

// IsDeadtimeCorrected always reports true.
func (c *Corrected) IsDeadtimeCorrected() bool { return true }

// SumCycles collapses the cycle axis into a single-plane corrected dataset.
func (c *Corrected) SumCycles() *Corrected {
	return &Corrected{volume: c.volume.sumCycles()}
}

// CorrectDeadtime applies deadtime correction to any dataset variant. Only
// an unspent *Raw can be corrected; everything else fails with
// ErrAlreadyCorrected.
func CorrectDeadtime(d Dataset, dwellTime, deadTime float64) (*Corrected, error) {
	switch ds := d.(type) {
	case *Raw:
		return ds.CorrectDeadtime(dwellTime, deadTime)
	case *Corrected:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCorrected, ds.label)
	case *Ratio:
		return nil, fmt.Errorf("%w: %s is a ratio", ErrAlreadyCorrected, ds.label)
	default:
		panic(fmt.Sprintf("isotope: unknown dataset variant %T", d))
	}
}

func (v *volume) sumCycles() volume {
	plane, _ := v.Projection(nil)
	return volume{
		label:   v.label,
		isotope: v.isotope,
		planes:  []*mat.Dense{plane},
		x:       v.x,
		y:       v.y,
	}
}
