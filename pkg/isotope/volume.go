package isotope

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"nanosimsreduce/internal/models"
)

// volume is the storage shared by every dataset variant: one X×Y gonum
// matrix per acquisition cycle.
type volume struct {
	// label is the display label, which gains markers as corrections apply
	label string

	// isotope is the species label as imported, e.g. "16O"
	isotope string

	// planes holds the counts, planes[cycle].At(x, y)
	planes []*mat.Dense

	// x and y are kept apart from planes so an empty stack keeps its grid
	x, y int
}

// newVolume copies counts laid out as [cycle][x][y] into a volume.
func newVolume(label string, counts [][][]float64) (volume, error) {
	if len(counts) == 0 || len(counts[0]) == 0 || len(counts[0][0]) == 0 {
		return volume{}, fmt.Errorf("%w: %s has an empty count array", ErrShapeMismatch, label)
	}

	x, y := len(counts[0]), len(counts[0][0])
	planes := make([]*mat.Dense, len(counts))
	for c, plane := range counts {
		if len(plane) != x {
			return volume{}, fmt.Errorf("%w: %s cycle %d has %d rows, want %d",
				ErrShapeMismatch, label, c, len(plane), x)
		}
		m := mat.NewDense(x, y, nil)
		for i, row := range plane {
			if len(row) != y {
				return volume{}, fmt.Errorf("%w: %s cycle %d row %d has %d columns, want %d",
					ErrShapeMismatch, label, c, i, len(row), y)
			}
			m.SetRow(i, row)
		}
		planes[c] = m
	}

	return volume{label: label, isotope: label, planes: planes, x: x, y: y}, nil
}

// newVolumeFlat builds a volume from row-major data of the given shape.
func newVolumeFlat(label string, shape models.Shape, data []float64) (volume, error) {
	if shape.Cycles <= 0 || shape.X <= 0 || shape.Y <= 0 {
		return volume{}, fmt.Errorf("%w: %s has shape %s", ErrShapeMismatch, label, shape)
	}
	if len(data) != shape.Len() {
		return volume{}, fmt.Errorf("%w: %s has %d values for shape %s",
			ErrShapeMismatch, label, len(data), shape)
	}

	n := shape.PlaneLen()
	planes := make([]*mat.Dense, shape.Cycles)
	for c := range planes {
		plane := make([]float64, n)
		copy(plane, data[c*n:(c+1)*n])
		planes[c] = mat.NewDense(shape.X, shape.Y, plane)
	}

	return volume{label: label, isotope: label, planes: planes, x: shape.X, y: shape.Y}, nil
}

func (v *volume) base() *volume { return v }

// Label returns the display label.
func (v *volume) Label() string { return v.label }

// SetLabel replaces the display label.
func (v *volume) SetLabel(label string) { v.label = label }

// Isotope returns the species label the data was imported under.
func (v *volume) Isotope() string { return v.isotope }

// Shape returns the current [cycles, X, Y] extent.
func (v *volume) Shape() models.Shape {
	return models.Shape{Cycles: len(v.planes), X: v.x, Y: v.y}
}

// NCycles returns the size of the cycle axis.
func (v *volume) NCycles() int { return len(v.planes) }

// Plane returns a copy of one cycle plane.
func (v *volume) Plane(cycle int) (*mat.Dense, error) {
	if cycle < 0 || cycle >= len(v.planes) {
		return nil, fmt.Errorf("%w: cycle %d outside [0, %d)", ErrInvalidParameter, cycle, len(v.planes))
	}
	return mat.DenseCopyOf(v.planes[cycle]), nil
}

// Flat returns a row-major copy of all counts.
func (v *volume) Flat() []float64 {
	out := make([]float64, 0, v.Shape().Len())
	for _, p := range v.planes {
		for i := 0; i < v.x; i++ {
			out = append(out, p.RawRowView(i)...)
		}
	}
	return out
}

func (v *volume) String() string {
	return fmt.Sprintf("Isotope: %s; Data size: %s", v.label, v.Shape())
}

func (v *volume) checkMask(m *Mask) error {
	if m == nil {
		return nil
	}
	if !m.covers(v.Shape()) {
		return fmt.Errorf("%w: mask %s does not cover %s %s",
			ErrShapeMismatch, m.shape, v.label, v.Shape())
	}
	return nil
}
