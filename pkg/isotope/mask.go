package isotope

import (
	"fmt"
	"math"

	"nanosimsreduce/internal/models"
)

// Mask marks cells to exclude from aggregate statistics; true = excluded.
// A mask built from a single-plane dataset applies to every cycle of a
// dataset with the same X/Y extent. Masks are never modified after
// construction and may be shared between datasets.
type Mask struct {
	shape    models.Shape
	excluded []bool
}

// Mask builds an exclusion mask for the dataset: a cell is excluded when
// value <= lower or value > upper.
func (v *volume) Mask(lower, upper float64) *Mask {
	shape := v.Shape()
	excluded := make([]bool, 0, shape.Len())
	for _, p := range v.planes {
		for i := 0; i < v.x; i++ {
			for _, value := range p.RawRowView(i) {
				excluded = append(excluded, value <= lower || value > upper)
			}
		}
	}
	return &Mask{shape: shape, excluded: excluded}
}

// DefaultMask excludes non-positive cells.
func (v *volume) DefaultMask() *Mask {
	return v.Mask(0, math.Inf(1))
}

// Shape returns the extent the mask was built for.
func (m *Mask) Shape() models.Shape { return m.shape }

// IsPlane reports whether the mask broadcasts over cycles.
func (m *Mask) IsPlane() bool { return m.shape.Cycles == 1 }

// Excluded counts the excluded cells of the mask itself.
func (m *Mask) Excluded() int {
	n := 0
	for _, e := range m.excluded {
		if e {
			n++
		}
	}
	return n
}

// At reports whether cell (cycle, x, y) of a dataset is excluded. Plane
// masks ignore cycle.
func (m *Mask) At(cycle, x, y int) bool {
	if m.IsPlane() {
		cycle = 0
	}
	return m.excluded[(cycle*m.shape.X+x)*m.shape.Y+y]
}

// Union returns a mask excluding every cell excluded by m or o.
func (m *Mask) Union(o *Mask) (*Mask, error) {
	if m.shape != o.shape {
		return nil, fmt.Errorf("%w: cannot combine masks %s and %s", ErrShapeMismatch, m.shape, o.shape)
	}
	out := make([]bool, len(m.excluded))
	for i := range out {
		out[i] = m.excluded[i] || o.excluded[i]
	}
	return &Mask{shape: m.shape, excluded: out}, nil
}

// covers reports whether the mask can be applied to data of shape s.
func (m *Mask) covers(s models.Shape) bool {
	if !m.shape.SamePlane(s) {
		return false
	}
	return m.IsPlane() || m.shape.Cycles == s.Cycles
}
