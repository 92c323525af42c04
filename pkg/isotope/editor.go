package isotope

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sum totals every cell not excluded by m.
func (v *volume) Sum(m *Mask) (float64, error) {
	if err := v.checkMask(m); err != nil {
		return 0, err
	}

	total := 0.0
	for c, p := range v.planes {
		if m == nil {
			total += mat.Sum(p)
			continue
		}
		for i := 0; i < v.x; i++ {
			for j, value := range p.RawRowView(i) {
				if !m.At(c, i, j) {
					total += value
				}
			}
		}
	}
	return total, nil
}

// NPixels counts every cell not excluded by m.
func (v *volume) NPixels(m *Mask) (int, error) {
	if err := v.checkMask(m); err != nil {
		return 0, err
	}
	if m == nil {
		return v.Shape().Len(), nil
	}

	n := 0
	for c := range v.planes {
		for i := 0; i < v.x; i++ {
			for j := 0; j < v.y; j++ {
				if !m.At(c, i, j) {
					n++
				}
			}
		}
	}
	return n, nil
}

// Projection sums the included cells of each pixel over all cycles.
func (v *volume) Projection(m *Mask) (*mat.Dense, error) {
	if err := v.checkMask(m); err != nil {
		return nil, err
	}

	out := mat.NewDense(v.x, v.y, nil)
	for c, p := range v.planes {
		if m == nil {
			out.Add(out, p)
			continue
		}
		for i := 0; i < v.x; i++ {
			for j := 0; j < v.y; j++ {
				if !m.At(c, i, j) {
					out.Set(i, j, out.At(i, j)+p.At(i, j))
				}
			}
		}
	}
	return out, nil
}

// TrimFront removes the first n cycles.
func (v *volume) TrimFront(n int) error {
	if err := v.checkTrim(n); err != nil {
		return err
	}
	v.planes = append([]*mat.Dense(nil), v.planes[n:]...)
	return nil
}

// TrimBack removes the last n cycles.
func (v *volume) TrimBack(n int) error {
	if err := v.checkTrim(n); err != nil {
		return err
	}
	v.planes = append([]*mat.Dense(nil), v.planes[:len(v.planes)-n]...)
	return nil
}

func (v *volume) checkTrim(n int) error {
	if n < 0 || n > len(v.planes) {
		return fmt.Errorf("%w: cannot remove %d of %d cycles from %s",
			ErrInvalidTrim, n, len(v.planes), v.label)
	}
	return nil
}

// Roll circularly shifts every cycle plane by xShift rows and yShift
// columns. A positive shift moves trailing pixels to the front, and
// Roll(-x, -y) undoes Roll(x, y) exactly.
func (v *volume) Roll(xShift, yShift int) {
	xs, ys := wrap(xShift, v.x), wrap(yShift, v.y)
	if xs == 0 && ys == 0 {
		return
	}

	for c, p := range v.planes {
		out := mat.NewDense(v.x, v.y, nil)
		for i := 0; i < v.x; i++ {
			for j := 0; j < v.y; j++ {
				out.Set((i+xs)%v.x, (j+ys)%v.y, p.At(i, j))
			}
		}
		v.planes[c] = out
	}
}

// wrap maps any shift into [0, n).
func wrap(shift, n int) int {
	return ((shift % n) + n) % n
}
