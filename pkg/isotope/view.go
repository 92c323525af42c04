package isotope

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"nanosimsreduce/internal/models"
)

// MaskedView is a copy of a dataset's cells with the exclusion mask kept
// alongside. Excluded cells stay in place and are skipped by the
// aggregate methods.
type MaskedView struct {
	shape  models.Shape
	values []float64
	mask   *Mask
}

// Data returns the counts as a masked view. A nil mask excludes nothing.
func (v *volume) Data(m *Mask) (*MaskedView, error) {
	if err := v.checkMask(m); err != nil {
		return nil, err
	}
	return &MaskedView{shape: v.Shape(), values: v.Flat(), mask: m}, nil
}

// Shape returns the extent of the view.
func (mv *MaskedView) Shape() models.Shape { return mv.shape }

// At returns the value of cell (cycle, x, y) and whether it is excluded.
func (mv *MaskedView) At(cycle, x, y int) (float64, bool) {
	value := mv.values[(cycle*mv.shape.X+x)*mv.shape.Y+y]
	return value, mv.excluded(cycle, x, y)
}

func (mv *MaskedView) excluded(cycle, x, y int) bool {
	return mv.mask != nil && mv.mask.At(cycle, x, y)
}

// All returns every value, excluded ones included, in row-major order.
func (mv *MaskedView) All() []float64 {
	return append([]float64(nil), mv.values...)
}

// Values returns the included values in row-major order.
func (mv *MaskedView) Values() []float64 {
	if mv.mask == nil {
		return mv.All()
	}

	out := make([]float64, 0, len(mv.values))
	i := 0
	for c := 0; c < mv.shape.Cycles; c++ {
		for x := 0; x < mv.shape.X; x++ {
			for y := 0; y < mv.shape.Y; y++ {
				if !mv.mask.At(c, x, y) {
					out = append(out, mv.values[i])
				}
				i++
			}
		}
	}
	return out
}

// Count returns the number of included values.
func (mv *MaskedView) Count() int { return len(mv.Values()) }

// Sum totals the included values.
func (mv *MaskedView) Sum() float64 { return floats.Sum(mv.Values()) }

// Mean returns the mean of the included values, NaN when there are none.
func (mv *MaskedView) Mean() float64 {
	mean, _ := mv.MeanStdDev()
	return mean
}

// StdDev returns the population standard deviation of the included values,
// NaN when there are none.
func (mv *MaskedView) StdDev() float64 {
	_, std := mv.MeanStdDev()
	return std
}

// MeanStdDev returns the mean and population standard deviation of the
// included values.
func (mv *MaskedView) MeanStdDev() (mean, std float64) {
	values := mv.Values()
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanStdDev(values, nil)
}

// Map returns a view with f applied to every value and the same mask.
func (mv *MaskedView) Map(f func(float64) float64) *MaskedView {
	out := make([]float64, len(mv.values))
	for i, value := range mv.values {
		out[i] = f(value)
	}
	return &MaskedView{shape: mv.shape, values: out, mask: mv.mask}
}
