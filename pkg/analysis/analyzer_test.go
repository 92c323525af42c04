package analysis

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nanosimsreduce/internal/logging"
	"nanosimsreduce/internal/models"
	"nanosimsreduce/pkg/calibration"
	"nanosimsreduce/pkg/config"
	"nanosimsreduce/pkg/importer"
	"nanosimsreduce/pkg/isotope"
)

type memorySource struct {
	cube *importer.Cube
}

func (s memorySource) Load(ctx context.Context) (*importer.Cube, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.cube, s.cube.Validate()
}

// syntheticCube builds a 3-cycle 4x4 oxygen image. Minor isotopes follow
// the VSMOW ratios scaled by a per-pixel factor; one corner pixel is dim
// enough to fall under a 100-count mask.
func syntheticCube(source string) *importer.Cube {
	const cycles, n = 3, 4
	o16 := make([][][]float64, cycles)
	o17 := make([][][]float64, cycles)
	o18 := make([][][]float64, cycles)
	for c := 0; c < cycles; c++ {
		o16[c] = make([][]float64, n)
		o17[c] = make([][]float64, n)
		o18[c] = make([][]float64, n)
		for x := 0; x < n; x++ {
			o16[c][x] = make([]float64, n)
			o17[c][x] = make([]float64, n)
			o18[c][x] = make([]float64, n)
			for y := 0; y < n; y++ {
				counts := 20000 + 1500*float64(x) + 700*float64(y) + 300*float64(c)
				if x == 0 && y == 0 {
					counts = 40
				}
				f := 1 + 0.01*float64((x+2*y+c)%5)
				o16[c][x][y] = counts
				o17[c][x][y] = math.Round(counts * config.VSMOWR17 * f)
				o18[c][x][y] = math.Round(counts * config.VSMOWR18 * f)
			}
		}
	}
	return &importer.Cube{
		Header: models.Header{
			Source:         source,
			Labels:         []string{"16O", "17O", "18O"},
			DwellTime:      0.01,
			PrimaryCurrent: 1.5,
		},
		Isotopes: map[string][][][]float64{"16O": o16, "17O": o17, "18O": o18},
	}
}

func testParams(mode Mode) *Params {
	cfg := config.DefaultConfig()
	cfg.Processing.MaskLower = 100
	cfg.Processing.TrimFront = 1
	return ParamsFromConfig(cfg, memorySource{syntheticCube("synthetic.im")}, mode)
}

// manualReduction repeats the sample reduction directly on the calibration
// package.
func manualReduction(t *testing.T, p *Params) *calibration.Standardized {
	t.Helper()

	cube := syntheticCube("synthetic.im")
	corrected := map[string]*isotope.Corrected{}
	for _, label := range cube.Header.Labels {
		raw, err := isotope.NewRaw(label, cube.Isotopes[label])
		require.NoError(t, err)
		c, err := raw.CorrectDeadtime(cube.Header.DwellTime, p.DeadTime)
		require.NoError(t, err)
		require.NoError(t, c.TrimFront(p.TrimFront))
		corrected[label] = c
	}

	o16 := corrected["16O"]
	mask := o16.Mask(p.MaskLower, math.Inf(1))
	r17, err := isotope.NewRatio("17O/16O", corrected["17O"], o16)
	require.NoError(t, err)
	r18, err := isotope.NewRatio("18O/16O", corrected["18O"], o16)
	require.NoError(t, err)

	sums, err := calibration.Sum(mask, o16, corrected["17O"], corrected["18O"])
	require.NoError(t, err)
	bulk, err := sums.Ratios()
	require.NoError(t, err)
	qsa, err := bulk.CorrectQSA(calibration.Beam{PrimaryCurrent: 1.5, DwellTime: 0.01}, p.Calibration.QSABeta)
	require.NoError(t, err)
	measured, err := qsa.WithPixelSpread(mask, r17, r18)
	require.NoError(t, err)
	deltas, err := measured.Deltas(p.Calibration)
	require.NoError(t, err)
	final, err := deltas.Standardize(p.Calibration)
	require.NoError(t, err)
	return final
}

func TestProcessSample(t *testing.T) {
	p := testParams(Sample)

	res, err := NewAnalyzer(p, logging.Nop()).Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Sample, res.Mode)
	assert.Equal(t, 2, res.Cycles)
	assert.Equal(t, 2*15, res.Sums.NPixels)
	require.NotNil(t, res.Standardized)

	want := manualReduction(t, p)
	assert.Equal(t, want.Values(), res.Standardized.Values())

	for _, v := range res.Standardized.Values() {
		assert.False(t, math.IsNaN(v.Corrected), v.Isotope)
		assert.Greater(t, v.TwoSigma, 0.0, v.Isotope)
	}
}

func TestProcessStandard(t *testing.T) {
	res, err := NewAnalyzer(testParams(Standard), logging.Nop()).Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Standard, res.Mode)
	assert.Nil(t, res.Standardized)
	require.NotNil(t, res.Deltas)
	assert.Len(t, res.Deltas.Values(), 2)
}

func TestProcessDeterministic(t *testing.T) {
	a, err := NewAnalyzer(testParams(Sample), logging.Nop()).Process(context.Background())
	require.NoError(t, err)
	b, err := NewAnalyzer(testParams(Sample), logging.Nop()).Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Standardized.Values(), b.Standardized.Values())
	assert.Equal(t, a.QSA.K(), b.QSA.K())
}

func TestProcessErrors(t *testing.T) {
	t.Run("missing current", func(t *testing.T) {
		p := testParams(Sample)
		cube := syntheticCube("nocurrent.im")
		cube.Header.PrimaryCurrent = 0
		p.Source = memorySource{cube}

		_, err := NewAnalyzer(p, logging.Nop()).Process(context.Background())
		assert.ErrorIs(t, err, ErrMissingBeam)
	})

	t.Run("over-trim", func(t *testing.T) {
		p := testParams(Sample)
		p.TrimBack = 3

		_, err := NewAnalyzer(p, logging.Nop()).Process(context.Background())
		assert.ErrorIs(t, err, isotope.ErrInvalidTrim)
	})

	t.Run("everything masked", func(t *testing.T) {
		p := testParams(Sample)
		p.MaskLower = 1e9

		_, err := NewAnalyzer(p, logging.Nop()).Process(context.Background())
		assert.ErrorIs(t, err, calibration.ErrDivisionHazard)
	})

	t.Run("unknown reference", func(t *testing.T) {
		p := testParams(Sample)
		p.Calibration.Reference = "28Si"

		_, err := NewAnalyzer(p, logging.Nop()).Process(context.Background())
		assert.ErrorIs(t, err, importer.ErrUnknownIsotope)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewAnalyzer(testParams(Sample), logging.Nop()).Process(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProcessSavesImage(t *testing.T) {
	p := testParams(Sample)
	p.ImageDir = filepath.Join(t.TempDir(), "images")

	res, err := NewAnalyzer(p, logging.Nop()).Process(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Image)

	_, err = os.Stat(res.Image)
	assert.NoError(t, err)
}

func TestRollPreservesBulkResult(t *testing.T) {
	plain, err := NewAnalyzer(testParams(Sample), logging.Nop()).Process(context.Background())
	require.NoError(t, err)

	p := testParams(Sample)
	p.RollX, p.RollY = 1, -2
	rolled, err := NewAnalyzer(p, logging.Nop()).Process(context.Background())
	require.NoError(t, err)

	// Rolling moves pixels together across isotopes, so totals are unchanged
	assert.Equal(t, plain.Sums.NPixels, rolled.Sums.NPixels)
	assert.InEpsilon(t, plain.Sums.Reference.Sum, rolled.Sums.Reference.Sum, 1e-12)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "sample", Sample.String())
	assert.Equal(t, "standard", Standard.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
