// Package analysis runs a complete NanoSIMS oxygen-isotope reduction for
// one file, or for many files in parallel.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"nanosimsreduce/internal/models"
	"nanosimsreduce/pkg/calibration"
	"nanosimsreduce/pkg/config"
	"nanosimsreduce/pkg/importer"
	"nanosimsreduce/pkg/isotope"
	"nanosimsreduce/pkg/visualization"
)

// Mode selects how far the reduction goes.
type Mode int

const (
	// Sample analyses are standardized against the configured standard
	Sample Mode = iota

	// Standard analyses stop at delta values; their output calibrates
	// later samples
	Standard
)

func (m Mode) String() string {
	switch m {
	case Sample:
		return "sample"
	case Standard:
		return "standard"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ErrMissingBeam is returned when neither the parameters nor the file
// header provide a primary current or dwell time.
var ErrMissingBeam = errors.New("missing beam parameter")

// Params holds everything needed to reduce one file.
type Params struct {
	// Source provides the isotope counts
	Source importer.Source

	// Mode selects sample or standard reduction
	Mode Mode

	// DeadTime is the detector dead time in seconds
	DeadTime float64

	// DwellTime per pixel in seconds; zero takes it from the header
	DwellTime float64

	// PrimaryCurrent in picoamperes; zero takes it from the header
	PrimaryCurrent float64

	// TrimFront and TrimBack cycles are removed after deadtime correction
	TrimFront int
	TrimBack  int

	// RollX and RollY realign every plane after trimming
	RollX int
	RollY int

	// MaskLower and MaskUpper bound the reference isotope counts kept in
	// the analysis; a zero MaskUpper is unbounded
	MaskLower float64
	MaskUpper float64

	// Calibration holds the reference isotope, QSA beta, standard ratios
	// and the running standard
	Calibration config.Calibration

	// ImageDir receives a masked image of the reference isotope when set
	ImageDir string
}

// ParamsFromConfig fills Params from a loaded configuration.
func ParamsFromConfig(cfg *config.Config, src importer.Source, mode Mode) *Params {
	p := cfg.Processing
	return &Params{
		Source:         src,
		Mode:           mode,
		DeadTime:       p.DeadTime,
		DwellTime:      p.DwellTime,
		PrimaryCurrent: p.PrimaryCurrent,
		TrimFront:      p.TrimFront,
		TrimBack:       p.TrimBack,
		RollX:          p.RollX,
		RollY:          p.RollY,
		MaskLower:      p.MaskLower,
		MaskUpper:      p.MaskUpper,
		Calibration:    cfg.Calibration,
		ImageDir:       cfg.Output.ImageDir,
	}
}

// Result is the outcome of one reduction.
type Result struct {
	Mode   Mode
	Header models.Header
	Cycles int

	// Sums, QSA and Deltas are the intermediate stages kept for reporting
	Sums   *calibration.Sums
	QSA    *calibration.QSACorrected
	Deltas *calibration.Deltas

	// Standardized is nil for standard analyses
	Standardized *calibration.Standardized

	// Image is the path of the reference isotope image, if one was saved
	Image string

	Elapsed time.Duration
}

// Analyzer reduces one file following the fixed order: import, deadtime
// correction, trim and roll, reference mask, pixel ratios, bulk sums, QSA
// correction, uncertainties, delta values and, for samples, IMF correction.
type Analyzer struct {
	params *Params
	log    zerolog.Logger
}

// NewAnalyzer creates an analyzer for one file.
func NewAnalyzer(params *Params, log zerolog.Logger) *Analyzer {
	return &Analyzer{params: params, log: log}
}

// Process runs the complete reduction.
func (a *Analyzer) Process(ctx context.Context) (*Result, error) {
	start := time.Now()
	p := a.params
	cal := p.Calibration

	// Step 1: Import
	im := importer.New()
	if err := im.ImportFile(ctx, p.Source); err != nil {
		return nil, fmt.Errorf("failed to import: %w", err)
	}
	header := im.Header()
	log := a.log.With().Str("file", header.Source).Logger()
	log.Info().Strs("isotopes", im.Labels()).Msg("Step 1: imported")

	// Step 2: Deadtime correction
	if err := im.DeadtimeCorrectAll(p.DeadTime, p.DwellTime); err != nil {
		return nil, fmt.Errorf("failed to correct deadtime: %w", err)
	}
	log.Debug().Float64("deadTime", p.DeadTime).Msg("Step 2: deadtime corrected")

	// Step 3: Trim and roll, before any mask exists
	if err := im.TrimFrontAll(p.TrimFront); err != nil {
		return nil, fmt.Errorf("failed to trim front: %w", err)
	}
	if err := im.TrimBackAll(p.TrimBack); err != nil {
		return nil, fmt.Errorf("failed to trim back: %w", err)
	}
	im.RollAll(p.RollX, p.RollY)

	reference, err := im.Corrected(cal.Reference)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("cycles", reference.NCycles()).Int("rollX", p.RollX).Int("rollY", p.RollY).
		Msg("Step 3: trimmed and rolled")

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Step 4: Reference mask shared by every isotope
	upper := p.MaskUpper
	if upper == 0 {
		upper = math.Inf(1)
	}
	mask := reference.Mask(p.MaskLower, upper)
	log.Debug().Int("excluded", mask.Excluded()).Msg("Step 4: masked")

	// Step 5: Pixel-by-pixel ratios
	minors := make([]*isotope.Corrected, 0, len(cal.Ratios))
	pixelRatios := make([]*isotope.Ratio, 0, len(cal.Ratios))
	for _, label := range cal.Isotopes() {
		minor, err := im.Corrected(label)
		if err != nil {
			return nil, err
		}
		r, err := isotope.NewRatio(label+"/"+cal.Reference, minor, reference)
		if err != nil {
			return nil, err
		}
		minors = append(minors, minor)
		pixelRatios = append(pixelRatios, r)
	}

	// Step 6: Bulk sums, ratios and QSA correction
	beam, err := a.beam(header)
	if err != nil {
		return nil, err
	}
	sums, err := calibration.Sum(mask, reference, minors...)
	if err != nil {
		return nil, err
	}
	bulk, err := sums.Ratios()
	if err != nil {
		return nil, err
	}
	qsa, err := bulk.CorrectQSA(beam, cal.QSABeta)
	if err != nil {
		return nil, err
	}
	log.Info().Int("pixels", sums.NPixels).Float64("K", qsa.K()).Float64("beta", cal.QSABeta).
		Msg("Step 6: QSA corrected")

	// Step 7: Uncertainties and delta values
	measured, err := qsa.WithPixelSpread(mask, pixelRatios...)
	if err != nil {
		return nil, err
	}
	deltas, err := measured.Deltas(cal)
	if err != nil {
		return nil, err
	}
	for _, d := range deltas.Values() {
		log.Debug().Str("isotope", d.Isotope).Float64("delta", d.Delta).Float64("sigma", d.Sigma).
			Msg("Step 7: delta value")
	}

	result := &Result{
		Mode:   p.Mode,
		Header: header,
		Cycles: reference.NCycles(),
		Sums:   sums,
		QSA:    qsa,
		Deltas: deltas,
	}

	// Step 8: IMF correction
	if p.Mode == Sample {
		result.Standardized, err = deltas.Standardize(cal)
		if err != nil {
			return nil, err
		}
		log.Info().Str("standard", standardName(cal)).Msg("Step 8: IMF corrected")
	}

	if p.ImageDir != "" {
		path, err := visualization.NewViewer(reference, mask).SaveProjection(p.ImageDir)
		if err != nil {
			log.Warn().Err(err).Msg("failed to save reference image")
		} else {
			result.Image = path
		}
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

// beam resolves the primary current and dwell time, preferring explicit
// parameters over the file header.
func (a *Analyzer) beam(h models.Header) (calibration.Beam, error) {
	b := calibration.Beam{PrimaryCurrent: a.params.PrimaryCurrent, DwellTime: a.params.DwellTime}
	if b.PrimaryCurrent == 0 {
		b.PrimaryCurrent = h.PrimaryCurrent
	}
	if b.DwellTime == 0 {
		b.DwellTime = h.DwellTime
	}
	if b.PrimaryCurrent <= 0 {
		return b, fmt.Errorf("%w: primary current not set and not in %s", ErrMissingBeam, h.Source)
	}
	if b.DwellTime <= 0 {
		return b, fmt.Errorf("%w: dwell time not set and not in %s", ErrMissingBeam, h.Source)
	}
	return b, nil
}

func standardName(cal config.Calibration) string {
	if len(cal.Ratios) == 0 {
		return ""
	}
	return cal.Ratios[0].Standard.Name
}
