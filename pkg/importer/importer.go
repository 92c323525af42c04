package importer

import (
	"context"
	"fmt"
	"strings"

	"nanosimsreduce/internal/models"
	"nanosimsreduce/pkg/isotope"
)

// Importer holds every isotope of one analysis file.
type Importer struct {
	header   models.Header
	isotopes map[string]isotope.Dataset
	order    []string
}

// New returns an empty importer.
func New() *Importer {
	return &Importer{isotopes: make(map[string]isotope.Dataset)}
}

// ImportFile loads a source and creates a raw dataset per isotope.
func (im *Importer) ImportFile(ctx context.Context, src Source) error {
	cube, err := src.Load(ctx)
	if err != nil {
		return err
	}

	im.header = cube.Header
	for _, label := range cube.Header.Labels {
		raw, err := isotope.NewRaw(label, cube.Isotopes[label])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrImportFailure, err)
		}
		im.AddIsotope(raw)
	}
	return nil
}

// AddIsotope adds or replaces a dataset under its isotope label.
func (im *Importer) AddIsotope(d isotope.Dataset) {
	label := d.Isotope()
	if _, ok := im.isotopes[label]; !ok {
		im.order = append(im.order, label)
	}
	im.isotopes[label] = d
}

// Isotope returns the dataset stored under label.
func (im *Importer) Isotope(label string) (isotope.Dataset, error) {
	d, ok := im.isotopes[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownIsotope, label, strings.Join(im.order, ", "))
	}
	return d, nil
}

// Corrected returns the deadtime corrected dataset stored under label.
func (im *Importer) Corrected(label string) (*isotope.Corrected, error) {
	d, err := im.Isotope(label)
	if err != nil {
		return nil, err
	}
	c, ok := d.(*isotope.Corrected)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCorrected, label)
	}
	return c, nil
}

// Labels returns the isotope labels in import order.
func (im *Importer) Labels() []string {
	return append([]string(nil), im.order...)
}

// Header returns the header of the imported file.
func (im *Importer) Header() models.Header { return im.header }

// DeadtimeCorrectAll corrects every isotope with the given dead time in
// seconds. A zero dwellTime uses the header's dwell time per pixel. The
// first failure stops the run; isotopes corrected before it stay corrected.
func (im *Importer) DeadtimeCorrectAll(deadTime, dwellTime float64) error {
	if dwellTime == 0 {
		dwellTime = im.header.DwellTime
	}
	if dwellTime <= 0 {
		return fmt.Errorf("%w: no dwell time given and none in header", isotope.ErrInvalidParameter)
	}

	for _, label := range im.order {
		c, err := isotope.CorrectDeadtime(im.isotopes[label], dwellTime, deadTime)
		if err != nil {
			return fmt.Errorf("correcting %s: %w", label, err)
		}
		im.isotopes[label] = c
	}
	return nil
}

// TrimFrontAll removes the first n cycles from every isotope. The cycle
// count is checked on all isotopes before any is trimmed.
func (im *Importer) TrimFrontAll(n int) error {
	return im.trimAll(n, isotope.Dataset.TrimFront)
}

// TrimBackAll removes the last n cycles from every isotope.
func (im *Importer) TrimBackAll(n int) error {
	return im.trimAll(n, isotope.Dataset.TrimBack)
}

func (im *Importer) trimAll(n int, trim func(isotope.Dataset, int) error) error {
	for _, label := range im.order {
		if d := im.isotopes[label]; n < 0 || n > d.NCycles() {
			return fmt.Errorf("%w: cannot remove %d of %d cycles from %s",
				isotope.ErrInvalidTrim, n, d.NCycles(), label)
		}
	}
	for _, label := range im.order {
		if err := trim(im.isotopes[label], n); err != nil {
			return err
		}
	}
	return nil
}

// RollAll shifts every plane of every isotope by the same offsets.
func (im *Importer) RollAll(xShift, yShift int) {
	for _, label := range im.order {
		im.isotopes[label].Roll(xShift, yShift)
	}
}

func (im *Importer) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Importer object\nImported file: %s\nIsotopes:", im.header.Source)
	for _, label := range im.order {
		fmt.Fprintf(&b, "\n%s", im.isotopes[label])
	}
	return b.String()
}
