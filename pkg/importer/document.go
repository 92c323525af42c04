// Package importer is the boundary to the instrument reader. It turns a
// file into labeled isotope count arrays plus acquisition header, and
// applies whole-file operations to every isotope at once.
//
// The native instrument format is read elsewhere; this package accepts
// its exported cube documents (YAML or JSON, optionally LZ4 compressed).
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"nanosimsreduce/internal/models"
)

var (
	// ErrImportFailure wraps every failure to read or validate a file.
	ErrImportFailure = errors.New("import failed")

	// ErrUnknownIsotope is returned when a label is not in the import.
	ErrUnknownIsotope = errors.New("unknown isotope")

	// ErrNotCorrected is returned when corrected data is requested for an
	// isotope that has not been deadtime corrected.
	ErrNotCorrected = errors.New("isotope not deadtime corrected")
)

// Cube is the content of one analysis file.
type Cube struct {
	Header models.Header `yaml:"header" json:"header"`

	// Isotopes maps each label to counts laid out as [cycle][x][y]
	Isotopes map[string][][][]float64 `yaml:"isotopes" json:"isotopes"`
}

// Source produces the cube of one analysis file.
type Source interface {
	Load(ctx context.Context) (*Cube, error)
}

// DocumentSource reads a cube document from Path. Files ending in ".lz4"
// are decompressed first.
type DocumentSource struct {
	Path string
}

// Load reads and validates the document.
func (s DocumentSource) Load(ctx context.Context) (*Cube, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailure, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(s.Path, ".lz4") {
		r = lz4.NewReader(f)
	}

	cube := &Cube{}
	if err := yaml.NewDecoder(r).Decode(cube); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrImportFailure, s.Path, err)
	}
	if cube.Header.Source == "" {
		cube.Header.Source = s.Path
	}
	if err := cube.Validate(); err != nil {
		return nil, err
	}
	return cube, nil
}

// Validate checks the cube has data, a label for every array and a single
// shape shared by all isotopes. An empty label list is filled in sorted
// order.
func (c *Cube) Validate() error {
	if len(c.Isotopes) == 0 {
		return fmt.Errorf("%w: %s contains no isotopes", ErrImportFailure, c.Header.Source)
	}
	if c.Header.DwellTime < 0 {
		return fmt.Errorf("%w: negative dwell time %g", ErrImportFailure, c.Header.DwellTime)
	}

	if len(c.Header.Labels) == 0 {
		for label := range c.Isotopes {
			c.Header.Labels = append(c.Header.Labels, label)
		}
		sort.Strings(c.Header.Labels)
	}
	if len(c.Header.Labels) != len(c.Isotopes) {
		return fmt.Errorf("%w: header lists %d labels for %d isotopes",
			ErrImportFailure, len(c.Header.Labels), len(c.Isotopes))
	}

	var want models.Shape
	seen := make(map[string]bool, len(c.Header.Labels))
	for i, label := range c.Header.Labels {
		if seen[label] {
			return fmt.Errorf("%w: header lists %q twice", ErrImportFailure, label)
		}
		seen[label] = true

		counts, ok := c.Isotopes[label]
		if !ok {
			return fmt.Errorf("%w: header label %q has no data", ErrImportFailure, label)
		}
		shape, err := shapeOf(counts)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrImportFailure, label, err)
		}
		if i == 0 {
			want = shape
		} else if shape != want {
			return fmt.Errorf("%w: %s has shape %s, %s has %s",
				ErrImportFailure, label, shape, c.Header.Labels[0], want)
		}
	}
	return nil
}

func shapeOf(counts [][][]float64) (models.Shape, error) {
	if len(counts) == 0 || len(counts[0]) == 0 || len(counts[0][0]) == 0 {
		return models.Shape{}, errors.New("empty count array")
	}
	s := models.Shape{Cycles: len(counts), X: len(counts[0]), Y: len(counts[0][0])}
	for _, plane := range counts {
		if len(plane) != s.X {
			return models.Shape{}, errors.New("ragged cycle planes")
		}
		for _, row := range plane {
			if len(row) != s.Y {
				return models.Shape{}, errors.New("ragged rows")
			}
		}
	}
	return s, nil
}

// WriteDocument stores a cube as YAML, LZ4 compressed when path ends in
// ".lz4".
func WriteDocument(path string, cube *Cube) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	var zw *lz4.Writer
	if strings.HasSuffix(path, ".lz4") {
		zw = lz4.NewWriter(f)
		w = zw
	}

	enc := yaml.NewEncoder(w)
	if err := enc.Encode(cube); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compressing %s: %w", path, err)
		}
	}
	return nil
}
