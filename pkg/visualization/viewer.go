package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"nanosimsreduce/pkg/isotope"
)

// Viewer renders the pixel grid of an isotope dataset as grayscale images.
// Masked pixels are drawn black; the brightest unmasked pixel is white.
type Viewer struct {
	// dataset is the isotope stack to render
	dataset isotope.Dataset

	// mask is applied to every rendered plane, nil renders everything
	mask *isotope.Mask
}

// NewViewer creates a viewer for a dataset and an optional mask
func NewViewer(dataset isotope.Dataset, mask *isotope.Mask) *Viewer {
	return &Viewer{
		dataset: dataset,
		mask:    mask,
	}
}

// ExtractPlane renders one acquisition cycle
func (v *Viewer) ExtractPlane(cycle int) (image.Image, error) {
	plane, err := v.dataset.Plane(cycle)
	if err != nil {
		return nil, err
	}

	return v.render(plane, func(x, y int) bool {
		return v.mask != nil && v.mask.At(cycle, x, y)
	})
}

// ExtractProjection renders the sum over all cycles. A pixel is drawn
// black only when it is masked in every cycle.
func (v *Viewer) ExtractProjection() (image.Image, error) {
	plane, err := v.dataset.Projection(v.mask)
	if err != nil {
		return nil, err
	}

	cycles := v.dataset.NCycles()
	return v.render(plane, func(x, y int) bool {
		if v.mask == nil {
			return false
		}
		for c := 0; c < cycles; c++ {
			if !v.mask.At(c, x, y) {
				return false
			}
		}
		return true
	})
}

func (v *Viewer) render(plane *mat.Dense, masked func(x, y int) bool) (image.Image, error) {
	if err := checkMask(v.dataset, v.mask); err != nil {
		return nil, err
	}

	rows, cols := plane.Dims()

	// Scale to the brightest unmasked pixel
	peak := 0.0
	for x := 0; x < rows; x++ {
		for y := 0; y < cols; y++ {
			if !masked(x, y) {
				peak = math.Max(peak, plane.At(x, y))
			}
		}
	}

	// Image columns follow Y, image rows follow X
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	for x := 0; x < rows; x++ {
		for y := 0; y < cols; y++ {
			if masked(x, y) || peak <= 0 {
				continue
			}
			value := uint16(math.Max(0, math.Min(65535, plane.At(x, y)/peak*65535)))
			img.SetGray16(y, x, color.Gray16{Y: value})
		}
	}

	return img, nil
}

func checkMask(d isotope.Dataset, m *isotope.Mask) error {
	if m == nil {
		return nil
	}
	_, err := d.NPixels(m)
	return err
}

// SaveImage writes an image as PNG or, for .jpg/.jpeg names, JPEG
func (v *Viewer) SaveImage(img image.Image, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		return png.Encode(file, img)
	}
}

// SavePlaneSequence renders and saves every cycle into outputDir
func (v *Viewer) SavePlaneSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for cycle := 0; cycle < v.dataset.NCycles(); cycle++ {
		img, err := v.ExtractPlane(cycle)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("%s_cycle_%03d.png", safeName(v.dataset.Isotope()), cycle))
		if err := v.SaveImage(img, filename); err != nil {
			return err
		}
	}

	return nil
}

// SaveProjection renders the cycle sum into outputDir and returns the path
func (v *Viewer) SaveProjection(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	img, err := v.ExtractProjection()
	if err != nil {
		return "", err
	}

	filename := filepath.Join(outputDir, safeName(v.dataset.Isotope())+"_sum.png")
	return filename, v.SaveImage(img, filename)
}

// safeName keeps labels such as "24Mg 16O" or "17O/16O" usable as file names
func safeName(label string) string {
	return strings.NewReplacer(" ", "_", "/", "-").Replace(label)
}
