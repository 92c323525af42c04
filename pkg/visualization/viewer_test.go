package visualization

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"nanosimsreduce/pkg/isotope"
)

// newTestDataset creates a 2-cycle 2x3 stack with a rising pattern
func newTestDataset(t *testing.T) *isotope.Raw {
	t.Helper()
	raw, err := isotope.NewRaw("24Mg 16O", [][][]float64{
		{{0, 1, 2}, {3, 4, 5}},
		{{0, 1, 2}, {3, 4, 5}},
	})
	if err != nil {
		t.Fatalf("Failed to create dataset: %v", err)
	}
	return raw
}

// TestExtractPlane verifies dimensions, scaling and masked pixels
func TestExtractPlane(t *testing.T) {
	raw := newTestDataset(t)
	viewer := NewViewer(raw, raw.DefaultMask())

	img, err := viewer.ExtractPlane(0)
	if err != nil {
		t.Fatalf("Failed to extract plane: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 3 || bounds.Dy() != 2 {
		t.Errorf("Expected 3x2 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	gray, ok := img.(*image.Gray16)
	if !ok {
		t.Fatalf("Expected *image.Gray16, got %T", img)
	}

	// Brightest pixel is (x=1, y=2) with 5 counts
	if got := gray.Gray16At(2, 1).Y; got != 65535 {
		t.Errorf("Expected peak pixel 65535, got %d", got)
	}
	// The zero pixel is masked
	if got := gray.Gray16At(0, 0).Y; got != 0 {
		t.Errorf("Expected masked pixel 0, got %d", got)
	}
	want := uint16(3.0 / 5.0 * 65535)
	if got := gray.Gray16At(0, 1).Y; math.Abs(float64(got)-float64(want)) > 1 {
		t.Errorf("Expected ~%d at (x=1, y=0), got %d", want, got)
	}

	if _, err := viewer.ExtractPlane(2); err == nil {
		t.Error("Expected error for out of range cycle, got nil")
	}
}

// TestExtractProjection checks the cycle sum is rendered
func TestExtractProjection(t *testing.T) {
	raw := newTestDataset(t)
	viewer := NewViewer(raw, nil)

	img, err := viewer.ExtractProjection()
	if err != nil {
		t.Fatalf("Failed to extract projection: %v", err)
	}
	gray := img.(*image.Gray16)
	if got := gray.Gray16At(2, 1).Y; got != 65535 {
		t.Errorf("Expected peak pixel 65535, got %d", got)
	}
	if got := gray.Gray16At(0, 0).Y; got != 0 {
		t.Errorf("Expected zero pixel 0, got %d", got)
	}
}

// TestMaskMismatch verifies a mask from another grid is rejected
func TestMaskMismatch(t *testing.T) {
	raw := newTestDataset(t)
	other, _ := isotope.NewRaw("16O", [][][]float64{{{1, 2}, {3, 4}}})

	viewer := NewViewer(raw, other.DefaultMask())
	if _, err := viewer.ExtractPlane(0); err == nil {
		t.Error("Expected error for mismatched mask, got nil")
	}
	if _, err := viewer.ExtractProjection(); err == nil {
		t.Error("Expected error for mismatched mask, got nil")
	}
}

// TestSavePlaneSequence writes one file per cycle
func TestSavePlaneSequence(t *testing.T) {
	raw := newTestDataset(t)
	viewer := NewViewer(raw, raw.DefaultMask())

	outputDir := filepath.Join(t.TempDir(), "planes")
	if err := viewer.SavePlaneSequence(outputDir); err != nil {
		t.Fatalf("Failed to save plane sequence: %v", err)
	}

	for _, name := range []string{"24Mg_16O_cycle_000.png", "24Mg_16O_cycle_001.png"} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

// TestSaveProjection writes PNG and JPEG images
func TestSaveProjection(t *testing.T) {
	raw := newTestDataset(t)
	viewer := NewViewer(raw, nil)
	dir := t.TempDir()

	path, err := viewer.SaveProjection(dir)
	if err != nil {
		t.Fatalf("Failed to save projection: %v", err)
	}
	if filepath.Base(path) != "24Mg_16O_sum.png" {
		t.Errorf("Unexpected file name %s", path)
	}

	img, _ := viewer.ExtractProjection()
	jpegPath := filepath.Join(dir, "sum.jpg")
	if err := viewer.SaveImage(img, jpegPath); err != nil {
		t.Fatalf("Failed to save JPEG: %v", err)
	}
	info, err := os.Stat(jpegPath)
	if err != nil || info.Size() == 0 {
		t.Errorf("Expected non-empty JPEG, got %v", err)
	}
}

// TestSaveImageComplete verifies a saved PNG decodes to the rendered image
func TestSaveImageComplete(t *testing.T) {
	viewer := NewViewer(newTestDataset(t), nil)
	img, err := viewer.ExtractProjection()
	if err != nil {
		t.Fatalf("Failed to extract projection: %v", err)
	}

	path := filepath.Join(t.TempDir(), "sum.png")
	if err := viewer.SaveImage(img, path); err != nil {
		t.Fatalf("Failed to save PNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open PNG: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Saved PNG does not decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("Expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
	}

	if err := viewer.SaveImage(img, filepath.Join(t.TempDir(), "missing", "sum.png")); err == nil {
		t.Error("Expected an error saving into a missing directory")
	}
}
