package isotope

import (
	"errors"
	"math"
	"testing"
)

// TestRatioReference checks the quotient against the reference values,
// including the zero denominator at (1,2,2)
func TestRatioReference(t *testing.T) {
	num := mustRaw(t, "numerator", numeratorCounts())
	den := mustRaw(t, "denominator", denominatorCounts())

	ratio, err := NewRatio("test_ratio", num, den)
	if err != nil {
		t.Fatalf("NewRatio failed: %v", err)
	}

	expected := []float64{
		1.564, 1.35789474, 0.74324324,
		0.94094994, 23.64864865, 0.76723017,
		27.33333333, 0.88944724, 0.99730094,
		1.57171315, 0.70064725, 1.2495637,
		0.07476636, 0.77589852, 0.45454545,
		15., 0.07901907, 0,
	}
	got := ratio.Flat()
	for i := range expected {
		if !closeRel(got[i], expected[i], 1e-6) {
			t.Errorf("Cell %d: expected %.8f, got %.8f", i, expected[i], got[i])
		}
	}
	if got[17] != 0 {
		t.Errorf("Expected exact zero at (1,2,2), got %f", got[17])
	}
	if ratio.Numerator() != "numerator" || ratio.Denominator() != "denominator" {
		t.Errorf("Unexpected ratio operands %s/%s", ratio.Numerator(), ratio.Denominator())
	}
}

// TestRatioZeroGuardOnly verifies only exact zeros are guarded
func TestRatioZeroGuardOnly(t *testing.T) {
	num := mustRaw(t, "n", [][][]float64{{{1, 1, 1, 0}}})
	den := mustRaw(t, "d", [][][]float64{{{0, -2, 1e-300, 0}}})

	ratio, err := NewRatio("r", num, den)
	if err != nil {
		t.Fatal(err)
	}
	got := ratio.Flat()
	if got[0] != 0 || got[3] != 0 {
		t.Errorf("Expected zeros for zero denominators, got %v", got)
	}
	if got[1] != -0.5 {
		t.Errorf("Expected -0.5 for negative denominator, got %f", got[1])
	}
	if !closeRel(got[2], 1e300, 1e-12) {
		t.Errorf("Expected 1e300 for tiny denominator, got %g", got[2])
	}
	for i, v := range got {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("Cell %d is not finite: %f", i, v)
		}
	}
}

// TestRatioDeadtime verifies a ratio can never be corrected
func TestRatioDeadtime(t *testing.T) {
	num := mustRaw(t, "n", numeratorCounts())
	den := mustRaw(t, "d", denominatorCounts())
	ratio, err := NewRatio("r", num, den)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := CorrectDeadtime(ratio, 2.0, 3.0); !errors.Is(err, ErrAlreadyCorrected) {
		t.Errorf("Expected ErrAlreadyCorrected, got %v", err)
	}
	if ratio.IsDeadtimeCorrected() {
		t.Error("Ratio must never report deadtime corrected")
	}
}

// TestRatioShapeMismatch rejects operands on different grids
func TestRatioShapeMismatch(t *testing.T) {
	num := mustRaw(t, "n", numeratorCounts())
	den := mustRaw(t, "d", denominatorCounts())
	if err := den.TrimFront(1); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRatio("r", num, den); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

// TestRatioFromCorrected builds ratios from corrected datasets
func TestRatioFromCorrected(t *testing.T) {
	num, _ := mustRaw(t, "18O", numeratorCounts()).CorrectDeadtime(0.006, 4e-9)
	den, _ := mustRaw(t, "16O", denominatorCounts()).CorrectDeadtime(0.006, 4e-9)

	ratio, err := NewRatio("18O/16O", num, den)
	if err != nil {
		t.Fatal(err)
	}
	if ratio.Numerator() != "18O" || ratio.Denominator() != "16O" {
		t.Errorf("Expected isotope labels without markers, got %s/%s", ratio.Numerator(), ratio.Denominator())
	}
}
