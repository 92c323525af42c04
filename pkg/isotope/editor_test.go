package isotope

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestTrimBounds verifies trims fail exactly when n exceeds the cycle count
func TestTrimBounds(t *testing.T) {
	for n := 0; n <= 3; n++ {
		front := mustRaw(t, "f", numeratorCounts())
		back := mustRaw(t, "b", numeratorCounts())

		errFront := front.TrimFront(n)
		errBack := back.TrimBack(n)

		if n > 2 {
			if !errors.Is(errFront, ErrInvalidTrim) || !errors.Is(errBack, ErrInvalidTrim) {
				t.Errorf("n=%d: expected ErrInvalidTrim, got %v / %v", n, errFront, errBack)
			}
			if front.NCycles() != 2 || back.NCycles() != 2 {
				t.Errorf("n=%d: failed trims must leave data unchanged", n)
			}
			continue
		}

		if errFront != nil || errBack != nil {
			t.Fatalf("n=%d: unexpected errors %v / %v", n, errFront, errBack)
		}
		if front.NCycles() != 2-n || back.NCycles() != 2-n {
			t.Errorf("n=%d: expected %d cycles, got %d / %d", n, 2-n, front.NCycles(), back.NCycles())
		}
	}

	raw := mustRaw(t, "neg", numeratorCounts())
	if err := raw.TrimFront(-1); !errors.Is(err, ErrInvalidTrim) {
		t.Errorf("Expected ErrInvalidTrim for negative trim, got %v", err)
	}
}

// TestTrimKeepsCorrectCycles checks which cycles survive
func TestTrimKeepsCorrectCycles(t *testing.T) {
	front := mustRaw(t, "f", numeratorCounts())
	if err := front.TrimFront(1); err != nil {
		t.Fatal(err)
	}
	if front.Flat()[0] != 789 {
		t.Errorf("Expected second cycle to remain after TrimFront, got %f", front.Flat()[0])
	}

	back := mustRaw(t, "b", numeratorCounts())
	if err := back.TrimBack(1); err != nil {
		t.Fatal(err)
	}
	if back.Flat()[0] != 782 {
		t.Errorf("Expected first cycle to remain after TrimBack, got %f", back.Flat()[0])
	}
}

// TestRoll checks the numpy roll direction along both axes
func TestRoll(t *testing.T) {
	raw := mustRaw(t, "r", [][][]float64{{{1, 2, 3}, {4, 5, 6}}})

	raw.Roll(0, 1)
	if diff := cmp.Diff([]float64{3, 1, 2, 6, 4, 5}, raw.Flat()); diff != "" {
		t.Fatalf("Roll(0,1) mismatch (-want +got):\n%s", diff)
	}

	raw.Roll(1, 0)
	if diff := cmp.Diff([]float64{6, 4, 5, 3, 1, 2}, raw.Flat()); diff != "" {
		t.Fatalf("Roll(1,0) mismatch (-want +got):\n%s", diff)
	}

	raw.Roll(1, 1)
	if diff := cmp.Diff([]float64{2, 3, 1, 5, 6, 4}, raw.Flat()); diff != "" {
		t.Fatalf("Roll(1,1) mismatch (-want +got):\n%s", diff)
	}
}

// TestRollRoundTrip verifies Roll(-x,-y) exactly undoes Roll(x,y)
func TestRollRoundTrip(t *testing.T) {
	original := mustRaw(t, "o", referenceCounts()).Flat()

	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			raw := mustRaw(t, "r", referenceCounts())
			raw.Roll(x, y)
			raw.Roll(-x, -y)
			for i, v := range raw.Flat() {
				if v != original[i] {
					t.Fatalf("Roll(%d,%d) round trip differs at %d: %f vs %f", x, y, i, v, original[i])
				}
			}
		}
	}
}
