package models

import "fmt"

// Shape is the extent of an isotope image stack in row-major order:
// Cycles planes of X rows by Y columns.
type Shape struct {
	Cycles int
	X      int
	Y      int
}

// Len returns the total number of cells.
func (s Shape) Len() int {
	return s.Cycles * s.X * s.Y
}

// PlaneLen returns the number of pixels in one cycle plane.
func (s Shape) PlaneLen() int {
	return s.X * s.Y
}

// SamePlane reports whether both shapes have the same X/Y extent.
func (s Shape) SamePlane(o Shape) bool {
	return s.X == o.X && s.Y == o.Y
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.Cycles, s.X, s.Y)
}

// Header carries the acquisition metadata delivered alongside the counts
// of one imported file.
type Header struct {
	// Source is the file the data was read from
	Source string `yaml:"source" json:"source"`

	// Labels lists the isotope labels in acquisition order
	Labels []string `yaml:"labels" json:"labels"`

	// DwellTime is the dwell time per pixel in seconds
	DwellTime float64 `yaml:"dwellTime" json:"dwellTime"`

	// PrimaryCurrent is the primary beam current in picoamperes, zero when
	// the instrument did not record it
	PrimaryCurrent float64 `yaml:"primaryCurrent,omitempty" json:"primaryCurrent,omitempty"`
}
