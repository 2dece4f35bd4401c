// SPDX-License-Identifier: MIT
package spectrum

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrEmptyFrame    = errors.New("spectrum: empty frame")
	ErrFrameMismatch = errors.New("spectrum: frequencies and magnitudes differ in length")
)

// Peak is the dominant bin of a frame.
type Peak struct {
	Bin       int
	Frequency float64 // Hz
	Magnitude float64
}

// FindPeak returns the bin with the largest magnitude. Ties resolve to the
// lowest bin.
func FindPeak(f Frame) (Peak, error) {
	if len(f.Magnitudes) == 0 {
		return Peak{}, ErrEmptyFrame
	}
	if len(f.Frequencies) != len(f.Magnitudes) {
		return Peak{}, ErrFrameMismatch
	}
	i := floats.MaxIdx(f.Magnitudes)
	return Peak{Bin: i, Frequency: f.Frequencies[i], Magnitude: f.Magnitudes[i]}, nil
}
