// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the analysis window.
type WindowFunc int

const (
	Rectangular WindowFunc = iota
	Hann
	Hamming
)

func (w WindowFunc) String() string {
	switch w {
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	default:
		return "rectangular"
	}
}

// ParseWindowFunc converts a case-insensitive name to a WindowFunc. Unknown
// names return Hann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "rectangular", "rect", "none", "boxcar":
		return Rectangular, nil
	default:
		return Hann, fmt.Errorf("unknown window function name: %q", name)
	}
}

// Coefficients returns the periodic window of length n, i.e. the first n
// points of the symmetric window of length n+1. Lengths of one or less
// produce all ones.
func (w WindowFunc) Coefficients(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	coeffs := make([]float64, n+1)
	for i := range coeffs {
		coeffs[i] = 1
	}
	if n > 1 {
		switch w {
		case Hann:
			window.Hann(coeffs)
		case Hamming:
			window.Hamming(coeffs)
		}
	}
	return coeffs[:n:n]
}
