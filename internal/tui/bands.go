// SPDX-License-Identifier: MIT
package tui

import (
	"math"

	"spectrum/internal/spectrum"
)

// Band is a named frequency range [LowHz, HighHz).
type Band struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// DefaultBands returns the six display bands, the last one ending above
// nyquist so the Nyquist bin is included.
func DefaultBands(nyquist float64) []Band {
	return []Band{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: math.Nextafter(nyquist, math.Inf(1))},
	}
}

// BandLevels returns one level in [0, 1] per band: the RMS magnitude of
// the band's bins placed on s. Bands without bins read 0.
func BandLevels(f spectrum.Frame, bands []Band, s Scale) []float64 {
	energy := make([]float64, len(bands))
	counts := make([]int, len(bands))

	for i, freq := range f.Frequencies {
		if i >= len(f.Magnitudes) {
			break
		}
		for b, band := range bands {
			if freq >= band.LowHz && freq < band.HighHz {
				m := f.Magnitudes[i]
				energy[b] += m * m
				counts[b]++
				break
			}
		}
	}

	levels := make([]float64, len(bands))
	for b := range bands {
		if counts[b] == 0 {
			continue
		}
		levels[b] = s.Level(ToDB(math.Sqrt(energy[b] / float64(counts[b]))))
	}
	return levels
}
