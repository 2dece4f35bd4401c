// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"math"
	"strings"

	"spectrum/internal/spectrum"
)

// dbEpsilon keeps log10 finite for silent bins.
const dbEpsilon = 1e-10

// ToDB converts a magnitude to decibels.
func ToDB(m float64) float64 {
	return 20 * math.Log10(m+dbEpsilon)
}

// Scale maps decibels onto [0, 1] for drawing.
type Scale struct {
	MinDB float64
	MaxDB float64
}

// NewScale returns a scale from floorDB up to the level of a full-scale
// sine in an fftSize-point transform.
func NewScale(floorDB float64, fftSize int) Scale {
	return Scale{MinDB: floorDB, MaxDB: ToDB(float64(fftSize) / 2)}
}

// Level returns the clamped position of db on the scale.
func (s Scale) Level(db float64) float64 {
	if s.MaxDB <= s.MinDB {
		return 0
	}
	return math.Max(0, math.Min(1, (db-s.MinDB)/(s.MaxDB-s.MinDB)))
}

// ColumnLevels reduces the frame to columns values in [0, 1], taking the
// loudest bin of each column.
func ColumnLevels(f spectrum.Frame, columns int, s Scale) []float64 {
	levels := make([]float64, max(columns, 0))
	bins := len(f.Magnitudes)
	if bins == 0 || columns <= 0 {
		return levels
	}
	for c := range levels {
		lo := c * bins / columns
		hi := max((c+1)*bins/columns, lo+1)
		peak := 0.0
		for _, m := range f.Magnitudes[lo:min(hi, bins)] {
			peak = math.Max(peak, m)
		}
		levels[c] = s.Level(ToDB(peak))
	}
	return levels
}

var eighths = []rune(" ▁▂▃▄▅▆▇█")

// RenderBars draws levels as vertical bars height rows tall.
func RenderBars(levels []float64, height int) string {
	if height <= 0 || len(levels) == 0 {
		return ""
	}
	var sb strings.Builder
	for row := height - 1; row >= 0; row-- {
		for _, lv := range levels {
			fill := lv*float64(height) - float64(row) // cells of this column above row
			switch {
			case fill >= 1:
				sb.WriteRune(eighths[8])
			case fill <= 0:
				sb.WriteRune(eighths[0])
			default:
				sb.WriteRune(eighths[int(fill*8)])
			}
		}
		if row > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FrequencyAxis labels the plot with frequencies at both ends and the middle.
func FrequencyAxis(f spectrum.Frame, width int) string {
	if width <= 0 || len(f.Frequencies) == 0 {
		return ""
	}
	lo := formatHz(f.Frequencies[0])
	mid := formatHz(f.Frequencies[len(f.Frequencies)/2])
	hi := formatHz(f.Frequencies[len(f.Frequencies)-1])

	line := []rune(strings.Repeat(" ", width))
	place := func(s string, at int) {
		r := []rune(s)
		at = max(0, min(at, width-len(r)))
		for i, c := range r {
			if at+i < width {
				line[at+i] = c
			}
		}
	}
	place(lo, 0)
	place(mid, width/2-len(mid)/2)
	place(hi, width-len(hi))
	return string(line)
}

func formatHz(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.1fk", hz/1000)
	}
	return fmt.Sprintf("%.0f", hz)
}

// PeakLabel is the caption for the dominant frequency.
func PeakLabel(p spectrum.Peak) string {
	return fmt.Sprintf("Dominant frequency: %.1f Hz", p.Frequency)
}
