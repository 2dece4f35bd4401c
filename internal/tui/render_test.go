// SPDX-License-Identifier: MIT
package tui

import (
	"math"
	"strings"
	"testing"

	"spectrum/internal/spectrum"
)

func TestToDB(t *testing.T) {
	if db := ToDB(1); math.Abs(db) > 1e-6 {
		t.Errorf("ToDB(1) = %v, want 0", db)
	}
	if db := ToDB(0); math.IsInf(db, 0) || db > -199 {
		t.Errorf("ToDB(0) = %v, want finite floor near -200", db)
	}
	if db := ToDB(10); math.Abs(db-20) > 1e-6 {
		t.Errorf("ToDB(10) = %v, want 20", db)
	}
}

func TestScaleLevel(t *testing.T) {
	s := NewScale(-100, 4096)

	tests := []struct {
		db   float64
		want float64
	}{
		{-200, 0},
		{-100, 0},
		{s.MaxDB, 1},
		{s.MaxDB + 50, 1},
		{(s.MinDB + s.MaxDB) / 2, 0.5},
	}
	for _, tt := range tests {
		if got := s.Level(tt.db); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Level(%v) = %v, want %v", tt.db, got, tt.want)
		}
	}

	if got := (Scale{}).Level(10); got != 0 {
		t.Errorf("degenerate scale Level = %v, want 0", got)
	}
}

func TestColumnLevels(t *testing.T) {
	s := NewScale(-100, 4096)
	f := spectrum.Frame{
		Frequencies: []float64{0, 1, 2, 3},
		Magnitudes:  []float64{0, 0, 2048, 0},
	}

	levels := ColumnLevels(f, 2, s)
	if len(levels) != 2 {
		t.Fatalf("len = %d, want 2", len(levels))
	}
	if levels[0] != 0 {
		t.Errorf("silent column = %v, want 0", levels[0])
	}
	if math.Abs(levels[1]-1) > 1e-9 {
		t.Errorf("full-scale column = %v, want 1", levels[1])
	}

	if got := ColumnLevels(f, 8, s); len(got) != 8 {
		t.Errorf("more columns than bins: len = %d, want 8", len(got))
	}
	if got := ColumnLevels(spectrum.Frame{}, 4, s); len(got) != 4 || got[0] != 0 {
		t.Errorf("empty frame: %v", got)
	}
	if got := ColumnLevels(f, 0, s); len(got) != 0 {
		t.Errorf("zero columns: %v", got)
	}
}

func TestRenderBars(t *testing.T) {
	got := RenderBars([]float64{1, 0, 0.5}, 2)
	want := "█  \n█ █"
	if got != want {
		t.Errorf("RenderBars = %q, want %q", got, want)
	}

	if got := RenderBars([]float64{1}, 0); got != "" {
		t.Errorf("zero height = %q, want empty", got)
	}

	partial := RenderBars([]float64{0.5}, 1)
	if partial != "▄" {
		t.Errorf("half cell = %q, want ▄", partial)
	}
}

func TestFrequencyAxis(t *testing.T) {
	f := spectrum.Frame{Frequencies: []float64{0, 1000, 24000}}
	axis := FrequencyAxis(f, 20)

	if n := len([]rune(axis)); n != 20 {
		t.Fatalf("axis width = %d, want 20", n)
	}
	if !strings.HasPrefix(axis, "0") {
		t.Errorf("axis %q should start with 0", axis)
	}
	if !strings.HasSuffix(axis, "24.0k") {
		t.Errorf("axis %q should end with 24.0k", axis)
	}
	if !strings.Contains(axis, "1.0k") {
		t.Errorf("axis %q should contain the middle label", axis)
	}
	if FrequencyAxis(spectrum.Frame{}, 20) != "" {
		t.Error("empty frame should give an empty axis")
	}
}

func TestPeakLabel(t *testing.T) {
	got := PeakLabel(spectrum.Peak{Bin: 85, Frequency: 996.09375, Magnitude: 1})
	if got != "Dominant frequency: 996.1 Hz" {
		t.Errorf("PeakLabel = %q", got)
	}
}
