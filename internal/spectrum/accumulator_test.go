// SPDX-License-Identifier: MIT
package spectrum

import (
	"slices"
	"testing"
)

func TestAccumulator_Latest(t *testing.T) {
	t.Parallel()
	a := NewAccumulator(16)
	a.Append([]float64{1, 2, 3})

	tests := []struct {
		n    int
		want []float64
	}{
		{0, []float64{}},
		{2, []float64{2, 3}},
		{3, []float64{1, 2, 3}},
		{5, []float64{0, 0, 1, 2, 3}},
	}
	for _, tt := range tests {
		if got := a.Latest(tt.n); !slices.Equal(got, tt.want) {
			t.Errorf("Latest(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
	if a.Len() != 3 {
		t.Errorf("Latest mutated the buffer: Len = %d", a.Len())
	}
}

func TestAccumulator_LatestIntoOverwritesStale(t *testing.T) {
	t.Parallel()
	a := NewAccumulator(16)
	a.Append([]float64{7})
	dst := []float64{9, 9, 9}
	a.LatestInto(dst)
	if want := []float64{0, 0, 7}; !slices.Equal(dst, want) {
		t.Errorf("LatestInto = %v, want %v", dst, want)
	}
}

func TestAccumulator_Trim(t *testing.T) {
	t.Parallel()
	a := NewAccumulator(4)
	a.Append([]float64{1, 2, 3})
	a.Trim()
	if a.Len() != 3 {
		t.Fatalf("Trim shortened an under-cap buffer to %d", a.Len())
	}

	a.Append([]float64{4, 5, 6})
	a.Trim()
	if got, want := a.Latest(a.Len()), []float64{3, 4, 5, 6}; !slices.Equal(got, want) {
		t.Errorf("after Trim = %v, want %v", got, want)
	}
}

func TestAccumulator_BoundedAcrossManyTrims(t *testing.T) {
	t.Parallel()
	a := NewAccumulator(100)
	block := make([]float64, 37)
	for i := range 1000 {
		for j := range block {
			block[j] = float64(i*len(block) + j)
		}
		a.Append(block)
		a.Trim()
		if a.Len() > a.TrimCap() {
			t.Fatalf("Len %d exceeds TrimCap %d", a.Len(), a.TrimCap())
		}
	}
	last := a.Latest(1)[0]
	if want := float64(1000*37 - 1); last != want {
		t.Errorf("newest sample = %v, want %v", last, want)
	}
}

func TestAccumulator_LatestIntoZeroAllocs(t *testing.T) {
	a := NewAccumulator(4096)
	a.Append(make([]float64, 3000))
	dst := make([]float64, 4096)

	allocs := testing.AllocsPerRun(100, func() {
		a.LatestInto(dst)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in LatestInto, got %.1f", allocs)
	}
}
