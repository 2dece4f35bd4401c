// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"math"

	"spectrum/pkg/bitint"
)

// Params holds the sizes derived once from the configuration. They are
// immutable for the lifetime of the pipeline.
type Params struct {
	SampleRate    float64
	Channels      int
	BlockSize     int // Samples per captured block.
	FFTSize       int // Transform length, a power of two.
	HopSize       int // Reported only; analysis runs every tick.
	TrimCap       int // Physical cap of the accumulation buffer.
	Bins          int // FFTSize/2 + 1.
	QueueCapacity int
	Window        string
	Smoothing     float64
}

func blockSize(sampleRate, duration float64) int {
	return int(math.Round(sampleRate * duration))
}

// Derive computes the analysis sizes. The configuration must be valid.
func (c *Config) Derive() Params {
	block := blockSize(c.Audio.SampleRate, c.Audio.BlockDuration)
	fft := max(c.Analysis.MinFFTSize, bitint.NextPowerOfTwo(block))
	return Params{
		SampleRate:    c.Audio.SampleRate,
		Channels:      c.Audio.InputChannels,
		BlockSize:     block,
		FFTSize:       fft,
		HopSize:       block / 2,
		TrimCap:       fft * 4,
		Bins:          fft/2 + 1,
		QueueCapacity: c.Analysis.QueueCapacity,
		Window:        c.Analysis.Window,
		Smoothing:     c.Analysis.Smoothing,
	}
}

// BinWidth returns the frequency resolution in Hz.
func (p Params) BinWidth() float64 {
	return p.SampleRate / float64(p.FFTSize)
}

func (p Params) String() string {
	return fmt.Sprintf("block=%d fft=%d hop=%d bins=%d (%.2f Hz/bin)",
		p.BlockSize, p.FFTSize, p.HopSize, p.Bins, p.BinWidth())
}
