// SPDX-License-Identifier: MIT

// Package synth generates test signals: one-shot sine buffers for tests and
// a phase-continuous oscillator that feeds the tone source.
package synth

import "math"

// SineWave returns size samples of a sine at frequency Hz with the given
// peak amplitude, starting at phase zero.
func SineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buffer
}

// ComplexWave returns a 440Hz fundamental with its second and third
// harmonics at decreasing amplitude.
func ComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
	}
	return buffer
}

// Oscillator is a sine generator that keeps its phase between calls, so
// consecutive blocks join without a discontinuity.
type Oscillator struct {
	Amplitude float64
	step      float64
	phase     float64
}

// NewOscillator returns an oscillator for frequency Hz at sampleRate.
func NewOscillator(frequency, sampleRate, amplitude float64) *Oscillator {
	return &Oscillator{
		Amplitude: amplitude,
		step:      2 * math.Pi * frequency / sampleRate,
	}
}

// Fill overwrites dst with the next len(dst) samples.
func (o *Oscillator) Fill(dst []float64) {
	for i := range dst {
		dst[i] = o.Amplitude * math.Sin(o.phase)
		o.phase += o.step
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
}
