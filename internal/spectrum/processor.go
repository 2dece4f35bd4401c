// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"
	"math/cmplx"

	"spectrum/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Frame is one smoothed spectrum. Frequencies is shared between frames and
// must not be modified; Magnitudes belongs to the caller.
type Frame struct {
	Frequencies []float64
	Magnitudes  []float64
}

// Len returns the number of bins.
func (f Frame) Len() int { return len(f.Magnitudes) }

// workspace holds the pre-allocated transform buffers.
type workspace struct {
	input     []float64    // windowed, zero-padded samples
	fftOutput []complex128 // fftSize/2+1 coefficients
	magnitude []float64    // raw magnitudes of the current frame
	smoothed  []float64    // smoothing state
	window    []float64    // coefficients for windowLen samples
	windowLen int
}

// Processor windows, transforms and smooths analysis windows. It keeps the
// previous frame as state and is not safe for concurrent use.
type Processor struct {
	fftSize     int
	sampleRate  float64
	windowFunc  WindowFunc
	smoothing   float64
	fftObj      *fourier.FFT
	frequencies []float64
	workspace   workspace
	primed      bool // true once a frame has been produced
}

// NewProcessor creates a processor for fftSize-point transforms. fftSize
// must be a power of two and smoothing must lie in [0, 1).
func NewProcessor(fftSize int, sampleRate float64, windowFunc WindowFunc, smoothing float64) (*Processor, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if !(smoothing >= 0 && smoothing < 1) { // rejects NaN
		return nil, fmt.Errorf("smoothing must be in [0, 1), got %f", smoothing)
	}

	fftObj := fourier.NewFFT(fftSize)
	bins := fftSize/2 + 1

	frequencies := make([]float64, bins)
	for i := range frequencies {
		frequencies[i] = fftObj.Freq(i) * sampleRate
	}

	return &Processor{
		fftSize:     fftSize,
		sampleRate:  sampleRate,
		windowFunc:  windowFunc,
		smoothing:   smoothing,
		fftObj:      fftObj,
		frequencies: frequencies,
		workspace: workspace{
			input:     make([]float64, fftSize),
			fftOutput: make([]complex128, bins),
			magnitude: make([]float64, bins),
			smoothed:  make([]float64, bins),
		},
	}, nil
}

// Process computes the smoothed spectrum of samples. At most FFTSize
// samples are used; the windowed span is zero-padded to FFTSize. The
// returned magnitudes are a fresh copy of the new smoothing state.
func (p *Processor) Process(samples []float64) Frame {
	mags := make([]float64, len(p.frequencies))
	p.ProcessInto(mags, samples)
	return Frame{Frequencies: p.frequencies, Magnitudes: mags}
}

// ProcessInto is Process writing the magnitudes into dst, which must hold
// Bins() values. It does not allocate once the window for len(samples) is
// cached.
func (p *Processor) ProcessInto(dst, samples []float64) {
	ws := &p.workspace
	n := min(len(samples), p.fftSize)
	w := p.windowFor(n)

	for i := range n {
		ws.input[i] = samples[i] * w[i]
	}
	clear(ws.input[n:])

	p.fftObj.Coefficients(ws.fftOutput, ws.input)
	for i, c := range ws.fftOutput {
		ws.magnitude[i] = cmplx.Abs(c)
	}

	if !p.primed || p.smoothing == 0 {
		copy(ws.smoothed, ws.magnitude)
		p.primed = true
	} else {
		a := p.smoothing
		for i, m := range ws.magnitude {
			ws.smoothed[i] = a*ws.smoothed[i] + (1-a)*m
		}
	}
	copy(dst, ws.smoothed)
}

// windowFor returns coefficients for n samples, recomputing them only when
// the length changes.
func (p *Processor) windowFor(n int) []float64 {
	ws := &p.workspace
	if ws.window == nil || ws.windowLen != n {
		ws.window = p.windowFunc.Coefficients(n)
		ws.windowLen = n
	}
	return ws.window
}

// Frequencies returns the bin centre frequencies in Hz. The slice is shared
// and must not be modified.
func (p *Processor) Frequencies() []float64 { return p.frequencies }

// FrequencyForBin returns the centre frequency of bin i, or 0 when out of range.
func (p *Processor) FrequencyForBin(i int) float64 {
	if i < 0 || i >= len(p.frequencies) {
		return 0
	}
	return p.frequencies[i]
}

// FFTSize returns the transform length.
func (p *Processor) FFTSize() int { return p.fftSize }

// Bins returns the number of frequency bins, FFTSize/2+1.
func (p *Processor) Bins() int { return len(p.frequencies) }

// SampleRate returns the sample rate in Hz the bin grid was built for.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// WindowFunc returns the analysis window.
func (p *Processor) WindowFunc() WindowFunc { return p.windowFunc }

// Smoothing returns the weight given to the previous frame.
func (p *Processor) Smoothing() float64 { return p.smoothing }
