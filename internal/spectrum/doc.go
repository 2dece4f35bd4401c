// SPDX-License-Identifier: MIT

// Package spectrum turns a stream of fixed-size mono blocks into smoothed
// magnitude spectra.
//
// A producer (the audio callback) hands blocks to a BlockQueue without
// blocking. A periodic tick on the analysis side drains the queue into an
// Accumulator, windows the most recent FFT-sized span, transforms it,
// smooths it against the previous frame and extracts the dominant bin.
// Nothing in this package performs I/O; results leave through a Sink.
package spectrum
