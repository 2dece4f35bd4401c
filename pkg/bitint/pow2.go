// SPDX-License-Identifier: MIT

/*
Package bitint holds the power-of-two helpers used to size the FFT and the
sample buffers. Every function is O(1), allocation free and safe to call
from the audio callback.

	fftSize := bitint.NextPowerOfTwo(2400) // 4096
	ok := bitint.IsPowerOfTwo(fftSize)     // true

NextPowerOfTwo works on size-1 so that an exact power of two maps to
itself: for 8, bits.Len(7) is 3 and 1<<3 is 8 again, whereas bits.Len(8)
would be 4 and double the input.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two that is >= size.
// Zero and negative sizes return 1.
//
//	Input  Output
//	4      4
//	5      8
//	2400   4096
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has a single bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns the exponent of a power of two, or -1 when n is not one.
// It is used to report the FFT order in the status line.
func Log2(n int) int {
	if !IsPowerOfTwo(n) {
		return -1
	}
	return bits.TrailingZeros(uint(n))
}
