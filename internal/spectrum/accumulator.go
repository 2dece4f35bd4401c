// SPDX-License-Identifier: MIT
package spectrum

// Accumulator is the growing mono sample history, oldest sample first. It is
// owned by the analysis side and is not safe for concurrent use.
type Accumulator struct {
	buf     []float64
	trimCap int
}

// NewAccumulator creates an accumulator that Trim keeps at or below trimCap
// samples.
func NewAccumulator(trimCap int) *Accumulator {
	trimCap = max(trimCap, 1)
	return &Accumulator{
		buf:     make([]float64, 0, 2*trimCap),
		trimCap: trimCap,
	}
}

// Append adds samples at the tail.
func (a *Accumulator) Append(samples []float64) {
	a.buf = append(a.buf, samples...)
}

// Len returns the number of samples held.
func (a *Accumulator) Len() int { return len(a.buf) }

// TrimCap returns the retention bound applied by Trim.
func (a *Accumulator) TrimCap() int { return a.trimCap }

// Trim discards the oldest samples so that at most TrimCap remain. The
// backing array is reused.
func (a *Accumulator) Trim() {
	if excess := len(a.buf) - a.trimCap; excess > 0 {
		n := copy(a.buf, a.buf[excess:])
		a.buf = a.buf[:n]
	}
}

// Latest returns a new slice with the last n samples, left-padded with
// zeros when fewer than n are held.
func (a *Accumulator) Latest(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	dst := make([]float64, n)
	a.LatestInto(dst)
	return dst
}

// LatestInto fills dst with the last len(dst) samples, left-padded with
// zeros when fewer are held.
func (a *Accumulator) LatestInto(dst []float64) {
	n := len(dst)
	have := len(a.buf)
	if have >= n {
		copy(dst, a.buf[have-n:])
		return
	}
	pad := n - have
	clear(dst[:pad])
	copy(dst[pad:], a.buf)
}
