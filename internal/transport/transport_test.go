// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"testing"
	"time"

	"spectrum/internal/spectrum"
)

type mockTransport struct {
	presented int
	closed    bool
	err       error
}

func (m *mockTransport) Present(spectrum.Result) error { m.presented++; return m.err }
func (m *mockTransport) Close() error                  { m.closed = true; return m.err }

func testResult() spectrum.Result {
	return spectrum.Result{
		Sequence: 3,
		Time:     time.Unix(1700000000, 0),
		Frame: spectrum.Frame{
			Frequencies: []float64{0, 50, 100},
			Magnitudes:  []float64{1, 4, 2},
		},
		Peak: spectrum.Peak{Bin: 1, Frequency: 50, Magnitude: 4},
	}
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	t.Parallel()
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	a := &mockTransport{err: errA}
	b := &mockTransport{}
	c := &mockTransport{err: errC}

	m := NewMulti(a, nil, b, c)
	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3 (nil skipped)", m.Len())
	}

	err := m.Present(testResult())
	if !errors.Is(err, errA) || !errors.Is(err, errC) {
		t.Errorf("Present error = %v, want both failures", err)
	}
	if a.presented != 1 || b.presented != 1 || c.presented != 1 {
		t.Errorf("presented counts = %d %d %d", a.presented, b.presented, c.presented)
	}

	if err := m.Close(); !errors.Is(err, errA) {
		t.Errorf("Close error = %v", err)
	}
	if !a.closed || !b.closed || !c.closed {
		t.Error("not every transport was closed")
	}
}

func TestMulti_Empty(t *testing.T) {
	t.Parallel()
	m := NewMulti()
	if err := m.Present(testResult()); err != nil {
		t.Errorf("empty Present = %v", err)
	}
	m.Add(&mockTransport{})
	if m.Len() != 1 {
		t.Errorf("Len after Add = %d", m.Len())
	}
}

func TestLoggingTransport(t *testing.T) {
	t.Parallel()
	lt := NewLoggingTransport()
	if err := lt.Present(testResult()); err != nil {
		t.Errorf("Present = %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}

func TestNewMessage(t *testing.T) {
	t.Parallel()
	msg := NewMessage(testResult())
	if msg.Type != "spectrum" || msg.Sequence != 3 || msg.PeakHz != 50 || msg.PeakMagnitude != 4 {
		t.Errorf("message = %+v", msg)
	}
	if len(msg.Frequencies) != 3 || len(msg.Magnitudes) != 3 {
		t.Errorf("message slices = %v %v", msg.Frequencies, msg.Magnitudes)
	}
}
