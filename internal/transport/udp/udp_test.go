// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"net"
	"testing"
	"time"

	"spectrum/internal/spectrum"
)

func testResult() spectrum.Result {
	return spectrum.Result{
		Sequence: 7,
		Time:     time.Unix(1700000000, 123),
		Frame: spectrum.Frame{
			Frequencies: []float64{0, 100, 200},
			Magnitudes:  []float64{0.25, 3.5, 1},
		},
		Peak: spectrum.Peak{Bin: 1, Frequency: 100, Magnitude: 3.5},
	}
}

func TestPacketLayout(t *testing.T) {
	t.Parallel()
	b, err := AppendPacket(nil, 42, 99, 440, 2, []float64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != HeaderSize+8 {
		t.Fatalf("packet is %d bytes, want %d", len(b), HeaderSize+8)
	}
	// Sequence, then timestamp, big-endian.
	if b[3] != 42 || b[11] != 99 {
		t.Errorf("header bytes = % x", b[:12])
	}
	// Magnitude count sits right before the payload.
	if b[20] != 0 || b[21] != 2 {
		t.Errorf("count bytes = % x", b[20:22])
	}

	p, err := DecodePacket(b)
	if err != nil {
		t.Fatal(err)
	}
	if p.Sequence != 42 || p.Timestamp != 99 || p.PeakHz != 440 || p.PeakMagnitude != 2 {
		t.Errorf("decoded header = %+v", p)
	}
	if len(p.Magnitudes) != 2 || p.Magnitudes[1] != 2 {
		t.Errorf("decoded magnitudes = %v", p.Magnitudes)
	}
}

func TestPacketErrors(t *testing.T) {
	t.Parallel()
	if _, err := AppendPacket(nil, 1, 0, 0, 0, make([]float64, MaxMagnitudes+1)); !errors.Is(err, ErrPacketTooLarge) {
		t.Errorf("expected ErrPacketTooLarge, got %v", err)
	}
	if _, err := DecodePacket(make([]byte, HeaderSize-1)); !errors.Is(err, ErrShortPacket) {
		t.Errorf("expected ErrShortPacket, got %v", err)
	}
	b, _ := AppendPacket(nil, 1, 0, 0, 0, []float64{1, 2, 3})
	if _, err := DecodePacket(b[:len(b)-1]); !errors.Is(err, ErrShortPacket) {
		t.Errorf("truncated payload: expected ErrShortPacket, got %v", err)
	}
}

type fakeSender struct {
	packets [][]byte
	err     error
	closed  bool
}

func (f *fakeSender) Send(b []byte) error {
	if f.err != nil {
		return f.err
	}
	f.packets = append(f.packets, append([]byte(nil), b...))
	return nil
}

func (f *fakeSender) Close() error { f.closed = true; return nil }

func TestPublisher_Present(t *testing.T) {
	t.Parallel()
	fs := &fakeSender{}
	pub, err := NewPublisher(fs)
	if err != nil {
		t.Fatal(err)
	}
	res := testResult()
	for range 3 {
		if err := pub.Present(res); err != nil {
			t.Fatal(err)
		}
	}
	if len(fs.packets) != 3 || pub.Sequence() != 3 {
		t.Fatalf("sent %d packets, sequence %d", len(fs.packets), pub.Sequence())
	}
	p, err := DecodePacket(fs.packets[2])
	if err != nil {
		t.Fatal(err)
	}
	if p.Sequence != 3 || p.PeakHz != 100 || p.PeakMagnitude != 3.5 {
		t.Errorf("packet = %+v", p)
	}
	if p.Timestamp != res.Time.UnixNano() {
		t.Errorf("timestamp = %d, want %d", p.Timestamp, res.Time.UnixNano())
	}
	if len(p.Magnitudes) != 3 || p.Magnitudes[0] != 0.25 {
		t.Errorf("magnitudes = %v", p.Magnitudes)
	}

	if err := pub.Close(); err != nil || !fs.closed {
		t.Errorf("Close = %v, closed=%v", err, fs.closed)
	}
}

func TestPublisher_SendFailure(t *testing.T) {
	t.Parallel()
	want := errors.New("network down")
	pub, _ := NewPublisher(&fakeSender{err: want})
	if err := pub.Present(testResult()); !errors.Is(err, want) {
		t.Errorf("Present = %v, want %v", err, want)
	}
	if pub.Failures() != 1 {
		t.Errorf("Failures = %d, want 1", pub.Failures())
	}
}

func TestNewPublisher_NilSender(t *testing.T) {
	t.Parallel()
	if _, err := NewPublisher(nil); err == nil {
		t.Error("expected error for nil sender")
	}
}

func TestDial_Loopback(t *testing.T) {
	t.Parallel()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	defer conn.Close()

	pub, err := Dial(conn.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	if err := pub.Present(testResult()); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, MaxPayload)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	p, err := DecodePacket(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if p.Sequence != 1 || len(p.Magnitudes) != 3 {
		t.Errorf("packet = %+v", p)
	}

	if err := pub.Close(); err != nil {
		t.Fatal(err)
	}
	if err := pub.Present(testResult()); err == nil {
		t.Error("Present after Close should fail")
	}
}

func TestNewSender_BadAddress(t *testing.T) {
	t.Parallel()
	if _, err := NewSender("no-port-here"); err == nil {
		t.Error("expected resolve error")
	}
}
