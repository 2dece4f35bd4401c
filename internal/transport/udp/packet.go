// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Peak Frequency    | float32        | 4            | Dominant frequency (Hz) |
| Peak Magnitude    | float32        | 4            | Magnitude at the peak   |
| Magnitude Count   | uint16         | 2            | Number of floats (N)    |
| Magnitudes        | []float32      | N * 4        | Smoothed magnitudes     |
+-----------------------------------------------------------------------------+
*/

const (
	// HeaderSize is the fixed part of a packet.
	HeaderSize = 4 + 8 + 4 + 4 + 2
	// MaxPayload is the largest UDP payload over IPv4.
	MaxPayload = 65507
	// MaxMagnitudes is the largest magnitude count that fits one datagram.
	MaxMagnitudes = (MaxPayload - HeaderSize) / 4
)

var (
	ErrPacketTooLarge = errors.New("too many magnitudes for one UDP packet")
	ErrShortPacket    = errors.New("packet shorter than its header")
)

// Packet is the decoded form of one datagram.
type Packet struct {
	Sequence      uint32
	Timestamp     int64
	PeakHz        float32
	PeakMagnitude float32
	Magnitudes    []float32
}

// AppendPacket appends the encoded packet to dst.
func AppendPacket(dst []byte, seq uint32, timestamp int64, peakHz, peakMag float64, mags []float64) ([]byte, error) {
	if len(mags) > MaxMagnitudes {
		return dst, fmt.Errorf("%w: %d > %d", ErrPacketTooLarge, len(mags), MaxMagnitudes)
	}
	dst = binary.BigEndian.AppendUint32(dst, seq)
	dst = binary.BigEndian.AppendUint64(dst, uint64(timestamp))
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(peakHz)))
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(peakMag)))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(mags)))
	for _, m := range mags {
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(m)))
	}
	return dst, nil
}

// DecodePacket parses b.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, ErrShortPacket
	}
	p := Packet{
		Sequence:      binary.BigEndian.Uint32(b[0:]),
		Timestamp:     int64(binary.BigEndian.Uint64(b[4:])),
		PeakHz:        math.Float32frombits(binary.BigEndian.Uint32(b[12:])),
		PeakMagnitude: math.Float32frombits(binary.BigEndian.Uint32(b[16:])),
	}
	n := int(binary.BigEndian.Uint16(b[20:]))
	body := b[HeaderSize:]
	if len(body) < n*4 {
		return Packet{}, fmt.Errorf("%w: %d magnitudes declared, %d bytes present", ErrShortPacket, n, len(body))
	}
	p.Magnitudes = make([]float32, n)
	for i := range p.Magnitudes {
		p.Magnitudes[i] = math.Float32frombits(binary.BigEndian.Uint32(body[4*i:]))
	}
	return p, nil
}
