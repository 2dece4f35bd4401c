// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"io"
	"sync"

	applog "spectrum/internal/log"
	"spectrum/internal/spectrum"
)

// PacketSender transmits one datagram per call.
type PacketSender interface {
	Send([]byte) error
	io.Closer
}

// Publisher packs each presented result into the binary frame format and
// sends it. Sending happens on the caller's goroutine; UDP writes do not
// wait for the receiver.
type Publisher struct {
	sender PacketSender

	mu          sync.Mutex
	sequenceNum uint32
	packet      []byte // Reused between results
	failures    uint64
}

// NewPublisher wraps sender.
func NewPublisher(sender PacketSender) (*Publisher, error) {
	if sender == nil {
		return nil, errors.New("UDP publisher: sender cannot be nil")
	}
	return &Publisher{sender: sender}, nil
}

// Dial creates a Publisher sending to targetAddress.
func Dial(targetAddress string) (*Publisher, error) {
	sender, err := NewSender(targetAddress)
	if err != nil {
		return nil, err
	}
	return NewPublisher(sender)
}

// Present encodes r and sends it.
func (p *Publisher) Present(r spectrum.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sequenceNum++
	packet, err := AppendPacket(p.packet[:0], p.sequenceNum, r.Time.UnixNano(),
		r.Peak.Frequency, r.Peak.Magnitude, r.Frame.Magnitudes)
	if err != nil {
		return err
	}
	p.packet = packet

	if err := p.sender.Send(packet); err != nil {
		p.failures++
		return err
	}
	applog.Debugf("UDP Publisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packet))
	return nil
}

// Sequence returns the sequence number of the last packet.
func (p *Publisher) Sequence() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sequenceNum
}

// Failures returns the number of sends that failed.
func (p *Publisher) Failures() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

// Close closes the sender.
func (p *Publisher) Close() error {
	return p.sender.Close()
}

var _ spectrum.Sink = (*Publisher)(nil)
