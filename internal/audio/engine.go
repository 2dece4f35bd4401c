// SPDX-License-Identifier: MIT
/*
Package audio provides the sample sources feeding the analyser:
- Live capture through a PortAudio input stream
- Replay of WAV, MP3 and Ogg Vorbis files
- A synthetic sine tone
- WAV recording of the analysed stream

Thread Safety:
- Sources only allocate a block and push it; no I/O or logging in callbacks
- Stream status flags are counted atomically and reported by the consumer
*/
package audio

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"spectrum/internal/config"
	"spectrum/internal/log"
	"spectrum/internal/spectrum"

	"github.com/gordonklaus/portaudio"
)

// BlockSink accepts mono blocks without blocking. It reports false when the
// block was dropped.
type BlockSink interface {
	Push(spectrum.Block) bool
}

// BlockAllocator is implemented by sinks that hand out recycled blocks, so
// that producers do not allocate per block.
type BlockAllocator interface {
	NewBlock() spectrum.Block
}

// blockMaker returns a constructor for size-sample blocks, drawing on sink
// when it is a BlockAllocator serving that size.
func blockMaker(sink BlockSink, size int) func() spectrum.Block {
	alloc, ok := sink.(BlockAllocator)
	return func() spectrum.Block {
		if ok {
			if b := alloc.NewBlock(); len(b) == size {
				return b
			}
		}
		return make(spectrum.Block, size)
	}
}

// Source produces blocks into a BlockSink until stopped.
type Source interface {
	Start() error
	Stop() error
	Stats() SourceStats
}

// SourceStats counts producer-side events.
type SourceStats struct {
	Blocks     uint64 // blocks produced
	Rejected   uint64 // blocks the sink refused
	Underflows uint64 // input underflow flags
	Overflows  uint64 // input overflow flags
}

type sourceCounters struct {
	blocks     atomic.Uint64
	rejected   atomic.Uint64
	underflows atomic.Uint64
	overflows  atomic.Uint64
}

func (c *sourceCounters) push(sink BlockSink, b spectrum.Block) {
	c.blocks.Add(1)
	if !sink.Push(b) {
		c.rejected.Add(1)
	}
}

func (c *sourceCounters) snapshot() SourceStats {
	return SourceStats{
		Blocks:     c.blocks.Load(),
		Rejected:   c.rejected.Load(),
		Underflows: c.underflows.Load(),
		Overflows:  c.overflows.Load(),
	}
}

var errStreamRunning = errors.New("input stream already running")

// Engine captures from a PortAudio input device.
type Engine struct {
	params   config.Params
	channels int
	sink     BlockSink
	newBlock func() spectrum.Block

	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	counters sourceCounters
}

var _ Source = (*Engine)(nil)

// NewEngine resolves the configured input device. PortAudio must already be
// initialized.
func NewEngine(cfg config.AudioConfig, params config.Params, sink BlockSink) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}
	if cfg.InputChannels > inputDevice.MaxInputChannels {
		return nil, fmt.Errorf("device %s supports %d input channels, %d requested",
			inputDevice.Name, inputDevice.MaxInputChannels, cfg.InputChannels)
	}

	e := &Engine{
		params:      params,
		channels:    cfg.InputChannels,
		sink:        sink,
		newBlock:    blockMaker(sink, params.BlockSize),
		inputDevice: inputDevice,
	}
	if cfg.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}
	return e, nil
}

// Device returns the resolved input device.
func (e *Engine) Device() *portaudio.DeviceInfo { return e.inputDevice }

// Start opens and starts the input stream with one block per callback.
func (e *Engine) Start() error {
	if e.inputStream != nil {
		return errStreamRunning
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.params.BlockSize,
		SampleRate:      e.params.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	e.inputStream = stream

	log.Infof("Audio: capturing from %q (%d ch, %.0f Hz, latency %s)",
		e.inputDevice.Name, e.channels, e.params.SampleRate, e.inputLatency)
	return nil
}

// Stop stops the stream, waiting for the callback in flight, and closes it.
func (e *Engine) Stop() error {
	if e.inputStream == nil {
		return nil
	}
	stream := e.inputStream
	e.inputStream = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close input stream: %w", err)
	}
	return nil
}

// Stats returns producer counters. Safe from any goroutine.
func (e *Engine) Stats() SourceStats { return e.counters.snapshot() }

// processInputStream is the PortAudio callback. It runs on the audio thread:
// no locks, no I/O, and no allocation while the sink recycles blocks.
func (e *Engine) processInputStream(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	if flags&portaudio.InputUnderflow != 0 {
		e.counters.underflows.Add(1)
	}
	if flags&portaudio.InputOverflow != 0 {
		e.counters.overflows.Add(1)
	}

	frames := len(in) / e.channels
	var block spectrum.Block
	if e.newBlock != nil && frames == e.params.BlockSize {
		block = e.newBlock()
	} else {
		block = make(spectrum.Block, frames)
	}
	Mixdown(block, in, e.channels)
	e.counters.push(e.sink, block)
}

// Mixdown averages interleaved frames of in into dst and returns the number
// of frames written, min(len(dst), len(in)/channels).
func Mixdown(dst []float64, in []float32, channels int) int {
	if channels <= 1 {
		n := min(len(dst), len(in))
		for i := range n {
			dst[i] = float64(in[i])
		}
		return n
	}
	n := min(len(dst), len(in)/channels)
	scale := 1 / float64(channels)
	for i := range n {
		var sum float64
		for _, s := range in[i*channels : (i+1)*channels] {
			sum += float64(s)
		}
		dst[i] = sum * scale
	}
	return n
}
