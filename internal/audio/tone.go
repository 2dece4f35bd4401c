// SPDX-License-Identifier: MIT
package audio

import (
	"spectrum/internal/config"
	"spectrum/internal/log"
	"spectrum/internal/spectrum"
	"spectrum/pkg/synth"
)

// ToneAmplitude is the peak level of generated tones.
const ToneAmplitude = 0.5

// ToneSource generates a continuous sine, one block per block duration.
type ToneSource struct {
	frequency float64
	osc       *synth.Oscillator
	newBlock  func() spectrum.Block
	pacer     *pacer
	counters  sourceCounters
}

var _ Source = (*ToneSource)(nil)

// NewToneSource returns a source producing a sine at frequency Hz.
func NewToneSource(frequency float64, params config.Params, sink BlockSink) *ToneSource {
	s := &ToneSource{
		frequency: frequency,
		osc:       synth.NewOscillator(frequency, params.SampleRate, ToneAmplitude),
		newBlock:  blockMaker(sink, params.BlockSize),
	}
	s.pacer = newPacer(blockInterval(params.BlockSize, params.SampleRate), sink, &s.counters, s.nextBlock)
	return s
}

func (s *ToneSource) nextBlock() (spectrum.Block, bool) {
	b := s.newBlock()
	s.osc.Fill(b)
	return b, true
}

func (s *ToneSource) Start() error {
	if err := s.pacer.start(); err != nil {
		return err
	}
	log.Infof("Audio: generating %.1f Hz tone", s.frequency)
	return nil
}

func (s *ToneSource) Stop() error {
	s.pacer.stopAndWait()
	return nil
}

func (s *ToneSource) Stats() SourceStats { return s.counters.snapshot() }
