// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"spectrum/internal/config"
	"spectrum/internal/log"
	"spectrum/internal/spectrum"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported audio file format")
	ErrSampleRateMismatch = errors.New("file sample rate differs from the configured rate")
)

// stream is a decoded file yielding interleaved float32 samples in [-1, 1].
type stream interface {
	SampleRate() int
	Channels() int
	// ReadSamples fills dst with interleaved samples and returns how many
	// were written. io.EOF is returned once the stream is exhausted.
	ReadSamples(dst []float32) (int, error)
}

type decodeFunc func(io.ReadSeeker) (stream, error)

// decoders maps lower-case file extensions to decoders.
var decoders = map[string]decodeFunc{
	".wav":  decodeWAV,
	".wave": decodeWAV,
	".mp3":  decodeMP3,
	".ogg":  decodeVorbis,
	".oga":  decodeVorbis,
}

// SupportedExtensions lists the file extensions OpenFile accepts, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// FileSource replays a decoded audio file in real time, one block per block
// duration.
type FileSource struct {
	path      string
	loop      bool
	blockSize int
	decode    decodeFunc
	newBlock  func() spectrum.Block

	file     *os.File
	stream   stream
	channels int
	scratch  []float32
	eof      bool

	pacer    *pacer
	counters sourceCounters
}

var _ Source = (*FileSource)(nil)

// OpenFile opens path with the decoder registered for its extension. The
// file's sample rate must equal params.SampleRate.
func OpenFile(path string, params config.Params, sink BlockSink, loop bool) (*FileSource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	s := &FileSource{
		path:      path,
		loop:      loop,
		blockSize: params.BlockSize,
		decode:    decode,
		newBlock:  blockMaker(sink, params.BlockSize),
	}
	if err := s.open(); err != nil {
		return nil, err
	}
	if rate := s.stream.SampleRate(); float64(rate) != params.SampleRate {
		s.Close()
		return nil, fmt.Errorf("%w: %s is %d Hz, configured %.0f Hz", ErrSampleRateMismatch, path, rate, params.SampleRate)
	}

	s.pacer = newPacer(blockInterval(params.BlockSize, params.SampleRate), sink, &s.counters, s.nextBlock)
	return s, nil
}

func (s *FileSource) open() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	st, err := s.decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	if st.Channels() < 1 {
		f.Close()
		return fmt.Errorf("failed to decode %s: no channels", s.path)
	}
	s.file = f
	s.stream = st
	s.channels = st.Channels()
	s.scratch = make([]float32, s.blockSize*s.channels)
	s.eof = false
	return nil
}

// rewind reopens the file for another pass.
func (s *FileSource) rewind() error {
	s.Close()
	return s.open()
}

// nextBlock reads one block. At end of file it either rewinds or returns
// the zero-padded remainder and reports the end of the stream.
func (s *FileSource) nextBlock() (spectrum.Block, bool) {
	filled := s.fill(s.scratch)
	if s.eof && s.loop && filled < len(s.scratch) {
		if err := s.rewind(); err != nil {
			log.Errorf("Audio: rewinding %s: %v", s.path, err)
			s.loop = false
		} else {
			filled += s.fill(s.scratch[filled:])
		}
	}
	if filled == 0 {
		return nil, false
	}

	clear(s.scratch[filled:])
	block := s.newBlock()
	Mixdown(block, s.scratch, s.channels)
	return block, !s.eof || s.loop
}

// fill reads into dst until it is full or the stream ends.
func (s *FileSource) fill(dst []float32) int {
	filled := 0
	for filled < len(dst) && !s.eof {
		n, err := s.stream.ReadSamples(dst[filled:])
		filled += n
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warnf("Audio: reading %s: %v", s.path, err)
			}
			s.eof = true
		} else if n == 0 {
			s.eof = true
		}
	}
	return filled
}

func (s *FileSource) Start() error {
	if err := s.pacer.start(); err != nil {
		return err
	}
	log.Infof("Audio: replaying %s (%d ch, loop=%v)", s.path, s.channels, s.loop)
	return nil
}

// Stop halts playback and closes the file.
func (s *FileSource) Stop() error {
	s.pacer.stopAndWait()
	return s.Close()
}

// Done is closed when playback ends, by Stop or at end of file.
func (s *FileSource) Done() <-chan struct{} { return s.pacer.finished() }

// Close releases the underlying file.
func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *FileSource) Channels() int      { return s.channels }
func (s *FileSource) Stats() SourceStats { return s.counters.snapshot() }
