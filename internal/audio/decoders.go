// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

var errNotWAV = errors.New("not a valid WAV file")

// pcmReader is the part of wav.Decoder used for streaming.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type wavStream struct {
	dec        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
	intBuf     *goaudio.IntBuffer
}

func (s *wavStream) SampleRate() int { return s.sampleRate }
func (s *wavStream) Channels() int   { return s.channels }

func (s *wavStream) ReadSamples(dst []float32) (int, error) {
	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	if s.bitDepth == 8 {
		// 8-bit PCM is unsigned.
		for i, v := range s.intBuf.Data[:n] {
			dst[i] = float32(v-128) / 128
		}
		return n, nil
	}
	scale := 1 / float32(int64(1)<<(s.bitDepth-1))
	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) * scale
	}
	return n, nil
}

func decodeWAV(r io.ReadSeeker) (stream, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", errNotWAV, err)
		}
		return nil, errNotWAV
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bitDepth)
	}
	channels := int(dec.NumChans)
	return &wavStream{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		intBuf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: int(dec.SampleRate)},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// mp3Reader is the part of gomp3.Decoder used for streaming.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// mp3Stream converts go-mp3's 16-bit little-endian stereo output.
type mp3Stream struct {
	dec mp3Reader
	buf []byte
}

func (s *mp3Stream) SampleRate() int { return s.dec.SampleRate() }
func (s *mp3Stream) Channels() int   { return 2 }

func (s *mp3Stream) ReadSamples(dst []float32) (int, error) {
	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.dec, s.buf)
	samples := n / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	if samples > 0 && errors.Is(err, io.EOF) {
		// Report the tail now and EOF on the next call.
		err = nil
	}
	return samples, err
}

func decodeMP3(r io.ReadSeeker) (stream, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return &mp3Stream{dec: dec}, nil
}

// oggReader is the part of oggvorbis.Reader used for streaming.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type vorbisStream struct {
	dec oggReader
}

func (s *vorbisStream) SampleRate() int { return s.dec.SampleRate() }
func (s *vorbisStream) Channels() int   { return s.dec.Channels() }

// ReadSamples reads whole frames only.
func (s *vorbisStream) ReadSamples(dst []float32) (int, error) {
	ch := s.dec.Channels()
	frames := len(dst) / ch
	if frames == 0 {
		return 0, nil
	}
	n, err := s.dec.Read(dst[:frames*ch])
	if n > 0 && errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}

func decodeVorbis(r io.ReadSeeker) (stream, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &vorbisStream{dec: dec}, nil
}
