// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"spectrum/internal/log"
	"spectrum/internal/spectrum"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RecordingBitDepth is the sample size of recorded WAV files.
const RecordingBitDepth = 16

var ErrAlreadyRecording = errors.New("already recording")

// Recorder writes every analysed block to a mono WAV file. It is a
// spectrum.BlockObserver and runs on the analysis side, never in the audio
// callback.
type Recorder struct {
	sampleRate int

	mu         sync.Mutex
	outputFile *os.File
	wavEncoder *wav.Encoder
	sampleBuf  *goaudio.IntBuffer // Reusable buffer for format conversion
	path       string
	frames     int
	writeErr   error
}

var _ spectrum.BlockObserver = (*Recorder)(nil)

func NewRecorder(sampleRate float64) *Recorder {
	return &Recorder{sampleRate: int(math.Round(sampleRate))}
}

// RecordingPath returns a timestamped file name inside dir.
func RecordingPath(dir string, now time.Time) string {
	return filepath.Join(dir, "spectrum-"+now.Format("20060102-150405")+".wav")
}

// Start creates filename, including missing parent directories, and begins
// recording.
func (r *Recorder) Start(filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.wavEncoder != nil {
		return ErrAlreadyRecording
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create recording directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}

	r.outputFile = file
	r.wavEncoder = wav.NewEncoder(file, r.sampleRate, RecordingBitDepth, 1, 1)
	r.sampleBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  r.sampleRate,
		},
		SourceBitDepth: RecordingBitDepth,
	}
	r.path = filename
	r.frames = 0
	r.writeErr = nil

	log.Infof("Recording: writing %s", filename)
	return nil
}

// ObserveBlock appends b to the recording, if one is active. The first
// write error stops further writes and is returned by Stop.
func (r *Recorder) ObserveBlock(b spectrum.Block) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.wavEncoder == nil || r.writeErr != nil {
		return
	}

	if cap(r.sampleBuf.Data) < len(b) {
		r.sampleBuf.Data = make([]int, len(b))
	}
	r.sampleBuf.Data = r.sampleBuf.Data[:len(b)]
	for i, v := range b {
		r.sampleBuf.Data[i] = quantize16(v)
	}

	if err := r.wavEncoder.Write(r.sampleBuf); err != nil {
		r.writeErr = fmt.Errorf("failed to write recording: %w", err)
		log.Errorf("Recording: %v", err)
		return
	}
	r.frames += len(b)
}

// Stop finalises the WAV header and closes the file. Stopping while idle is
// a no-op.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.wavEncoder == nil {
		return nil
	}

	errs := []error{r.writeErr}
	if err := r.wavEncoder.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to finalise recording: %w", err))
	}
	if err := r.outputFile.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close recording: %w", err))
	}

	log.Infof("Recording: stopped %s after %.1fs", r.path, float64(r.frames)/float64(r.sampleRate))

	r.wavEncoder = nil
	r.outputFile = nil
	return errors.Join(errs...)
}

// Recording reports whether a recording is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wavEncoder != nil
}

// Path returns the current or last recording path.
func (r *Recorder) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Frames returns the number of samples written to the current or last
// recording.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func quantize16(v float64) int {
	v = math.Max(-1, math.Min(1, v))
	return int(math.Round(v * math.MaxInt16))
}
