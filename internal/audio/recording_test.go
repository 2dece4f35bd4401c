// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spectrum/internal/spectrum"
	"spectrum/pkg/synth"

	"github.com/go-audio/wav"
)

func TestRecorder_WritesMonoWAV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "take.wav")
	r := NewRecorder(48000)

	// Blocks observed while idle are ignored.
	r.ObserveBlock(make(spectrum.Block, 100))

	if err := r.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !r.Recording() {
		t.Error("Recorder should be in recording state")
	}
	for range 3 {
		r.ObserveBlock(synth.SineWave(2400, 48000, 440, 0.5))
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if r.Recording() {
		t.Error("Recorder should not be in recording state after stopping")
	}
	if r.Frames() != 7200 || r.Path() != path {
		t.Errorf("Frames=%d Path=%q", r.Frames(), r.Path())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Recording file was not created: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("recording is not a valid WAV file")
	}
	if dec.NumChans != 1 || dec.SampleRate != 48000 || dec.BitDepth != RecordingBitDepth {
		t.Errorf("format = %d ch, %d Hz, %d bit", dec.NumChans, dec.SampleRate, dec.BitDepth)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf.Data) != 7200 {
		t.Errorf("recorded %d samples, want 7200", len(buf.Data))
	}
}

func TestRecorderErrorCases(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	t.Run("Already recording", func(t *testing.T) {
		r := NewRecorder(48000)
		if err := r.Start(filepath.Join(dir, "a.wav")); err != nil {
			t.Fatal(err)
		}
		defer r.Stop()
		if err := r.Start(filepath.Join(dir, "b.wav")); !errors.Is(err, ErrAlreadyRecording) {
			t.Errorf("expected ErrAlreadyRecording, got %v", err)
		}
	})

	t.Run("Invalid path", func(t *testing.T) {
		r := NewRecorder(48000)
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, nil, 0644); err != nil {
			t.Fatal(err)
		}
		if err := r.Start(filepath.Join(blocker, "x.wav")); err == nil {
			t.Error("expected error for path below a regular file")
		}
		if r.Recording() {
			t.Error("failed Start left recorder active")
		}
	})

	t.Run("Stop when not recording", func(t *testing.T) {
		if err := NewRecorder(48000).Stop(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestQuantize16(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},
		{-3, -32767},
		{0.5, 16384},
	}
	for _, tt := range tests {
		if got := quantize16(tt.in); got != tt.want {
			t.Errorf("quantize16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRecordingPath(t *testing.T) {
	t.Parallel()
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	if got, want := RecordingPath("out", ts), filepath.Join("out", "spectrum-20250304-050607.wav"); got != want {
		t.Errorf("RecordingPath = %q, want %q", got, want)
	}
}

func TestRecorder_ObserverWiring(t *testing.T) {
	t.Parallel()
	params := testParams(48000, 480)
	params.FFTSize = 1024
	params.TrimCap = 4096
	params.QueueCapacity = 4
	params.Window = "hann"
	pipe, err := spectrum.NewPipeline(params)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRecorder(params.SampleRate)
	pipe.Observe(r)

	path := filepath.Join(t.TempDir(), "wired.wav")
	if err := r.Start(path); err != nil {
		t.Fatal(err)
	}
	pipe.Push(make(spectrum.Block, 480))
	pipe.Push(make(spectrum.Block, 480))
	pipe.Tick()
	if err := r.Stop(); err != nil {
		t.Fatal(err)
	}
	if r.Frames() != 960 {
		t.Errorf("recorded %d frames through the pipeline, want 960", r.Frames())
	}
}
