// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spectrum/internal/audio"
	"spectrum/internal/config"
	"spectrum/internal/spectrum"
	"spectrum/pkg/synth"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeRecorder struct {
	recording bool
	path      string
	stops     int
}

func (f *fakeRecorder) Start(path string) error {
	f.recording, f.path = true, path
	return nil
}

func (f *fakeRecorder) Stop() error {
	f.recording = false
	f.stops++
	return nil
}

func (f *fakeRecorder) Recording() bool { return f.recording }

func newTestModel(t *testing.T, opts Options) SpectrumModel {
	t.Helper()
	p, err := spectrum.NewPipeline(config.NewConfig().Derive())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	opts.Pipeline = p
	opts.MinDB = config.DefaultMinDB
	return NewSpectrumModel(opts)
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSpectrumModelTick(t *testing.T) {
	var presented int
	m := newTestModel(t, Options{
		Sink: spectrum.SinkFunc(func(spectrum.Result) error {
			presented++
			return nil
		}),
	})
	params := m.opts.Pipeline.Params()

	next, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	if _, ok := next.(SpectrumModel).Last(); ok {
		t.Fatal("no audio pushed, but a frame was produced")
	}
	if !strings.Contains(next.View(), "Waiting for audio") {
		t.Error("view should show the waiting message")
	}

	m.opts.Pipeline.Push(synth.SineWave(params.BlockSize, params.SampleRate, 1000, 0.5))
	next, _ = next.Update(tickMsg(time.Now()))

	res, ok := next.(SpectrumModel).Last()
	if !ok {
		t.Fatal("expected a frame after one block")
	}
	if math.Abs(res.Peak.Frequency-1000) > params.BinWidth() {
		t.Errorf("peak = %.2f Hz, want ~1000", res.Peak.Frequency)
	}
	if presented != 1 {
		t.Errorf("sink saw %d results, want 1", presented)
	}
	if view := next.View(); !strings.Contains(view, "Dominant frequency") {
		t.Errorf("view missing peak label:\n%s", view)
	}
}

func TestSpectrumModelSinkErrors(t *testing.T) {
	m := newTestModel(t, Options{
		Sink: spectrum.SinkFunc(func(spectrum.Result) error { return errors.New("boom") }),
		Source: func() audio.SourceStats {
			return audio.SourceStats{Underflows: 2, Overflows: 3}
		},
	})
	params := m.opts.Pipeline.Params()
	m.opts.Pipeline.Push(make(spectrum.Block, params.BlockSize))

	next, _ := m.Update(tickMsg(time.Now()))
	sm := next.(SpectrumModel)
	if _, ok := sm.Last(); !ok {
		t.Fatal("a sink error must not discard the frame")
	}
	status := sm.statusLine()
	if !strings.Contains(status, "sink errors 1") {
		t.Errorf("status %q should count the sink error", status)
	}
	if !strings.Contains(status, "xruns 2/3") {
		t.Errorf("status %q should show source xruns", status)
	}
}

func TestSpectrumModelQuit(t *testing.T) {
	m := newTestModel(t, Options{})
	for _, msg := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command did not quit", msg)
		}
	}
}

func TestSpectrumModelRecordToggle(t *testing.T) {
	rec := &fakeRecorder{}
	dir := t.TempDir()
	m := newTestModel(t, Options{Recorder: rec, RecordDir: dir})

	next, _ := m.Update(runeKey("r"))
	if !rec.recording {
		t.Fatal("first r should start recording")
	}
	if filepath.Dir(rec.path) != dir || filepath.Ext(rec.path) != ".wav" {
		t.Errorf("recording path = %q", rec.path)
	}
	if !strings.Contains(next.View(), "recording to") {
		t.Error("view should report the recording path")
	}

	next, _ = next.Update(runeKey("r"))
	if rec.recording || rec.stops != 1 {
		t.Errorf("second r should stop: recording=%v stops=%d", rec.recording, rec.stops)
	}
	if !strings.Contains(next.View(), "recording stopped") {
		t.Error("view should report the stop")
	}
}

func TestSpectrumModelRecordUnavailable(t *testing.T) {
	m := newTestModel(t, Options{})
	next, _ := m.Update(runeKey("r"))
	if !strings.Contains(next.View(), "recording unavailable") {
		t.Error("view should say recording is unavailable")
	}
}

func TestSpectrumModelResize(t *testing.T) {
	m := newTestModel(t, Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	sm := next.(SpectrumModel)
	if sm.width != 120 || sm.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", sm.width, sm.height)
	}
	if sm.meter.Width != 40 {
		t.Errorf("meter width = %d, want 40", sm.meter.Width)
	}
}

func TestSpectrumModelStatusSizes(t *testing.T) {
	m := newTestModel(t, Options{})
	status := m.statusLine()
	if !strings.Contains(status, "fft 4096 (2^12)") || !strings.Contains(status, "block 2400") {
		t.Errorf("status %q should show the derived sizes", status)
	}
}
