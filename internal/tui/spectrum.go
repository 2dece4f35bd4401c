// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"
	"time"

	"spectrum/internal/audio"
	"spectrum/internal/log"
	"spectrum/internal/spectrum"
	"spectrum/pkg/bitint"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	plotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065"))

	peakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))
)

var (
	quitKeys   = key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"))
	recordKeys = key.NewBinding(key.WithKeys("r"))
)

// Recorder is the recording control the model toggles with "r".
type Recorder interface {
	Start(path string) error
	Stop() error
	Recording() bool
}

// Options configures the spectrum view.
type Options struct {
	Pipeline  *spectrum.Pipeline
	Sink      spectrum.Sink            // Also receives every result; may be nil.
	Interval  time.Duration            // Tick period.
	MinDB     float64                  // Plot floor.
	Source    func() audio.SourceStats // Producer counters; may be nil.
	Recorder  Recorder                 // May be nil.
	RecordDir string
}

type tickMsg time.Time

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// SpectrumModel is the bubbletea model driving the analysis tick and
// drawing the spectrum.
type SpectrumModel struct {
	opts  Options
	scale Scale
	bands []Band
	meter progress.Model

	width, height int

	last     spectrum.Result
	haveLast bool
	sinkErrs uint64
	lastErr  error
	notice   string
}

// NewSpectrumModel creates the model. Options.Pipeline is required.
func NewSpectrumModel(opts Options) SpectrumModel {
	params := opts.Pipeline.Params()
	if opts.Interval <= 0 {
		opts.Interval = 50 * time.Millisecond
	}
	meter := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	meter.Width = 30
	return SpectrumModel{
		opts:   opts,
		scale:  NewScale(opts.MinDB, params.FFTSize),
		bands:  DefaultBands(params.SampleRate / 2),
		meter:  meter,
		width:  80,
		height: 24,
	}
}

func (m SpectrumModel) Init() tea.Cmd {
	return tick(m.opts.Interval)
}

func (m SpectrumModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m = m.step()
		return m, tick(m.opts.Interval)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.meter.Width = max(10, min(40, msg.Width-20))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, quitKeys):
			return m, tea.Quit
		case key.Matches(msg, recordKeys):
			m = m.toggleRecording()
		}
	}
	return m, nil
}

// step runs one analysis tick and forwards the result to the sink.
func (m SpectrumModel) step() SpectrumModel {
	res, ok, err := m.opts.Pipeline.TickTo(m.opts.Sink)
	if !ok {
		return m
	}
	m.last, m.haveLast = res, true
	if err != nil {
		m.sinkErrs++
		if m.lastErr == nil || m.lastErr.Error() != err.Error() {
			log.Warnf("TUI: sink error: %v", err)
		}
		m.lastErr = err
	}
	return m
}

func (m SpectrumModel) toggleRecording() SpectrumModel {
	r := m.opts.Recorder
	if r == nil {
		m.notice = "recording unavailable"
		return m
	}
	if r.Recording() {
		if err := r.Stop(); err != nil {
			m.notice = "stop failed: " + err.Error()
		} else {
			m.notice = "recording stopped"
		}
		return m
	}
	path := audio.RecordingPath(m.opts.RecordDir, time.Now())
	if err := r.Start(path); err != nil {
		m.notice = "record failed: " + err.Error()
	} else {
		m.notice = "recording to " + path
	}
	return m
}

func (m SpectrumModel) View() string {
	params := m.opts.Pipeline.Params()
	title := titleStyle.Render("Spectrum")

	plotWidth := max(10, m.width-2)
	plotHeight := max(4, m.height-len(m.bands)-10)

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")

	if !m.haveLast {
		sb.WriteString(infoStyle.Render(fmt.Sprintf("Waiting for audio (%d samples per block)...", params.BlockSize)))
		sb.WriteString("\n")
	} else {
		levels := ColumnLevels(m.last.Frame, plotWidth, m.scale)
		sb.WriteString(plotStyle.Render(RenderBars(levels, plotHeight)))
		sb.WriteString("\n")
		sb.WriteString(FrequencyAxis(m.last.Frame, plotWidth))
		sb.WriteString("\n\n")
		sb.WriteString(peakStyle.Render(PeakLabel(m.last.Peak)))
		sb.WriteString(fmt.Sprintf("  (%.1f dB)\n\n", ToDB(m.last.Peak.Magnitude)))

		for i, lv := range BandLevels(m.last.Frame, m.bands, m.scale) {
			sb.WriteString(fmt.Sprintf("%-8s %s\n", m.bands[i].Name, m.meter.ViewAs(lv)))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(m.statusLine()))
	sb.WriteString("\n")
	help := "q: Quit"
	if m.opts.Recorder != nil {
		help += " • r: Record"
	}
	if m.notice != "" {
		help += " • " + m.notice
	}
	sb.WriteString(infoStyle.Render(help))
	return sb.String()
}

func (m SpectrumModel) statusLine() string {
	params := m.opts.Pipeline.Params()
	st := m.opts.Pipeline.Stats()
	line := fmt.Sprintf("fft %d (2^%d) • block %d • hop %d • %.2f Hz/bin • frames %d • dropped %d",
		params.FFTSize, bitint.Log2(params.FFTSize), params.BlockSize, params.HopSize, params.BinWidth(),
		st.Frames, st.Dropped)
	if m.opts.Source != nil {
		src := m.opts.Source()
		line += fmt.Sprintf(" • xruns %d/%d", src.Underflows, src.Overflows)
	}
	if m.sinkErrs > 0 {
		line += fmt.Sprintf(" • sink errors %d", m.sinkErrs)
	}
	return line
}

// Last returns the most recent result, if any.
func (m SpectrumModel) Last() (spectrum.Result, bool) { return m.last, m.haveLast }

// RunSpectrum runs the spectrum view until the user quits.
func RunSpectrum(opts Options) error {
	p := tea.NewProgram(NewSpectrumModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
