// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spectrum/cmd"
	"spectrum/internal/audio"
	"spectrum/internal/config"
	"spectrum/internal/log"
	"spectrum/internal/spectrum"
	"spectrum/internal/transport"
	"spectrum/internal/transport/udp"
	"spectrum/internal/tui"
	"spectrum/pkg/build"
)

// statsInterval is how often the headless loop reports drops and xruns.
const statsInterval = 5 * time.Second

// main is the entry point for the spectrum analyser.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands if requested
//   - Derive analysis sizes and build the pipeline and sinks
//
// 2. Concurrent Phase (Hot Path):
//   - Start the sample source (capture, file or tone)
//   - Tick the pipeline from the TUI or a headless ticker
//
// 3. Shutdown Phase (Cold Path):
//   - Stop the source, then the recording, then the sinks
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Missing ldflags fall back to dev values.
	if err := build.Initialize(); err != nil {
		log.Warnf("Build info incomplete: %v", err)
	}

	cfg, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if cfg == nil {
		return // --help or --version
	}

	if err := run(cfg); err != nil {
		log.Errorf("%v", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

func run(cfg *config.Config) error {
	if level, ok := log.ParseLevel(cfg.EffectiveLogLevel()); ok {
		log.SetLevel(level)
	}

	// Handle one-off commands that don't run the analyser.
	switch cfg.Command {
	case cmd.CommandConfig:
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case cmd.CommandList, cmd.CommandPick:
		return executeDeviceCommand(cfg.Command)
	}

	closeLog, err := setupLogOutput(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	params := cfg.Derive()
	log.Infof("Analysis: %s", params)

	pipeline, err := spectrum.NewPipeline(params)
	if err != nil {
		return err
	}

	sinks, err := buildSinks(cfg.Transport)
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Warnf("Closing sinks: %v", err)
		}
	}()

	recorder := audio.NewRecorder(params.SampleRate)
	pipeline.Observe(recorder)
	if cfg.Recording.Enabled {
		path := cfg.Recording.OutputFile
		if path == "" {
			path = audio.RecordingPath(cfg.Recording.OutputDir, time.Now())
		}
		if err := recorder.Start(path); err != nil {
			return err
		}
	}
	defer func() {
		if err := recorder.Stop(); err != nil {
			log.Errorf("Stopping recording: %v", err)
		}
	}()

	source, done, cleanup, err := openSource(cfg.Audio, params, pipeline)
	if err != nil {
		return err
	}
	defer cleanup()

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if err := source.Start(); err != nil {
		return err
	}
	// Stopped before the recorder and sinks (deferred earlier, run later).
	defer func() {
		if err := source.Stop(); err != nil {
			log.Warnf("Stopping source: %v", err)
		}
	}()

	if cfg.UI.TUI {
		return tui.RunSpectrum(tui.Options{
			Pipeline:  pipeline,
			Sink:      sinks,
			Interval:  cfg.TickInterval(),
			MinDB:     cfg.UI.MinDB,
			Source:    source.Stats,
			Recorder:  recorder,
			RecordDir: cfg.Recording.OutputDir,
		})
	}
	runHeadless(pipeline, sinks, source, cfg.TickInterval(), done)
	return nil
}

// setupLogOutput redirects logs while the TUI owns the terminal.
func setupLogOutput(cfg *config.Config) (func(), error) {
	if cfg.UI.LogFile == "" {
		if cfg.UI.TUI {
			log.SetOutput(io.Discard)
		}
		return func() {}, nil
	}
	f, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.Sync()
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

// buildSinks assembles the enabled presentation sinks.
func buildSinks(cfg config.TransportConfig) (*transport.Multi, error) {
	sinks := transport.NewMulti()
	if cfg.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.WebSocketAddress)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks.Add(ws)
	}
	if cfg.UDPEnabled {
		pub, err := udp.Dial(cfg.UDPTargetAddress)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks.Add(pub)
	}
	if cfg.LogEnabled {
		sinks.Add(transport.NewLoggingTransport())
	}
	return sinks, nil
}

// openSource selects the sample source: a replay file, a tone, or live
// capture. done is closed when a non-looping file ends and is nil
// otherwise.
func openSource(cfg config.AudioConfig, params config.Params, sink audio.BlockSink) (audio.Source, <-chan struct{}, func(), error) {
	switch {
	case cfg.InputFile != "":
		fs, err := audio.OpenFile(cfg.InputFile, params, sink, cfg.LoopFile)
		if err != nil {
			return nil, nil, nil, err
		}
		var done <-chan struct{}
		if !cfg.LoopFile {
			done = fs.Done()
		}
		return fs, done, func() { fs.Close() }, nil

	case cfg.ToneHz > 0:
		return audio.NewToneSource(cfg.ToneHz, params, sink), nil, func() {}, nil
	}

	if err := audio.Initialize(); err != nil {
		return nil, nil, nil, err
	}
	engine, err := audio.NewEngine(cfg, params, sink)
	if err != nil {
		audio.Terminate()
		return nil, nil, nil, err
	}
	return engine, nil, func() { audio.Terminate() }, nil
}

// runHeadless ticks the pipeline until a signal arrives or done closes.
func runHeadless(p *spectrum.Pipeline, sink spectrum.Sink, source audio.Source, interval time.Duration, done <-chan struct{}) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	report := time.NewTicker(statsInterval)
	defer report.Stop()

	var (
		lastErr   string
		lastStats spectrum.Stats
		lastSrc   audio.SourceStats
	)
	for {
		select {
		case <-ticker.C:
			res, ok, err := p.TickTo(sink)
			if err != nil && err.Error() != lastErr {
				log.Warnf("Sink: %v", err)
			}
			if err != nil {
				lastErr = err.Error()
			} else {
				lastErr = ""
			}
			if ok {
				log.Debugf("Frame %d: peak %.1f Hz", res.Sequence, res.Peak.Frequency)
			}

		case <-report.C:
			st, src := p.Stats(), source.Stats()
			if st.Dropped != lastStats.Dropped {
				log.Warnf("Queue: dropped %d blocks (%d total)", st.Dropped-lastStats.Dropped, st.Dropped)
			}
			if src.Underflows != lastSrc.Underflows || src.Overflows != lastSrc.Overflows {
				log.Warnf("Source: xruns underflow=%d overflow=%d", src.Underflows, src.Overflows)
			}
			lastStats, lastSrc = st, src

		case <-done:
			// Analyse what is still queued before leaving.
			if _, _, err := p.TickTo(sink); err != nil {
				log.Warnf("Sink: %v", err)
			}
			log.Infof("Source finished")
			return

		case sig := <-signals:
			log.Infof("Received %s, shutting down", sig)
			return
		}
	}
}

// executeDeviceCommand handles the one-off device commands, which need
// PortAudio but not the analyser.
func executeDeviceCommand(command string) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	if command == cmd.CommandList {
		return audio.ListDevices(os.Stdout)
	}

	sel, ok, err := tui.PickDevice(audio.HostDevices)
	if err != nil || !ok {
		return err
	}
	fmt.Printf("--device %d --sample-rate %.0f\n", sel.Device.ID, sel.SampleRate)
	return nil
}
