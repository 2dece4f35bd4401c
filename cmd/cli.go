// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"strings"
	"time"

	"spectrum/internal/audio"
	"spectrum/internal/config"
	"spectrum/pkg/build"

	"github.com/spf13/cobra"
)

// One-off commands reported in Config.Command.
const (
	CommandList   = "list"
	CommandPick   = "pick"
	CommandConfig = "config"
)

// flagValues receives the command line before it is merged into the
// loaded configuration.
type flagValues struct {
	configPath string

	device        int
	file          string
	loop          bool
	tone          float64
	sampleRate    float64
	blockDuration float64
	channels      int
	lowLatency    bool

	window    string
	smoothing float64
	minFFT    int
	queue     int

	tui      bool
	refresh  time.Duration
	minDB    float64
	logFile  string
	logLevel string
	debug    bool

	record    bool
	output    string
	outputDir string

	ws      bool
	wsAddr  string
	udp     bool
	udpAddr string
	logSink bool
}

// ParseArgs parses args (without the program name) into the effective
// configuration: defaults, then the YAML file, then the environment, then
// any flag given explicitly.
func ParseArgs(args []string) (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	var (
		flags    flagValues
		options  *config.Config
		pickMode bool
	)

	load := func(cmd *cobra.Command, command string) error {
		cfg, err := config.LoadConfig(flags.configPath)
		if err != nil {
			return err
		}
		flags.apply(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg.Command = command
		options = cfg
		return nil
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       build.VersionString(),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, "")
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio input devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pickMode {
				return load(cmd, CommandPick)
			}
			return load(cmd, CommandList)
		},
	}
	listCmd.Flags().BoolVarP(&pickMode, "pick", "p", false,
		"Choose a device interactively and print its ID")
	rootCmd.AddCommand(listCmd)

	// Config command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, CommandConfig)
		},
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "",
		"Path to a YAML config file (default: ./"+config.DefaultConfigFile+" if present)")

	// Audio source
	pf.IntVarP(&flags.device, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' command to see available devices.")
	pf.StringVarP(&flags.file, "file", "f", "",
		"Replay an audio file instead of capturing ("+strings.Join(audio.SupportedExtensions(), " ")+")")
	pf.BoolVar(&flags.loop, "loop", false, "Restart the replay file at end of file")
	pf.Float64Var(&flags.tone, "tone", 0, "Analyse a generated sine at this frequency in Hz")
	pf.IntVarP(&flags.channels, "channels", "c", config.DefaultChannels,
		"Number of input channels (mixed down to mono)")
	pf.Float64VarP(&flags.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.Float64VarP(&flags.blockDuration, "block-duration", "b", config.DefaultBlockDuration,
		"Seconds of audio per block (affects latency and tick rate)")
	pf.BoolVarP(&flags.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use the device's low input latency")

	// Analysis
	pf.StringVarP(&flags.window, "window", "w", config.DefaultWindow,
		"Window function: hann, hamming or rectangular")
	pf.Float64Var(&flags.smoothing, "smoothing", config.DefaultSmoothing,
		"Exponential smoothing factor in [0, 0.99]")
	pf.IntVar(&flags.minFFT, "min-fft", config.DefaultMinFFTSize, "Smallest FFT size (power of two)")
	pf.IntVar(&flags.queue, "queue", config.DefaultQueueCapacity, "Block queue capacity")

	// Presentation
	pf.BoolVar(&flags.tui, "tui", config.DefaultTUI, "Draw the spectrum in the terminal (false runs headless)")
	pf.DurationVar(&flags.refresh, "refresh", 0, "Analysis tick period (default: one block duration)")
	pf.Float64Var(&flags.minDB, "min-db", config.DefaultMinDB, "Floor of the plot's dB scale")
	pf.StringVar(&flags.logFile, "log-file", "", "Write logs to this file")

	// Recording
	pf.BoolVarP(&flags.record, "record", "r", false, "Record the analysed stream to a WAV file")
	pf.StringVarP(&flags.output, "output", "o", "",
		"Recording file name. Default is spectrum-YYYYMMDD-HHMMSS.wav in the output directory")
	pf.StringVar(&flags.outputDir, "output-dir", "", "Directory for generated recording names")

	// Network sinks
	pf.BoolVar(&flags.ws, "ws", false, "Serve frames over websocket")
	pf.StringVar(&flags.wsAddr, "ws-addr", config.DefaultWebSocketAddress, "Websocket listen address")
	pf.BoolVar(&flags.udp, "udp", false, "Send frames as UDP packets")
	pf.StringVar(&flags.udpAddr, "udp-addr", config.DefaultUDPTargetAddress, "UDP target address")
	pf.BoolVar(&flags.logSink, "log-frames", false, "Log every frame's peak at debug level")

	// Debug Configuration
	pf.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	pf.BoolVarP(&flags.debug, "verbose", "v", false, "Show verbose output (log level debug)")

	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	// --help and --version print and leave options nil.
	return options, nil
}

// apply copies every explicitly set flag into cfg.
func (f *flagValues) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("device") {
		cfg.Audio.InputDevice = f.device
	}
	if changed("file") {
		cfg.Audio.InputFile = f.file
	}
	if changed("loop") {
		cfg.Audio.LoopFile = f.loop
	}
	if changed("tone") {
		cfg.Audio.ToneHz = f.tone
	}
	if changed("channels") {
		cfg.Audio.InputChannels = f.channels
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = f.sampleRate
	}
	if changed("block-duration") {
		cfg.Audio.BlockDuration = f.blockDuration
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = f.lowLatency
	}

	if changed("window") {
		cfg.Analysis.Window = f.window
	}
	if changed("smoothing") {
		cfg.Analysis.Smoothing = f.smoothing
	}
	if changed("min-fft") {
		cfg.Analysis.MinFFTSize = f.minFFT
	}
	if changed("queue") {
		cfg.Analysis.QueueCapacity = f.queue
	}

	if changed("tui") {
		cfg.UI.TUI = f.tui
	}
	if changed("refresh") {
		cfg.UI.RefreshInterval = f.refresh
	}
	if changed("min-db") {
		cfg.UI.MinDB = f.minDB
	}
	if changed("log-file") {
		cfg.UI.LogFile = f.logFile
	}

	if changed("record") {
		cfg.Recording.Enabled = f.record
	}
	if changed("output") {
		cfg.Recording.OutputFile = f.output
		cfg.Recording.Enabled = true
	}
	if changed("output-dir") {
		cfg.Recording.OutputDir = f.outputDir
	}

	if changed("ws") {
		cfg.Transport.WebSocketEnabled = f.ws
	}
	if changed("ws-addr") {
		cfg.Transport.WebSocketAddress = f.wsAddr
	}
	if changed("udp") {
		cfg.Transport.UDPEnabled = f.udp
	}
	if changed("udp-addr") {
		cfg.Transport.UDPTargetAddress = f.udpAddr
	}
	if changed("log-frames") {
		cfg.Transport.LogEnabled = f.logSink
	}

	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("verbose") {
		cfg.Debug = f.debug
	}
}
