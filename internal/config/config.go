// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the analyser.
const (
	// Audio capture defaults.
	DefaultDeviceID      = MinDeviceID // System default input device
	DefaultChannels      = 1           // Mono capture
	DefaultSampleRate    = 48000       // Hz
	DefaultBlockDuration = 0.05        // Seconds per captured block
	DefaultLowLatency    = false       // Standard latency mode

	// Analysis defaults.
	DefaultWindow        = "hann"
	DefaultSmoothing     = 0.6  // Weight of the previous frame
	DefaultMinFFTSize    = 4096 // Lower bound on the transform length
	DefaultQueueCapacity = 20   // Blocks buffered between callback and tick

	// Presentation defaults.
	DefaultTUI              = true
	DefaultMinDB            = -100.0
	DefaultWebSocketAddress = "127.0.0.1:8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"

	DefaultLogLevel = "info"

	// Hardware and processing limits.
	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxSmoothing  = 0.99   // Smoothing at 1.0 would freeze the display
	MaxChannels   = 32
)

// Config represents the application configuration, loaded from YAML and
// refined by environment variables and command line flags.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Enable debug mode (forces log_level=debug).
	LogLevel  string          `yaml:"log_level"`         // Logging level ("debug", "info", "warn", "error").
	Command   string          `yaml:"command,omitempty"` // One-off command to run instead of the analyser.
	Audio     AudioConfig     `yaml:"audio"`             // Capture settings.
	Analysis  AnalysisConfig  `yaml:"analysis"`          // Spectral analysis settings.
	Recording RecordingConfig `yaml:"recording"`         // WAV recording of the analysed stream.
	Transport TransportConfig `yaml:"transport"`         // Network presentation sinks.
	UI        UIConfig        `yaml:"ui"`                // Terminal presentation.
}

// AudioConfig holds the sample source settings.
type AudioConfig struct {
	InputDevice   int     `yaml:"input_device"`   // PortAudio device index (-1 for default).
	InputFile     string  `yaml:"input_file"`     // Replay a wav/mp3/ogg file instead of capturing.
	LoopFile      bool    `yaml:"loop_file"`      // Restart the replay file at EOF.
	ToneHz        float64 `yaml:"tone_hz"`        // Generate a sine at this frequency instead of capturing (0 = off).
	SampleRate    float64 `yaml:"sample_rate"`    // Sample rate in Hz.
	BlockDuration float64 `yaml:"block_duration"` // Seconds of audio per callback block.
	InputChannels int     `yaml:"input_channels"` // Channels captured; mixed down to mono.
	LowLatency    bool    `yaml:"low_latency"`    // Request the device's low input latency.
}

// AnalysisConfig holds the spectral processor settings.
type AnalysisConfig struct {
	Window        string  `yaml:"window"`         // "hann", "hamming" or "rectangular".
	Smoothing     float64 `yaml:"smoothing"`      // Exponential smoothing factor in [0, 0.99].
	MinFFTSize    int     `yaml:"min_fft_size"`   // Smallest transform length; power of two.
	QueueCapacity int     `yaml:"queue_capacity"` // Block queue capacity; overflow drops the newest block.
}

// RecordingConfig holds settings for recording the analysed mono stream.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record while analysing.
	OutputDir  string `yaml:"output_dir"`  // Directory for generated file names.
	OutputFile string `yaml:"output_file"` // Explicit output path; generated when empty.
}

// TransportConfig holds settings for sending spectra over the network.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`  // Serve JSON frames on ws://address/ws.
	WebSocketAddress string `yaml:"websocket_address"`  // Listen address for the websocket server.
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Send binary frames over UDP.
	UDPTargetAddress string `yaml:"udp_target_address"` // Target "host:port" for UDP packets.
	LogEnabled       bool   `yaml:"log_enabled"`        // Log every frame's peak at debug level.
}

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	TUI             bool          `yaml:"tui"`              // Run the terminal plot; headless otherwise.
	RefreshInterval time.Duration `yaml:"refresh_interval"` // Analysis tick period; 0 uses the block duration.
	MinDB           float64       `yaml:"min_db"`           // Floor of the dB scale in the plot.
	LogFile         string        `yaml:"log_file"`         // Log destination while the TUI owns the terminal.
}

// NewConfig creates a Config populated with the built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:   DefaultDeviceID,
			SampleRate:    DefaultSampleRate,
			BlockDuration: DefaultBlockDuration,
			InputChannels: DefaultChannels,
			LowLatency:    DefaultLowLatency,
		},
		Analysis: AnalysisConfig{
			Window:        DefaultWindow,
			Smoothing:     DefaultSmoothing,
			MinFFTSize:    DefaultMinFFTSize,
			QueueCapacity: DefaultQueueCapacity,
		},
		Recording: RecordingConfig{
			OutputDir: "./recordings",
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
		},
		UI: UIConfig{
			TUI:   DefaultTUI,
			MinDB: DefaultMinDB,
		},
	}
}

// TickInterval returns the analysis tick period: the configured refresh
// interval, or one block duration when unset.
func (c *Config) TickInterval() time.Duration {
	if c.UI.RefreshInterval > 0 {
		return c.UI.RefreshInterval
	}
	return time.Duration(c.Audio.BlockDuration * float64(time.Second))
}

// EffectiveLogLevel returns the level name to apply, honouring Debug.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
