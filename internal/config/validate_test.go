// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()
	if err := NewConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"sample rate too low", func(c *Config) { c.Audio.SampleRate = 4000 }, "audio.sample_rate"},
		{"sample rate too high", func(c *Config) { c.Audio.SampleRate = 384000 }, "audio.sample_rate"},
		{"zero block duration", func(c *Config) { c.Audio.BlockDuration = 0 }, "audio.block_duration"},
		{"block rounds to empty", func(c *Config) { c.Audio.BlockDuration = 1e-6 }, "empty block"},
		{"no channels", func(c *Config) { c.Audio.InputChannels = 0 }, "audio.input_channels"},
		{"bad device", func(c *Config) { c.Audio.InputDevice = -2 }, "audio.input_device"},
		{"tone above nyquist", func(c *Config) { c.Audio.ToneHz = 30000 }, "audio.tone_hz"},
		{"tone with file", func(c *Config) { c.Audio.ToneHz = 440; c.Audio.InputFile = "a.wav" }, "mutually exclusive"},
		{"unknown window", func(c *Config) { c.Analysis.Window = "kaiser" }, "analysis.window"},
		{"negative smoothing", func(c *Config) { c.Analysis.Smoothing = -0.1 }, "analysis.smoothing"},
		{"smoothing one", func(c *Config) { c.Analysis.Smoothing = 1 }, "analysis.smoothing"},
		{"smoothing NaN", func(c *Config) { c.Analysis.Smoothing = math.NaN() }, "analysis.smoothing"},
		{"sample rate NaN", func(c *Config) { c.Audio.SampleRate = math.NaN() }, "audio.sample_rate"},
		{"block duration NaN", func(c *Config) { c.Audio.BlockDuration = math.NaN() }, "audio.block_duration"},
		{"tone NaN", func(c *Config) { c.Audio.ToneHz = math.NaN() }, "audio.tone_hz"},
		{"db floor NaN", func(c *Config) { c.UI.MinDB = math.NaN() }, "ui.min_db"},
		{"fft not pow2", func(c *Config) { c.Analysis.MinFFTSize = 3000 }, "analysis.min_fft_size"},
		{"fft zero", func(c *Config) { c.Analysis.MinFFTSize = 0 }, "analysis.min_fft_size"},
		{"queue zero", func(c *Config) { c.Analysis.QueueCapacity = 0 }, "analysis.queue_capacity"},
		{"negative refresh", func(c *Config) { c.UI.RefreshInterval = -1 }, "ui.refresh_interval"},
		{"positive db floor", func(c *Config) { c.UI.MinDB = 3 }, "ui.min_db"},
		{"udp no port", func(c *Config) { c.Transport.UDPEnabled = true; c.Transport.UDPTargetAddress = "localhost" }, "transport.udp_target_address"},
		{"ws empty", func(c *Config) { c.Transport.WebSocketEnabled = true; c.Transport.WebSocketAddress = "" }, "transport.websocket_address"},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %q", err, tt.field)
			}
		})
	}
}

func TestValidate_DisabledTransportAddressesIgnored(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.Transport.UDPTargetAddress = "garbage"
	cfg.Transport.WebSocketAddress = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled transports should not be validated: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.Audio.InputChannels = 0
	cfg.Analysis.QueueCapacity = 0
	err := cfg.Validate()
	for _, want := range []string{"audio.input_channels", "analysis.queue_capacity"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
