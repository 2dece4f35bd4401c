// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"spectrum/internal/log"
	"spectrum/pkg/bitint"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var knownWindows = map[string]struct{}{
	"hann": {}, "hanning": {}, "hamming": {},
	"rectangular": {}, "rect": {}, "none": {}, "boxcar": {},
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the configuration and returns every problem found, each
// wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	a := c.Audio
	// Range checks are written positively so that NaN fails them.
	if !(a.SampleRate >= MinSampleRate && a.SampleRate <= MaxSampleRate) {
		errs = append(errs, invalid("audio.sample_rate %v outside [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if !(a.BlockDuration > 0) {
		errs = append(errs, invalid("audio.block_duration must be positive, got %v", a.BlockDuration))
	} else if blockSize(a.SampleRate, a.BlockDuration) < 1 {
		errs = append(errs, invalid("audio.block_duration %v yields an empty block", a.BlockDuration))
	}
	if a.InputChannels < 1 || a.InputChannels > MaxChannels {
		errs = append(errs, invalid("audio.input_channels %d outside [1, %d]", a.InputChannels, MaxChannels))
	}
	if a.InputDevice < MinDeviceID {
		errs = append(errs, invalid("audio.input_device %d is below %d", a.InputDevice, MinDeviceID))
	}
	if !(a.ToneHz == 0 || (a.ToneHz > 0 && a.ToneHz < a.SampleRate/2)) {
		errs = append(errs, invalid("audio.tone_hz %v must be within (0, sample_rate/2)", a.ToneHz))
	}
	if a.ToneHz != 0 && a.InputFile != "" {
		errs = append(errs, invalid("audio.tone_hz and audio.input_file are mutually exclusive"))
	}

	an := c.Analysis
	if _, ok := knownWindows[strings.ToLower(strings.TrimSpace(an.Window))]; !ok {
		errs = append(errs, invalid("analysis.window %q is not one of hann, hamming, rectangular", an.Window))
	}
	if !(an.Smoothing >= 0 && an.Smoothing <= MaxSmoothing) {
		errs = append(errs, invalid("analysis.smoothing %v outside [0, %v]", an.Smoothing, MaxSmoothing))
	}
	if !bitint.IsPowerOfTwo(an.MinFFTSize) {
		errs = append(errs, invalid("analysis.min_fft_size %d is not a positive power of two", an.MinFFTSize))
	}
	if an.QueueCapacity < 1 {
		errs = append(errs, invalid("analysis.queue_capacity must be at least 1, got %d", an.QueueCapacity))
	}

	if c.UI.RefreshInterval < 0 {
		errs = append(errs, invalid("ui.refresh_interval must not be negative, got %s", c.UI.RefreshInterval))
	}
	if !(c.UI.MinDB < 0) {
		errs = append(errs, invalid("ui.min_db must be negative, got %v", c.UI.MinDB))
	}

	t := c.Transport
	if t.UDPEnabled {
		if err := checkHostPort(t.UDPTargetAddress); err != nil {
			errs = append(errs, invalid("transport.udp_target_address %q: %v", t.UDPTargetAddress, err))
		}
	}
	if t.WebSocketEnabled {
		if err := checkHostPort(t.WebSocketAddress); err != nil {
			errs = append(errs, invalid("transport.websocket_address %q: %v", t.WebSocketAddress, err))
		}
	}

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, invalid("log_level %q is not recognised", c.LogLevel))
	}

	return errors.Join(errs...)
}

func checkHostPort(addr string) error {
	if addr == "" {
		return errors.New("address is empty")
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if port == "" {
		return errors.New("missing port")
	}
	return nil
}
