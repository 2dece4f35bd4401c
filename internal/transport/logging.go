// SPDX-License-Identifier: MIT
package transport

import (
	"spectrum/internal/log"
	"spectrum/internal/spectrum"

	"go.uber.org/zap"
)

// LoggingTransport logs every result's peak at debug level.
type LoggingTransport struct {
	logger *zap.SugaredLogger
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	lt := &LoggingTransport{logger: log.Named("frames")}
	lt.logger.Info("using logging transport")
	return lt
}

// Present logs the dominant frequency of r.
func (lt *LoggingTransport) Present(r spectrum.Result) error {
	lt.logger.Debugw("frame",
		"seq", r.Sequence,
		"peak_hz", r.Peak.Frequency,
		"peak_magnitude", r.Peak.Magnitude,
		"bins", r.Frame.Len(),
	)
	return nil
}

// Close flushes nothing; the global logger is synced on exit.
func (lt *LoggingTransport) Close() error { return nil }

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
