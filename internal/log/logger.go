// SPDX-License-Identifier: MIT

// Package log is the application-wide leveled logger. It keeps the small
// Debugf/Infof/... surface used across the codebase and delegates to zap,
// so the level can change at runtime and output can be redirected while the
// terminal UI owns the screen.
//
// Nothing in this package may be called from the audio callback.
package log

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the severity of a log message.
type LogLevel int8

// Constants for log levels.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger atomic.Pointer[zap.SugaredLogger]
)

func init() {
	SetOutput(os.Stderr)
}

func newCore(w io.Writer) zapcore.Core {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeCaller = nil
	enc.CallerKey = ""
	enc.StacktraceKey = ""
	return zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
}

// SetOutput redirects all subsequent log output to w.
func SetOutput(w io.Writer) {
	logger.Store(zap.New(newCore(w)).Sugar())
}

// SetLevel sets the global logging level.
func SetLevel(l LogLevel) {
	level.SetLevel(l.zapLevel())
}

// GetLevel gets the current global logging level.
func GetLevel() LogLevel {
	switch level.Level() {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.WarnLevel:
		return LevelWarn
	case zapcore.ErrorLevel:
		return LevelError
	case zapcore.FatalLevel:
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Enabled reports whether messages at l are currently emitted.
func Enabled(l LogLevel) bool {
	return level.Enabled(l.zapLevel())
}

// Named returns a structured logger tagged with a component name, for
// callers that want key/value fields instead of format strings.
func Named(component string) *zap.SugaredLogger {
	return logger.Load().Named(component)
}

// Sync flushes buffered output. Call it before the process exits.
func Sync() {
	_ = logger.Load().Sync()
}

// Debugf logs a formatted debug message if the level is appropriate.
func Debugf(format string, v ...any) {
	logger.Load().Debugf(format, v...)
}

// Infof logs a formatted info message if the level is appropriate.
func Infof(format string, v ...any) {
	logger.Load().Infof(format, v...)
}

// Warnf logs a formatted warning message if the level is appropriate.
func Warnf(format string, v ...any) {
	logger.Load().Warnf(format, v...)
}

// Errorf logs a formatted error message if the level is appropriate.
func Errorf(format string, v ...any) {
	logger.Load().Errorf(format, v...)
}

// Fatalf logs a formatted fatal message and exits the application.
func Fatalf(format string, v ...any) {
	logger.Load().Fatalf(format, v...)
}

// Info logs an info message if the level is appropriate.
func Info(v ...any) {
	logger.Load().Info(v...)
}

// Warn logs a warning message if the level is appropriate.
func Warn(v ...any) {
	logger.Load().Warn(v...)
}

// Error logs an error message if the level is appropriate.
func Error(v ...any) {
	logger.Load().Error(v...)
}

// Fatal logs a fatal message and exits the application.
func Fatal(v ...any) {
	logger.Load().Fatal(v...)
}
