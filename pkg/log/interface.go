// Package log provides the structured logging interface used across the
// ABIDE autoencoder tooling.
//
// The Logger interface is slog-compatible so that callers never depend on
// the backend. The default backend is zerolog (see NewZerologLogger); tests
// use TestLogger to capture records in memory.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ExperimentKey, "cc200_whole",
//	    log.FoldKey, "0",
//	)
//	logger.Info("Train loss",
//	    log.EpochKey, 3,
//	    log.BatchKey, 5,
//	    log.LossKey, 0.0123,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with log/slog.
type Logger interface {
	// Debug logs a debug-level message with key-value fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with key-value fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with key-value fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it
	// is attached as the record's error together with its stack trace.
	//
	//	logger.Error("Fold failed", err, log.FoldKey, "3")
	Error(msg string, fields ...any)

	// With returns a Logger that adds fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether records at level would be emitted.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers; implemented by the zerolog and test
// providers so commands can be wired with either.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}
