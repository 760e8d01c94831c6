package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	abideerrors "github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

var (
	defaultMu       sync.RWMutex
	defaultProvider LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo, true)
)

// SetupLogger configures the process-wide logger. console selects the
// human-readable zerolog console writer instead of JSON lines. Warnings
// raised through pkg/errors are routed to the same logger.
func SetupLogger(loglevel string, console bool) error {
	level, err := ParseLevel(loglevel)
	if err != nil {
		return err
	}
	provider := NewZerologProvider(os.Stderr, level, console)

	defaultMu.Lock()
	defaultProvider = provider
	defaultMu.Unlock()

	warnLogger := provider.GetLoggerWithName("warnings")
	abideerrors.SetZerologWarnFunc(func(w error) {
		warnLogger.Warn(w.Error(), ErrorKey, w)
	})
	return nil
}

// GetLogger returns the process-wide logger.
func GetLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns the process-wide logger tagged with a component.
func GetLoggerWithName(name string) Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// ParseLevel converts "debug", "info", "warn" or "error".
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, abideerrors.NewValidationError("log-level", "must be one of debug, info, warn, error", level)
	}
}

func toZerologLevel(l Level) zerolog.Level {
	switch {
	case l <= LevelDebug:
		return zerolog.DebugLevel
	case l <= LevelInfo:
		return zerolog.InfoLevel
	case l <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger creates a Logger writing to w.
func NewZerologLogger(w io.Writer, level Level, console bool) *ZerologLogger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

// Debug implements Logger.Debug.
func (l *ZerologLogger) Debug(msg string, fields ...any) {
	l.emit(l.zl.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (l *ZerologLogger) Info(msg string, fields ...any) {
	l.emit(l.zl.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (l *ZerologLogger) Warn(msg string, fields ...any) {
	l.emit(l.zl.Warn(), msg, fields)
}

// Error implements Logger.Error.
func (l *ZerologLogger) Error(msg string, fields ...any) {
	ev := l.zl.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = withError(ev, err)
			fields = fields[1:]
		}
	}
	l.emit(ev, msg, fields)
}

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			ctx = ctx.Str(key, err.Error())
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= l.zl.GetLevel()
}

func (l *ZerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			ev = withError(ev, v)
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case float64:
			ev = ev.Float64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case zerolog.LogObjectMarshaler:
			ev = ev.Object(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

func withError(ev *zerolog.Event, err error) *zerolog.Event {
	ev = ev.AnErr(ErrorKey, err)
	if st := extractStacktrace(err); st != "" {
		ev = ev.Str(StacktraceKey, st)
	}
	return ev
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// ZerologProvider implements LoggerProvider.
type ZerologProvider struct {
	logger *ZerologLogger
}

// NewZerologProvider creates a provider writing to w.
func NewZerologProvider(w io.Writer, level Level, console bool) *ZerologProvider {
	return &ZerologProvider{logger: NewZerologLogger(w, level, console)}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	return p.logger
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}
