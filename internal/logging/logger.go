// Package logging provides structured logging for the indexer and API server.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"time"
)

// Level is the severity of a log message
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "info"
	}
}

// ParseLevel parses a level name; unknown names fall back to info
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Format is the output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Logger emits structured log entries. Logger values are immutable;
// WithField and friends return derived loggers.
type Logger struct {
	level  Level
	format Format
	output io.Writer
	fields map[string]interface{}
}

type entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

// New creates a logger writing to stdout
func New(level Level, format Format) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: os.Stdout,
		fields: map[string]interface{}{},
	}
}

func (l *Logger) clone(extra int) *Logger {
	fields := make(map[string]interface{}, len(l.fields)+extra)
	for k, v := range l.fields {
		fields[k] = v
	}
	return &Logger{level: l.level, format: l.format, output: l.output, fields: fields}
}

// WithField returns a logger with one additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	out := l.clone(1)
	out.fields[key] = value
	return out
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	out := l.clone(len(fields))
	for k, v := range fields {
		out.fields[k] = v
	}
	return out
}

// WithError returns a logger carrying the error message as a field
func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err.Error())
}

// WithComponent returns a logger tagged with a component name
func (l *Logger) WithComponent(name string) *Logger {
	return l.WithField("component", name)
}

// SetOutput redirects log output, used in tests
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

func (l *Logger) Debug(msg string)                          { l.log(LevelDebug, msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Info(msg string)                           { l.log(LevelInfo, msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warn(msg string)                           { l.log(LevelWarn, msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Error(msg string)                          { l.log(LevelError, msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, fmt.Sprintf(format, args...)) }

// Fatal logs at fatal level and exits the process
func (l *Logger) Fatal(msg string) {
	l.log(LevelFatal, msg)
	os.Exit(1)
}

func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(LevelFatal, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func (l *Logger) log(level Level, msg string) {
	if level < l.level {
		return
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
	}
	if len(l.fields) > 0 {
		e.Fields = l.fields
	}

	// Caller is only worth the lookup cost on failures
	if level >= LevelError {
		if _, file, line, ok := runtime.Caller(2); ok {
			e.Caller = fmt.Sprintf("%s:%d", file, line)
		}
	}

	var line string
	if l.format == FormatText {
		line = formatText(e)
	} else {
		b, _ := json.Marshal(e)
		line = string(b)
	}
	fmt.Fprintln(l.output, line)
}

func formatText(e entry) string {
	out := fmt.Sprintf("[%s] %s: %s", e.Timestamp, e.Level, e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out += fmt.Sprintf(" %s=%v", k, e.Fields[k])
	}

	if e.Caller != "" {
		out += " caller=" + e.Caller
	}
	return out
}

var global = New(LevelInfo, FormatJSON)

// Setup configures the global logger from level and format names
func Setup(level, format string) {
	f := FormatJSON
	if Format(format) == FormatText {
		f = FormatText
	}
	global = New(ParseLevel(level), f)
}

// Global returns the process-wide logger
func Global() *Logger {
	return global
}

type ctxKey struct{}

// IntoContext attaches a logger to the context
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the context's logger, or the global one
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return global
}

// Package-level helpers delegating to the global logger

func Debug(msg string)                          { global.log(LevelDebug, msg) }
func Debugf(format string, args ...interface{}) { global.log(LevelDebug, fmt.Sprintf(format, args...)) }
func Info(msg string)                           { global.log(LevelInfo, msg) }
func Infof(format string, args ...interface{})  { global.log(LevelInfo, fmt.Sprintf(format, args...)) }
func Warn(msg string)                           { global.log(LevelWarn, msg) }
func Warnf(format string, args ...interface{})  { global.log(LevelWarn, fmt.Sprintf(format, args...)) }
func Error(msg string)                          { global.log(LevelError, msg) }
func Errorf(format string, args ...interface{}) { global.log(LevelError, fmt.Sprintf(format, args...)) }

func Fatalf(format string, args ...interface{}) {
	global.log(LevelFatal, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func WithField(key string, value interface{}) *Logger { return global.WithField(key, value) }

func WithFields(fields map[string]interface{}) *Logger { return global.WithFields(fields) }

func WithError(err error) *Logger { return global.WithError(err) }

func WithComponent(name string) *Logger { return global.WithComponent(name) }
