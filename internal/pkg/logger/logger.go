// Package logger provides leveled structured logging with PII redaction.
//
// Call sites pass a message followed by alternating key/value pairs:
//
//	logger.Info("batch uploaded", "audience_id", id, "batch_seq", 2)
//
// Output is produced by zerolog; Init selects JSON or console rendering.
package logger

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the process-wide logger.
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json or console
	Output    io.Writer
	RedactPII bool
}

// Logger wraps a zerolog.Logger with key/value helpers and optional PII redaction.
type Logger struct {
	zl        zerolog.Logger
	redactPII bool
}

var (
	mu             sync.RWMutex
	timeFormatOnce sync.Once
	defaultLogger  = newLogger(Config{Level: "info", Format: "json", Output: os.Stderr, RedactPII: true})
)

// Init replaces the default logger. Safe to call more than once.
func Init(cfg Config) {
	l := newLogger(cfg)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

func newLogger(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	// zerolog reads TimeFieldFormat on every event; set it only once.
	timeFormatOnce.Do(func() { zerolog.TimeFieldFormat = time.RFC3339 })
	zl := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return &Logger{zl: zl, redactPII: cfg.RedactPII}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Default returns the process-wide logger.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Zerolog exposes the underlying zerolog logger for middleware that needs it.
func Zerolog() zerolog.Logger { return Default().zl }

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { Default().log(zerolog.DebugLevel, msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { Default().log(zerolog.InfoLevel, msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { Default().log(zerolog.WarnLevel, msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { Default().log(zerolog.ErrorLevel, msg, fields...) }

func (l *Logger) log(level zerolog.Level, msg string, fields ...interface{}) {
	ev := l.zl.WithLevel(level)
	if ev == nil {
		return
	}

	// Parse key-value pairs from fields
	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		switch v := fields[i+1].(type) {
		case error:
			ev = ev.Str(key, l.redact(key, v.Error()))
		case int:
			ev = ev.Int(key, v)
		case int64:
			ev = ev.Int64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Str(key, l.redact(key, fmt.Sprintf("%v", v)))
		}
	}
	ev.Msg(msg)
}

func (l *Logger) redact(key, val string) string {
	if !l.redactPII {
		return val
	}
	return redactPIIValue(key, val)
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "email") {
		return RedactEmail(val)
	}
	if strings.Contains(key, "phone") {
		return RedactPhone(val)
	}
	// Redact any embedded emails in generic fields
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
