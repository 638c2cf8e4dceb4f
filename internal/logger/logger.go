// Package logger provides a simple leveled logging interface for rtop
// components. The dashboard owns the terminal, so the default sink is a
// size-rotated file rather than stdout or stderr.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Level is a log severity threshold. Messages below the threshold are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps config names (ERROR, WARNING, INFO, DEBUG) to a Level.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARNING", "WARN":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	default:
		return LevelWarn, false
	}
}

// String returns the label written in front of each message.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// Rotation limits for the file sink.
const (
	MaxLogBytes   = 1 << 20
	MaxLogBackups = 4
)

// LevelLogger writes messages at or above a threshold to a stdlib log.Logger.
type LevelLogger struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
	file  io.Closer
}

// New creates a logger writing to w with the given threshold.
func New(w io.Writer, level Level) *LevelLogger {
	return &LevelLogger{
		level: level,
		out:   log.New(w, "", 0),
	}
}

// OpenFile opens (and rotates if needed) the log file at path.
// The returned logger must be closed with Close.
func OpenFile(path string, level Level) (*LevelLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := rotate(path, MaxLogBytes, MaxLogBackups); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := New(f, level)
	l.file = f
	return l, nil
}

// rotate shifts path to path.1 .. path.N when it has grown past maxBytes.
func rotate(path string, maxBytes int64, backups int) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() < maxBytes {
		return nil
	}
	for i := backups - 1; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", path, i)
		if _, err := os.Stat(src); err == nil {
			if err := os.Rename(src, fmt.Sprintf("%s.%d", path, i+1)); err != nil {
				return err
			}
		}
	}
	return os.Rename(path, path+".1")
}

// SetLevel changes the threshold, e.g. when --debug overrides the config.
func (l *LevelLogger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Close releases the underlying file, if any.
func (l *LevelLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *LevelLogger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	ts := timeNow().Format("02/01/06 (15:04:05)")
	l.out.Printf("%s | %s: %s", ts, level, fmt.Sprintf(format, args...))
}

func (l *LevelLogger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *LevelLogger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *LevelLogger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

func (l *LevelLogger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// Safe for use from the collector goroutine and the test goroutine at once.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
	l.mu.Unlock()
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the captured messages.
func (l *BufferLogger) Snapshot() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogMessage(nil), l.Messages...)
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	l.Messages = l.Messages[:0]
	l.mu.Unlock()
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = Noop()
)

// Default returns the process-wide logger. It discards messages until
// SetDefault installs a real sink during startup.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}
