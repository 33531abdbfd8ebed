// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/local-ca/src/internal/helper/gc"
)

// DefaultFilePath is where the daemon appends its log when LOG_FILE_PATH is unset.
const DefaultFilePath = "./local.log"

// ErrUnknownLevel is returned by ParseLevel for unrecognized level names.
var ErrUnknownLevel = errors.New("logger: unknown level")

// Level is a log severity.
type Level int

const (
	// LevelDebug is for step-by-step tracing of backend calls.
	LevelDebug Level = iota
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarn reports recoverable conditions.
	LevelWarn
	// LevelError reports failures that stop the daemon.
	LevelError
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel converts a case-insensitive level name to a Level.
// "warning" is accepted as an alias of "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// Logger defines the interface for logging operations.
// It provides methods for different log levels and formatted output.
//
// Printf and Println log at info level and are kept so the daemon and
// one-shot commands can share the same call sites.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)

	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// DaemonLogger writes human-readable, timestamped lines to every configured sink.
//
// DaemonLogger is safe for concurrent use by multiple goroutines.
type DaemonLogger struct {
	mu     sync.Mutex
	logger *log.Logger
	level  Level
}

// NewDaemonLogger creates a text logger that fans out to all writers.
// With no writers it logs to stderr.
func NewDaemonLogger(level Level, writers ...io.Writer) *DaemonLogger {
	return &DaemonLogger{
		logger: log.New(fanOut(writers), "", log.LstdFlags),
		level:  level,
	}
}

// NewCLILogger creates a logger for user-facing command output: stdout,
// no timestamps.
func NewCLILogger() *DaemonLogger {
	return &DaemonLogger{
		logger: log.New(os.Stdout, "", 0),
		level:  LevelInfo,
	}
}

func (d *DaemonLogger) output(level Level, msg string) {
	if level < d.level {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger.Printf("%-5s %s", level, msg)
}

// Printf formats and prints a log message at info level.
func (d *DaemonLogger) Printf(format string, v ...any) { d.Infof(format, v...) }

// Println prints a log message at info level.
func (d *DaemonLogger) Println(v ...any) { d.output(LevelInfo, strings.TrimSuffix(fmt.Sprintln(v...), "\n")) }

// Debugf logs at debug level.
func (d *DaemonLogger) Debugf(format string, v ...any) { d.output(LevelDebug, fmt.Sprintf(format, v...)) }

// Infof logs at info level.
func (d *DaemonLogger) Infof(format string, v ...any) { d.output(LevelInfo, fmt.Sprintf(format, v...)) }

// Warnf logs at warn level.
func (d *DaemonLogger) Warnf(format string, v ...any) { d.output(LevelWarn, fmt.Sprintf(format, v...)) }

// Errorf logs at error level.
func (d *DaemonLogger) Errorf(format string, v ...any) { d.output(LevelError, fmt.Sprintf(format, v...)) }

// SetOutput replaces every sink with w.
func (d *DaemonLogger) SetOutput(w io.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger.SetOutput(fanOut([]io.Writer{w}))
}

// JSONLogger writes one JSON object per line to every configured sink.
// It can be silenced, in which case nothing is written at all.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
	silent bool
	now    func() time.Time
}

// NewJSONLogger creates a structured logger that fans out to all writers.
func NewJSONLogger(level Level, writers ...io.Writer) *JSONLogger {
	return &JSONLogger{
		writer: fanOut(writers),
		level:  level,
		now:    time.Now,
	}
}

// NewSilentLogger returns a JSONLogger that discards everything.
func NewSilentLogger() *JSONLogger {
	return &JSONLogger{writer: io.Discard, silent: true, now: time.Now}
}

type entry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (j *JSONLogger) output(level Level, msg string) {
	if j.silent || level < j.level {
		return
	}

	e := entry{
		Time:    j.now().UTC().Format(time.RFC3339),
		Level:   strings.ToLower(level.String()),
		Message: msg,
	}

	_ = gc.With(func(buf gc.Buffer) error {
		// Encode appends the trailing newline.
		if err := json.NewEncoder(buf).Encode(e); err != nil {
			return err
		}

		j.mu.Lock()
		defer j.mu.Unlock()
		_, err := buf.WriteTo(j.writer)
		return err
	})
}

// Printf formats and logs a structured message at info level.
func (j *JSONLogger) Printf(format string, v ...any) { j.Infof(format, v...) }

// Println logs a structured message at info level.
func (j *JSONLogger) Println(v ...any) { j.output(LevelInfo, strings.TrimSuffix(fmt.Sprintln(v...), "\n")) }

// Debugf logs at debug level.
func (j *JSONLogger) Debugf(format string, v ...any) { j.output(LevelDebug, fmt.Sprintf(format, v...)) }

// Infof logs at info level.
func (j *JSONLogger) Infof(format string, v ...any) { j.output(LevelInfo, fmt.Sprintf(format, v...)) }

// Warnf logs at warn level.
func (j *JSONLogger) Warnf(format string, v ...any) { j.output(LevelWarn, fmt.Sprintf(format, v...)) }

// Errorf logs at error level.
func (j *JSONLogger) Errorf(format string, v ...any) { j.output(LevelError, fmt.Sprintf(format, v...)) }

// SetOutput replaces every sink with w. A nil writer discards output.
func (j *JSONLogger) SetOutput(w io.Writer) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if w == nil {
		j.writer = io.Discard
	} else {
		j.writer = w
	}
}

// New builds a Logger for the given format ("text" or "json").
func New(format string, level Level, writers ...io.Writer) Logger {
	if strings.EqualFold(format, "json") {
		return NewJSONLogger(level, writers...)
	}
	return NewDaemonLogger(level, writers...)
}

// OpenFileSink opens path for appending, creating it and its parent
// directory when missing.
func OpenFileSink(path string) (*os.File, error) {
	if path == "" {
		path = DefaultFilePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func fanOut(writers []io.Writer) io.Writer {
	var ws []io.Writer
	for _, w := range writers {
		if w != nil {
			ws = append(ws, w)
		}
	}

	switch len(ws) {
	case 0:
		return os.Stderr
	case 1:
		return ws[0]
	default:
		return io.MultiWriter(ws...)
	}
}
