package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func levelString(l Level) string {
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

// ErrObj is attached to ERROR entries only.
type ErrObj struct {
	Msg string `json:"msg"`
}

// Entry is the fixed log schema every service line follows.
type Entry struct {
	Timestamp  string         `json:"timestamp"` // ISO 8601 (UTC)
	Level      string         `json:"level"`
	Service    string         `json:"service"`
	Action     string         `json:"action"` // event name, e.g. sample_ingested
	Message    string         `json:"message"`
	Hostname   string         `json:"hostname"`
	RequestID  string         `json:"request_id,omitempty"`
	VehicleID  string         `json:"vehicle_id,omitempty"`
	Error      *ErrObj        `json:"error,omitempty"`
	Additional map[string]any `json:"additional,omitempty"`
}

type Logger struct {
	service  string
	minLevel Level
	hostname string
	pretty   bool

	outWriter io.Writer
	errWriter io.Writer
	mu        sync.Mutex

	// optional dev file writers
	infoFile io.Closer
	errFile  io.Closer
}

// NewLogger returns a stdout-only logger at INFO level.
func NewLogger(service string) *Logger {
	h, _ := os.Hostname()
	return &Logger{
		service:   service,
		minLevel:  LevelInfo,
		hostname:  h,
		pretty:    strings.ToLower(os.Getenv("LOG_PRETTY")) == "true",
		outWriter: os.Stdout,
		errWriter: os.Stderr,
	}
}

// NewLoggerWithWriter directs every entry, error level included, to w.
// Tests use it to keep log lines out of the process streams.
func NewLoggerWithWriter(service string, w io.Writer) *Logger {
	l := NewLogger(service)
	l.outWriter = w
	l.errWriter = w
	return l
}

// NewLoggerWithOptions supports minLevel and an optional fileDir (dev).
// With fileDir set, entries are duplicated into info.log / error.log.
func NewLoggerWithOptions(service, minLevelStr, fileDir string) (*Logger, error) {
	l := NewLogger(service)
	l.minLevel = ParseLevel(minLevelStr)

	if fileDir != "" {
		if err := os.MkdirAll(fileDir, 0o755); err != nil {
			return nil, fmt.Errorf("create logs dir: %w", err)
		}
		infoF, err := os.OpenFile(filepath.Join(fileDir, "info.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, fmt.Errorf("open info log: %w", err)
		}
		errF, err := os.OpenFile(filepath.Join(fileDir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			infoF.Close()
			return nil, fmt.Errorf("open error log: %w", err)
		}
		l.outWriter = io.MultiWriter(os.Stdout, infoF)
		l.errWriter = io.MultiWriter(os.Stderr, errF)
		l.infoFile = infoF
		l.errFile = errF
	}
	return l, nil
}

func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.infoFile != nil {
		_ = l.infoFile.Close()
	}
	if l.errFile != nil {
		_ = l.errFile.Close()
	}
}

func (l *Logger) Debug(e Entry) { l.write(LevelDebug, e) }
func (l *Logger) Info(e Entry)  { l.write(LevelInfo, e) }
func (l *Logger) Warn(e Entry)  { l.write(LevelWarn, e) }
func (l *Logger) Error(e Entry) { l.write(LevelError, e) }

// Fatal logs at ERROR and exits.
func (l *Logger) Fatal(e Entry) {
	l.write(LevelError, e)
	os.Exit(1)
}

func (l *Logger) write(level Level, e Entry) {
	if level < l.minLevel {
		return
	}

	e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	e.Level = levelString(level)
	e.Service = l.service
	e.Hostname = l.hostname
	if level != LevelError {
		e.Error = nil
	}

	var b []byte
	var err error
	if l.pretty {
		b, err = json.MarshalIndent(e, "", "  ")
	} else {
		b, err = json.Marshal(e)
	}
	if err != nil {
		return
	}

	w := l.outWriter
	if level >= LevelError {
		w = l.errWriter
	}

	l.mu.Lock()
	_, _ = w.Write(append(b, '\n'))
	l.mu.Unlock()
}
