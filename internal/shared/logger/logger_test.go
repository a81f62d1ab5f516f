package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriterLoggerCapturesAllLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("logger-test", &buf)
	l.minLevel = LevelDebug

	l.Debug(Entry{Action: "debug_event", Message: "d"})
	l.Info(Entry{Action: "info_event", Message: "i"})
	l.Error(Entry{Action: "error_event", Message: "e", Error: &ErrObj{Msg: "boom"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var e Entry
	if err := json.Unmarshal([]byte(lines[2]), &e); err != nil {
		t.Fatalf("unmarshal error line: %v", err)
	}
	if e.Level != "ERROR" || e.Action != "error_event" || e.Service != "logger-test" {
		t.Errorf("error entry = %+v", e)
	}
	if e.Error == nil || e.Error.Msg != "boom" {
		t.Errorf("error object not carried: %+v", e.Error)
	}
}

func TestErrorObjectStrippedBelowErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("logger-test", &buf)

	l.Info(Entry{Action: "info_event", Error: &ErrObj{Msg: "must not appear"}})

	var e Entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Error != nil {
		t.Errorf("INFO entry carries error object: %+v", e.Error)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"DEBUG":  LevelDebug,
		"debug":  LevelDebug,
		" warn ": LevelWarn,
		"ERROR":  LevelError,
		"INFO":   LevelInfo,
		"bogus":  LevelInfo,
		"":       LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
