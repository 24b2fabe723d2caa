package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":  DEBUG,
		"INFO":   INFO,
		" warn ": WARN,
		"error":  ERROR,
		"bogus":  WARN,
		"":       WARN,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func captureGlobal(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetWriter(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetLevel(WARN)
		SetColor(false)
		SetWriter(os.Stderr)
	})
	return &buf
}

func TestLoggerThreshold(t *testing.T) {
	buf := captureGlobal(t, WARN)

	Debug("hidden %d", 1)
	Info("hidden %d", 2)
	Warn("shown %d", 3)
	Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN  shown 3") {
		t.Errorf("expected warn line, got %q", out)
	}
	if !strings.Contains(out, "ERROR shown 4") {
		t.Errorf("expected error line, got %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("expected no color codes, got %q", out)
	}
}

func TestGlobalLoggerDebug(t *testing.T) {
	buf := captureGlobal(t, DEBUG)

	Debug("cache %s", "miss")
	if !strings.Contains(buf.String(), "DEBUG cache miss") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestLoggerColor(t *testing.T) {
	buf := captureGlobal(t, DEBUG)
	SetColor(true)

	Warn("slow")
	Error("broken")

	out := buf.String()
	if !strings.Contains(out, colorYellow+"WARN ") {
		t.Errorf("expected yellow warn level, got %q", out)
	}
	if !strings.Contains(out, colorRed+"ERROR") {
		t.Errorf("expected red error level, got %q", out)
	}
	if !strings.Contains(out, colorReset+" broken") {
		t.Errorf("expected reset before message, got %q", out)
	}
}
