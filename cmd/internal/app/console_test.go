package app

import (
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerOutput(t *testing.T) {
	var buf strings.Builder
	log := slog.New(newConsoleHandler(&buf, slog.LevelInfo, false))

	log.Info("http.request",
		"method", "GET",
		"path", "/api/auth/users",
		"status", 418,
		"result", "client_error",
		"note", "two words")

	out := buf.String()
	for _, want := range []string{
		"INFO",
		"http.request",
		"method=GET",
		"path=/api/auth/users",
		"status=418",
		"result=client_error",
		`note="two words"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("color disabled but output has escape codes: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("record not newline-terminated: %q", out)
	}
}

func TestConsoleHandlerColor(t *testing.T) {
	var buf strings.Builder
	log := slog.New(newConsoleHandler(&buf, slog.LevelInfo, true))

	log.Error("boom", "status", 500)

	out := buf.String()
	if !strings.Contains(out, ansiRed+"ERROR"+ansiReset) {
		t.Errorf("error level not colorized: %q", out)
	}
	if !strings.Contains(out, ansiRed+"500"+ansiReset) {
		t.Errorf("5xx status not colorized: %q", out)
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf strings.Builder
	log := slog.New(newConsoleHandler(&buf, slog.LevelWarn, false))

	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info record not suppressed: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestConsoleHandlerWithAttrsAndGroup(t *testing.T) {
	var buf strings.Builder
	log := slog.New(newConsoleHandler(&buf, slog.LevelInfo, false))

	log.With("engine", "postgres").WithGroup("db").Info("connected", "conns", 8)

	out := buf.String()
	if !strings.Contains(out, "engine=postgres") {
		t.Errorf("bound attr missing: %q", out)
	}
	if !strings.Contains(out, "db.conns=8") {
		t.Errorf("group prefix missing: %q", out)
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"plain", "plain"},
		{"two words", `"two words"`},
		{`has"quote`, `"has\"quote"`},
		{"k=v", `"k=v"`},
	}
	for _, c := range cases {
		if got := quoteIfNeeded(c.in); got != c.want {
			t.Errorf("quoteIfNeeded(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewLoggerSelectsConsoleFormat(t *testing.T) {
	for _, format := range []string{"text", "console", "pretty", "json", ""} {
		cfg := Config{LogFormat: format, LogLevel: "info"}
		if log := NewLogger(cfg); log == nil {
			t.Errorf("NewLogger(%q) = nil", format)
		}
	}
}
