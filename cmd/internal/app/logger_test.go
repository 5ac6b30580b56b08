package app

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		got := parseLogLevel(tc.in)
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_FormatSelection(t *testing.T) {
	jsonLog := NewLogger("info", "json")
	if _, ok := jsonLog.Handler().(*slog.JSONHandler); !ok {
		t.Fatalf("format=json: handler is %T, want *slog.JSONHandler", jsonLog.Handler())
	}

	prettyLog := NewLogger("info", "pretty")
	if _, ok := prettyLog.Handler().(*prettyHandler); !ok {
		t.Fatalf("format=pretty: handler is %T, want *prettyHandler", prettyLog.Handler())
	}

	// Unknown formats fall back to pretty rather than failing startup.
	fallback := NewLogger("info", "")
	if _, ok := fallback.Handler().(*prettyHandler); !ok {
		t.Fatalf("format=\"\": handler is %T, want *prettyHandler", fallback.Handler())
	}
}

func TestNewLogger_LevelGate(t *testing.T) {
	log := NewLogger("warn", "json")
	if log.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("level=warn: info should be disabled")
	}
	if !log.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("level=warn: warn should be enabled")
	}
}
