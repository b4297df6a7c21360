package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn)

	logger.Info("Group created", "group_id", "g1")
	logger.Warn("Saving item failed", "group_id", "g1")

	out := buf.String()
	if strings.Contains(out, "Group created") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "Saving item failed") || !strings.Contains(out, "group_id=g1") {
		t.Errorf("expected warn record with attrs, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no color codes when writing to a buffer: %q", out)
	}
}
