package logx

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFieldHelpers(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	zl := zerolog.New(&buf)

	e := zl.Info()
	for _, f := range []Field{
		String("s", "v"),
		Int("i", -1),
		Int64("i64", -2),
		Uint64("u64", 3),
		Bool("b", true),
		Duration("d", time.Second),
	} {
		f(e)
	}
	e.Msg("fields")

	line := buf.String()
	for _, want := range []string{`"s":"v"`, `"i":-1`, `"i64":-2`, `"u64":3`, `"b":true`} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %s in %q", want, line)
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.raw, zerolog.InfoLevel); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFormatTelegramLine(t *testing.T) {
	t.Parallel()
	line := []byte(`{"level":"warn","time":"x","message":"send failed","chat_id":42}`)
	got := formatTelegramLine(line)
	if !strings.HasPrefix(got, "[WARN] send failed") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "chat_id=42") {
		t.Fatalf("field missing: %q", got)
	}
	if strings.Contains(got, "time=") {
		t.Fatalf("timestamp should be dropped: %q", got)
	}
}

func TestFormatTelegramLineNonJSON(t *testing.T) {
	t.Parallel()
	if got := formatTelegramLine([]byte("  plain line\n")); got != "plain line" {
		t.Fatalf("non-JSON passthrough = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	if got := truncate("abcdef", 0); got != "abcdef" {
		t.Fatalf("maxN=0 must not truncate: %q", got)
	}
	if got := truncate("abcdef", 6); got != "abcdef" {
		t.Fatalf("exact fit truncated: %q", got)
	}
	long := strings.Repeat("x", 100)
	got := truncate(long, 20)
	if len(got) != 20 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncate = %q", got)
	}
}

func TestZeroLoggerIsSafe(t *testing.T) {
	t.Parallel()
	var l Logger
	if !l.IsZero() {
		t.Fatal("zero value not reported as zero")
	}
	l.Info("must not panic", String("k", "v"))
	l.With(Int("n", 1)).Error("still fine", Err(nil))

	n := Nop()
	if n.IsZero() {
		t.Fatal("Nop must be a usable non-zero logger")
	}
	n.Warn("silent")
}
