package telegram

import (
	"strings"
	"testing"

	logx "rcbot/pkg/logx"
)

func TestSplitTelegramTextShort(t *testing.T) {
	t.Parallel()
	got := splitTelegramText("hello", 100, "")
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("unexpected split: %v", got)
	}
}

func TestSplitTelegramTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("0123456789\n", 30)
	chunks := splitTelegramText(text, 100, "")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > 100 {
			t.Fatalf("chunk %d exceeds limit: %d runes", i, len([]rune(c)))
		}
		if strings.HasSuffix(c, "\n") {
			t.Fatalf("chunk %d ends with newline", i)
		}
	}
	if joined := strings.Join(chunks, "\n") + "\n"; joined != text {
		t.Fatalf("content lost in split:\n%q\nwant\n%q", joined, text)
	}
}

func TestSplitTelegramTextAvoidsHTMLTagCut(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("x", 95) + "<b>bold</b>"
	for _, c := range splitTelegramText(text, 100, "HTML") {
		open := strings.Count(c, "<")
		closed := strings.Count(c, ">")
		if open != closed {
			t.Fatalf("chunk splits inside a tag: %q", c)
		}
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{Token: "  "}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}
