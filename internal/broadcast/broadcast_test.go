package broadcast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"rcbot/internal/content"
	kit "rcbot/internal/transport"
	logx "rcbot/pkg/logx"
)

type fakeAdapter struct {
	mu       sync.Mutex
	sent     []string
	failN    int // fail the first failN sends
	attempts int
}

func (a *fakeAdapter) Start(context.Context, chan<- kit.Update) error { return nil }
func (a *fakeAdapter) Stop(context.Context) error                     { return nil }

func (a *fakeAdapter) SendText(_ context.Context, _ kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts++
	if a.failN > 0 {
		a.failN--
		return kit.MessageRef{}, errors.New("flood control")
	}
	a.sent = append(a.sent, text)
	return kit.MessageRef{ChatID: 1, MessageID: len(a.sent)}, nil
}

func (a *fakeAdapter) messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.sent...)
}

func sampleBundle() *content.Bundle {
	return &content.Bundle{
		Scope:     "extreme",
		Date:      "2026-08-31",
		Topic:     "Philosophy",
		Passage:   "A short passage about minds.",
		Questions: content.QuestionSet(4),
		Source:    "fallback",
	}
}

func TestMessagesOrdering(t *testing.T) {
	t.Parallel()
	b := sampleBundle()
	msgs := Messages(b, "Extreme")

	if len(msgs) != 5 {
		t.Fatalf("got %d messages, want 5", len(msgs))
	}
	if !strings.Contains(msgs[0], "Philosophy") || !strings.Contains(msgs[0], b.Passage) {
		t.Fatalf("first message is not the passage: %q", msgs[0])
	}
	if !strings.Contains(msgs[0], "Extreme") {
		t.Fatal("tier label missing from the header")
	}
	for i := 1; i < len(msgs); i++ {
		want := fmt.Sprintf("Q%d.", i)
		if !strings.Contains(msgs[i], want) {
			t.Fatalf("message %d does not carry %s: %q", i, want, msgs[i])
		}
	}
}

func TestMessagesEscapeHTML(t *testing.T) {
	t.Parallel()
	b := sampleBundle()
	b.Passage = "Socrates said x < y & y > z."
	msg := PassageMessage(b, "")
	if strings.Contains(msg, "x < y") {
		t.Fatal("passage not HTML-escaped")
	}
	if !strings.Contains(msg, "x &lt; y &amp; y &gt; z.") {
		t.Fatalf("unexpected escaping: %q", msg)
	}
}

func TestAnswerMessages(t *testing.T) {
	t.Parallel()
	b := sampleBundle()
	msgs := AnswerMessages(b)

	if len(msgs) != 5 {
		t.Fatalf("got %d messages, want 5", len(msgs))
	}
	for i, q := range b.Questions {
		msg := msgs[i+1]
		if !strings.Contains(msg, "Correct answer:</b> "+q.Correct) {
			t.Fatalf("answer %d missing correct label: %q", q.Number, msg)
		}
		if !strings.Contains(msg, "Why this is correct:") {
			t.Fatalf("answer %d missing rationale: %q", q.Number, msg)
		}
	}
}

func TestSenderDeliversInOrder(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{}
	s := NewSender(ad, Config{RatePerSec: 100, TierLabels: map[string]string{"extreme": "Extreme"}}, logx.Nop())

	if err := s.Send(context.Background(), sampleBundle(), kit.ChatTarget{ChatID: 1}); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	got := ad.messages()
	want := Messages(sampleBundle(), "Extreme")
	if len(got) != len(want) {
		t.Fatalf("sent %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message %d out of order", i)
		}
	}
}

func TestSenderRetriesTransientFailure(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{failN: 2}
	s := NewSender(ad, Config{RatePerSec: 100, RetryMax: 3}, logx.Nop())

	if err := s.Send(context.Background(), sampleBundle(), kit.ChatTarget{ChatID: 1}); err != nil {
		t.Fatalf("Send should recover from transient failures: %v", err)
	}
	if len(ad.messages()) != 5 {
		t.Fatalf("sent %d messages after retries, want 5", len(ad.messages()))
	}
}

func TestSenderGivesUpAfterRetries(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{failN: 100}
	s := NewSender(ad, Config{RatePerSec: 100, RetryMax: 1}, logx.Nop())

	err := s.Send(context.Background(), sampleBundle(), kit.ChatTarget{ChatID: 1})
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("Send = %v, want ErrDelivery", err)
	}
	if len(ad.messages()) != 0 {
		t.Fatal("messages sent despite persistent failure")
	}
}
