// Package broadcast turns a content bundle into the ordered message
// sequence and delivers it through the transport adapter.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"rcbot/internal/content"
	kit "rcbot/internal/transport"
	logx "rcbot/pkg/logx"
)

// ErrDelivery means the bundle could not be delivered after retries.
// Recoverable: the scheduler leaves the delivery unmarked so the next
// tick within the window retries.
var ErrDelivery = errors.New("delivery failed")

type Config struct {
	// RatePerSec caps outgoing messages (Telegram throttles bursts).
	RatePerSec int
	// RetryMax is the per-message retry count on transport errors.
	RetryMax int
	// TierLabels maps scope -> human-readable difficulty label.
	TierLabels map[string]string
}

// Sender delivers bundles. Safe for concurrent use.
type Sender struct {
	adapter kit.Adapter
	limiter *rate.Limiter
	retry   int
	labels  map[string]string
	log     logx.Logger
}

func NewSender(adapter kit.Adapter, cfg Config, log logx.Logger) *Sender {
	if log.IsZero() {
		log = logx.Nop()
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	retry := cfg.RetryMax
	if retry < 0 {
		retry = 0
	}
	return &Sender{
		adapter: adapter,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		retry:   retry,
		labels:  cfg.TierLabels,
		log:     log,
	}
}

// Send delivers the bundle to the target: passage message first, then
// questions 1..N in ascending number. The ordering is a compatibility
// contract. A failure part-way leaves the target with a prefix of the
// sequence; the caller must not mark the delivery done.
func (s *Sender) Send(ctx context.Context, b *content.Bundle, target kit.ChatTarget) error {
	msgs := Messages(b, s.labels[b.Scope])
	for i, msg := range msgs {
		if err := s.sendOne(ctx, target, msg); err != nil {
			s.log.Warn("broadcast aborted",
				logx.Int64("chat_id", target.ChatID), logx.String("date", b.Date),
				logx.Int("sent", i), logx.Int("total", len(msgs)), logx.Err(err))
			return fmt.Errorf("%w: message %d/%d: %v", ErrDelivery, i+1, len(msgs), err)
		}
	}
	s.log.Info("bundle delivered",
		logx.Int64("chat_id", target.ChatID), logx.String("date", b.Date),
		logx.String("scope", b.Scope), logx.Int("messages", len(msgs)))
	return nil
}

func (s *Sender) sendOne(ctx context.Context, target kit.ChatTarget, text string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	opt := &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}

	var last error
	for attempt := 0; attempt <= s.retry; attempt++ {
		_, err := s.adapter.SendText(ctx, target, text, opt)
		if err == nil {
			return nil
		}
		last = err
		if attempt == s.retry {
			break
		}
		delay := time.Duration(200+100*attempt) * time.Millisecond
		s.log.Debug("send retry scheduled",
			logx.Int64("chat_id", target.ChatID), logx.Int("attempt", attempt+2),
			logx.Duration("delay", delay), logx.Err(err))
		tmr := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			if !tmr.Stop() {
				<-tmr.C
			}
			return ctx.Err()
		case <-tmr.C:
		}
	}
	return last
}
