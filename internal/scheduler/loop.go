// Package scheduler drives the once-a-day broadcast: it watches the
// clock, and when the configured send time arrives it generates (or
// loads) the day's bundle, delivers it and marks the delivery done.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"rcbot/internal/content"
	"rcbot/internal/storage"
	kit "rcbot/internal/transport"
	logx "rcbot/pkg/logx"
)

// Clock abstracts time.Now so the loop is testable without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }

// ContentSource yields the bundle for a (scope, date) pair.
type ContentSource interface {
	Today(ctx context.Context, scope, date string) (*content.Bundle, error)
}

// Sender delivers a bundle to a chat target.
type Sender interface {
	Send(ctx context.Context, b *content.Bundle, target kit.ChatTarget) error
}

// DeliveryLog is the slice of the store the loop needs.
type DeliveryLog interface {
	AlreadySent(ctx context.Context, date string, target int64) (bool, error)
	RecordSent(ctx context.Context, rec storage.DeliveryRecord) error
}

type Config struct {
	// SendHour/SendMinute are the local send time in Location.
	SendHour   int
	SendMinute int
	Location   *time.Location
	// Tick is the poll interval; Tolerance is the half-width of the
	// window around the send instant in which a dispatch may fire.
	Tick      time.Duration
	Tolerance time.Duration

	Scope  string
	Target kit.ChatTarget
}

// Loop is the timed dispatcher. One Loop serves one target.
type Loop struct {
	cfg    Config
	store  DeliveryLog
	source ContentSource
	sender Sender
	clock  Clock
	log    logx.Logger
}

func NewLoop(cfg Config, store DeliveryLog, source ContentSource, sender Sender, log logx.Logger) *Loop {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Minute
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = time.Minute
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Loop{cfg: cfg, store: store, source: source, sender: sender, clock: SystemClock(), log: log}
}

// SetClock overrides the wall clock. Must be called before Run.
func (l *Loop) SetClock(c Clock) {
	if c != nil {
		l.clock = c
	}
}

// Run polls until ctx is cancelled. Dispatch failures are logged and
// retried on the next tick while the window is still open; a success
// is marked in the delivery log and never repeated for that day.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("scheduler started",
		logx.String("send_time", fmt.Sprintf("%02d:%02d", l.cfg.SendHour, l.cfg.SendMinute)),
		logx.String("tz", l.cfg.Location.String()),
		logx.Int64("chat_id", l.cfg.Target.ChatID))

	ticker := time.NewTicker(l.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := l.tick(ctx, l.clock.Now()); err != nil {
				l.log.Error("dispatch failed, will retry while window is open", logx.Err(err))
			}
		}
	}
}

// tick runs one poll step at the given instant.
func (l *Loop) tick(ctx context.Context, now time.Time) error {
	now = now.In(l.cfg.Location)
	sendAt := time.Date(now.Year(), now.Month(), now.Day(), l.cfg.SendHour, l.cfg.SendMinute, 0, 0, l.cfg.Location)

	diff := now.Sub(sendAt)
	if diff < -l.cfg.Tolerance || diff > l.cfg.Tolerance {
		return nil
	}
	return l.Dispatch(ctx, now)
}

// Dispatch performs one delivery attempt for the date of the given
// instant. It is a no-op when the delivery log already has a record
// for (date, target). The gap between a successful send and the
// RecordSent write means a crash in between can cause one duplicate
// delivery the next day the process restarts inside the window; that
// trade keeps missed days impossible without two-phase bookkeeping.
func (l *Loop) Dispatch(ctx context.Context, now time.Time) error {
	date := content.DateKey(now.In(l.cfg.Location))

	sent, err := l.store.AlreadySent(ctx, date, l.cfg.Target.ChatID)
	if err != nil {
		return fmt.Errorf("delivery check: %w", err)
	}
	if sent {
		return nil
	}

	bundle, err := l.source.Today(ctx, l.cfg.Scope, date)
	if err != nil {
		return fmt.Errorf("content for %s: %w", date, err)
	}

	if err := l.sender.Send(ctx, bundle, l.cfg.Target); err != nil {
		return err
	}

	rec := storage.DeliveryRecord{Date: date, Target: l.cfg.Target.ChatID, Topic: bundle.Topic, SentAt: l.clock.Now()}
	if err := l.store.RecordSent(ctx, rec); err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}

	l.log.Info("daily dispatch complete",
		logx.String("date", date), logx.String("topic", bundle.Topic),
		logx.Int64("chat_id", l.cfg.Target.ChatID))
	return nil
}
