package storage

import (
	"context"
	"errors"
	"time"

	"rcbot/internal/content"
)

// ErrUnavailable means the persistence layer itself is unreachable
// (disk/filesystem/database error). Fatal to the calling operation and
// never silently swallowed. A missing or malformed record is NOT this
// error; it is reported as explicit absence.
var ErrUnavailable = errors.New("storage unavailable")

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file (default)
//   - "file":   per-record JSON files under a directory
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// DeliveryRecord marks the daily broadcast as done for a target.
// At most one record exists per (date, target).
type DeliveryRecord struct {
	Date   string    `json:"date"`
	Target int64     `json:"target"`
	Topic  string    `json:"topic,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Profile holds per-user practice counters. Append/update only; not
// part of the core delivery invariants.
type Profile struct {
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username,omitempty"`
	SeenCount      int       `json:"seen_count"`
	AnswerViews    int       `json:"answer_views"`
	StreakDays     int       `json:"streak_days"`
	LastActiveDate string    `json:"last_active_date,omitempty"`
	FirstSeen      time.Time `json:"first_seen"`
}

// FeedbackEntry is one user feedback message, append-only.
type FeedbackEntry struct {
	At       time.Time `json:"at"`
	UserID   int64     `json:"user_id"`
	Username string    `json:"username,omitempty"`
	Text     string    `json:"text"`
}

// Store is the persistence API shared by the interactive and scheduled
// paths. The scheduler path exclusively owns the delivery log; the
// interactive path never writes it.
type Store interface {
	content.Store

	AlreadySent(ctx context.Context, date string, target int64) (bool, error)
	RecordSent(ctx context.Context, rec DeliveryRecord) error

	GetProfile(ctx context.Context, userID int64) (Profile, error)
	PutProfile(ctx context.Context, p Profile) error

	AppendFeedback(ctx context.Context, e FeedbackEntry) error

	// PruneBefore removes bundles and delivery records dated strictly
	// before cutoffDate ("2006-01-02"). Profiles are kept.
	PruneBefore(ctx context.Context, cutoffDate string) error

	Close() error
}
