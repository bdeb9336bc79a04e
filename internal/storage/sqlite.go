package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"rcbot/internal/content"
	logx "rcbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	s := &sqliteStore{db: db, log: log}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
	}
	return s, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) LoadBundle(ctx context.Context, date, scope string) (*content.Bundle, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM bundles WHERE date = ? AND scope = ?`, date, scope,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var b content.Bundle
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		// A corrupt row is a miss, not a fatal error: the caller will
		// regenerate and overwrite it.
		s.log.Warn("malformed bundle record, treating as absent",
			logx.String("date", date), logx.String("scope", scope), logx.Err(err))
		return nil, false, nil
	}
	return &b, true, nil
}

func (s *sqliteStore) SaveBundle(ctx context.Context, b *content.Bundle) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bundles(date, scope, payload, updated_at) VALUES(?,?,?,?)
		 ON CONFLICT(date, scope) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		b.Date, b.Scope, string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *sqliteStore) AlreadySent(ctx context.Context, date string, target int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM deliveries WHERE date = ? AND target = ?`, date, target,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return true, nil
}

func (s *sqliteStore) RecordSent(ctx context.Context, rec DeliveryRecord) error {
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now()
	}
	// First record wins; a duplicate call is a no-op.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries(date, target, topic, sent_at) VALUES(?,?,?,?)
		 ON CONFLICT(date, target) DO NOTHING`,
		rec.Date, rec.Target, nullStr(rec.Topic), rec.SentAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *sqliteStore) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	p := Profile{UserID: userID}
	var username, lastActive sql.NullString
	var firstSeen string
	err := s.db.QueryRowContext(ctx,
		`SELECT username, seen_count, answer_views, streak_days, last_active_date, first_seen
		 FROM profiles WHERE user_id = ?`, userID,
	).Scan(&username, &p.SeenCount, &p.AnswerViews, &p.StreakDays, &lastActive, &firstSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	p.Username = username.String
	p.LastActiveDate = lastActive.String
	if t, perr := time.Parse(time.RFC3339Nano, firstSeen); perr == nil {
		p.FirstSeen = t
	}
	return p, nil
}

func (s *sqliteStore) PutProfile(ctx context.Context, p Profile) error {
	if p.FirstSeen.IsZero() {
		p.FirstSeen = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles(user_id, username, seen_count, answer_views, streak_days, last_active_date, first_seen)
		 VALUES(?,?,?,?,?,?,?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   username=excluded.username, seen_count=excluded.seen_count,
		   answer_views=excluded.answer_views, streak_days=excluded.streak_days,
		   last_active_date=excluded.last_active_date`,
		p.UserID, nullStr(p.Username), p.SeenCount, p.AnswerViews, p.StreakDays,
		nullStr(p.LastActiveDate), p.FirstSeen.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *sqliteStore) AppendFeedback(ctx context.Context, e FeedbackEntry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback(at, user_id, username, text) VALUES(?,?,?,?)`,
		e.At.UTC().Format(time.RFC3339Nano), e.UserID, nullStr(e.Username), e.Text,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *sqliteStore) PruneBefore(ctx context.Context, cutoffDate string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bundles WHERE date < ?`, cutoffDate); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE date < ?`, cutoffDate); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
