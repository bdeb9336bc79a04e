package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rcbot/internal/content"
	logx "rcbot/pkg/logx"
)

func openTestStore(t *testing.T, driver string) Store {
	t.Helper()
	cfg := Config{Driver: driver}
	switch driver {
	case "sqlite":
		cfg.Path = filepath.Join(t.TempDir(), "test.db")
	case "file":
		cfg.Path = t.TempDir()
	}
	s, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("Open(%s) error: %v", driver, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleBundle(date, scope string) *content.Bundle {
	return &content.Bundle{
		Scope:       scope,
		Date:        date,
		Topic:       "Philosophy",
		Passage:     "A short passage.",
		Questions:   content.QuestionSet(4),
		Source:      "fallback",
		GeneratedAt: time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC),
	}
}

func forEachDriver(t *testing.T, fn func(t *testing.T, s Store)) {
	for _, driver := range []string{"sqlite", "file"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			fn(t, openTestStore(t, driver))
		})
	}
}

func TestBundleRoundTrip(t *testing.T) {
	t.Parallel()
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		if _, ok, err := s.LoadBundle(ctx, "2026-08-31", "extreme"); err != nil || ok {
			t.Fatalf("empty store: ok=%v err=%v", ok, err)
		}

		want := sampleBundle("2026-08-31", "extreme")
		if err := s.SaveBundle(ctx, want); err != nil {
			t.Fatalf("SaveBundle error: %v", err)
		}

		got, ok, err := s.LoadBundle(ctx, "2026-08-31", "extreme")
		if err != nil || !ok {
			t.Fatalf("LoadBundle: ok=%v err=%v", ok, err)
		}
		if got.Topic != want.Topic || got.Passage != want.Passage || len(got.Questions) != 4 {
			t.Fatalf("round trip mismatch: %+v", got)
		}

		// Different scope on the same date is a distinct key.
		if _, ok, _ := s.LoadBundle(ctx, "2026-08-31", "standard"); ok {
			t.Fatal("scope leaked across keys")
		}
	})
}

func TestMalformedBundleIsMiss(t *testing.T) {
	t.Parallel()

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t, "sqlite")
		ss := s.(*sqliteStore)
		if _, err := ss.db.Exec(
			`INSERT INTO bundles(date, scope, payload, updated_at) VALUES(?,?,?,?)`,
			"2026-08-31", "extreme", "{not json", "2026-08-31T00:00:00Z",
		); err != nil {
			t.Fatalf("seed corrupt row: %v", err)
		}

		_, ok, err := s.LoadBundle(context.Background(), "2026-08-31", "extreme")
		if err != nil {
			t.Fatalf("corrupt record must not be an error: %v", err)
		}
		if ok {
			t.Fatal("corrupt record reported as a hit")
		}
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		s, err := Open(Config{Driver: "file", Path: dir}, logx.Nop())
		if err != nil {
			t.Fatalf("Open error: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })

		path := filepath.Join(dir, "bundles", "2026-08-31_extreme.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatalf("seed corrupt file: %v", err)
		}

		_, ok, err := s.LoadBundle(context.Background(), "2026-08-31", "extreme")
		if err != nil {
			t.Fatalf("corrupt record must not be an error: %v", err)
		}
		if ok {
			t.Fatal("corrupt record reported as a hit")
		}
	})
}

func TestDeliveryLog(t *testing.T) {
	t.Parallel()
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		sent, err := s.AlreadySent(ctx, "2026-08-31", 42)
		if err != nil || sent {
			t.Fatalf("fresh log: sent=%v err=%v", sent, err)
		}

		rec := DeliveryRecord{Date: "2026-08-31", Target: 42, Topic: "Philosophy", SentAt: time.Now()}
		if err := s.RecordSent(ctx, rec); err != nil {
			t.Fatalf("RecordSent error: %v", err)
		}
		if sent, _ := s.AlreadySent(ctx, "2026-08-31", 42); !sent {
			t.Fatal("delivery not recorded")
		}

		// Duplicate record is a silent no-op; the first record wins.
		dup := rec
		dup.Topic = "Sociology"
		if err := s.RecordSent(ctx, dup); err != nil {
			t.Fatalf("duplicate RecordSent error: %v", err)
		}

		// A different target on the same date is untouched.
		if sent, _ := s.AlreadySent(ctx, "2026-08-31", 43); sent {
			t.Fatal("delivery leaked across targets")
		}
	})
}

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		p, err := s.GetProfile(ctx, 7)
		if err != nil {
			t.Fatalf("GetProfile error: %v", err)
		}
		if p.UserID != 7 || p.SeenCount != 0 {
			t.Fatalf("missing profile should be zero valued: %+v", p)
		}

		p.Username = "reader"
		p.SeenCount = 3
		p.AnswerViews = 1
		p.StreakDays = 2
		p.LastActiveDate = "2026-08-31"
		p.FirstSeen = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		if err := s.PutProfile(ctx, p); err != nil {
			t.Fatalf("PutProfile error: %v", err)
		}

		got, err := s.GetProfile(ctx, 7)
		if err != nil {
			t.Fatalf("GetProfile (stored) error: %v", err)
		}
		if got.Username != "reader" || got.SeenCount != 3 || got.AnswerViews != 1 ||
			got.StreakDays != 2 || got.LastActiveDate != "2026-08-31" {
			t.Fatalf("profile round trip mismatch: %+v", got)
		}
	})
}

func TestAppendFeedback(t *testing.T) {
	t.Parallel()
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			e := FeedbackEntry{At: time.Now(), UserID: int64(i), Username: "u", Text: "more sociology please"}
			if err := s.AppendFeedback(ctx, e); err != nil {
				t.Fatalf("AppendFeedback error: %v", err)
			}
		}
	})
}

func TestPruneBefore(t *testing.T) {
	t.Parallel()
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		for _, date := range []string{"2026-05-01", "2026-08-30", "2026-08-31"} {
			if err := s.SaveBundle(ctx, sampleBundle(date, "extreme")); err != nil {
				t.Fatalf("SaveBundle(%s) error: %v", date, err)
			}
			if err := s.RecordSent(ctx, DeliveryRecord{Date: date, Target: 42, SentAt: time.Now()}); err != nil {
				t.Fatalf("RecordSent(%s) error: %v", date, err)
			}
		}

		if err := s.PruneBefore(ctx, "2026-08-30"); err != nil {
			t.Fatalf("PruneBefore error: %v", err)
		}

		if _, ok, _ := s.LoadBundle(ctx, "2026-05-01", "extreme"); ok {
			t.Fatal("old bundle survived pruning")
		}
		if sent, _ := s.AlreadySent(ctx, "2026-05-01", 42); sent {
			t.Fatal("old delivery record survived pruning")
		}
		for _, date := range []string{"2026-08-30", "2026-08-31"} {
			if _, ok, _ := s.LoadBundle(ctx, date, "extreme"); !ok {
				t.Fatalf("bundle for %s was pruned", date)
			}
			if sent, _ := s.AlreadySent(ctx, date, 42); !sent {
				t.Fatalf("delivery for %s was pruned", date)
			}
		}
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "etcd", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
