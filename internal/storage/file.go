package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"rcbot/internal/content"
	logx "rcbot/pkg/logx"
)

// fileStore is a dependency-free persistence backend: one JSON file per
// record, written atomically via tmp+rename.
//
// Layout under cfg.Path:
//
//	bundles/<date>_<scope>.json
//	deliveries/<date>_<target>.json
//	profiles/<user_id>.json
//	feedback.jsonl (append-only)
type fileStore struct {
	log logx.Logger
	dir string

	mu           sync.Mutex
	feedbackFile *os.File
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	dir := strings.TrimSpace(cfg.Path)
	if dir == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	for _, sub := range []string{"bundles", "deliveries", "profiles"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	ff, err := os.OpenFile(filepath.Join(dir, "feedback.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &fileStore{log: log, dir: dir, feedbackFile: ff}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedbackFile != nil {
		err := s.feedbackFile.Close()
		s.feedbackFile = nil
		return err
	}
	return nil
}

func (s *fileStore) bundlePath(date, scope string) string {
	return filepath.Join(s.dir, "bundles", date+"_"+sanitize(scope)+".json")
}

func (s *fileStore) deliveryPath(date string, target int64) string {
	return filepath.Join(s.dir, "deliveries", date+"_"+strconv.FormatInt(target, 10)+".json")
}

func (s *fileStore) profilePath(userID int64) string {
	return filepath.Join(s.dir, "profiles", strconv.FormatInt(userID, 10)+".json")
}

func (s *fileStore) LoadBundle(ctx context.Context, date, scope string) (*content.Bundle, bool, error) {
	_ = ctx
	b, err := os.ReadFile(s.bundlePath(date, scope))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var out content.Bundle
	if err := json.Unmarshal(b, &out); err != nil {
		s.log.Warn("malformed bundle record, treating as absent",
			logx.String("date", date), logx.String("scope", scope), logx.Err(err))
		return nil, false, nil
	}
	return &out, true, nil
}

func (s *fileStore) SaveBundle(ctx context.Context, b *content.Bundle) error {
	_ = ctx
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	return s.writeAtomic(s.bundlePath(b.Date, b.Scope), payload)
}

func (s *fileStore) AlreadySent(ctx context.Context, date string, target int64) (bool, error) {
	_ = ctx
	_, err := os.Stat(s.deliveryPath(date, target))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return true, nil
}

func (s *fileStore) RecordSent(ctx context.Context, rec DeliveryRecord) error {
	_ = ctx
	path := s.deliveryPath(rec.Date, rec.Target)
	// First record wins.
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal delivery record: %w", err)
	}
	return s.writeAtomic(path, payload)
}

func (s *fileStore) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	_ = ctx
	p := Profile{UserID: userID}
	b, err := os.ReadFile(s.profilePath(userID))
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(b, &p); err != nil {
		s.log.Warn("malformed profile record, starting fresh", logx.Int64("user_id", userID), logx.Err(err))
		return Profile{UserID: userID}, nil
	}
	return p, nil
}

func (s *fileStore) PutProfile(ctx context.Context, p Profile) error {
	_ = ctx
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.writeAtomic(s.profilePath(p.UserID), payload)
}

func (s *fileStore) AppendFeedback(ctx context.Context, e FeedbackEntry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedbackFile == nil {
		return fmt.Errorf("%w: feedback file closed", ErrUnavailable)
	}
	if err := json.NewEncoder(s.feedbackFile).Encode(e); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *fileStore) PruneBefore(ctx context.Context, cutoffDate string) error {
	_ = ctx
	for _, sub := range []string{"bundles", "deliveries"} {
		entries, err := os.ReadDir(filepath.Join(s.dir, sub))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		for _, e := range entries {
			name := e.Name()
			// Files are named "<date>_...", so a lexical compare on the
			// prefix is a date compare.
			if len(name) >= 10 && name[:10] < cutoffDate {
				if err := os.Remove(filepath.Join(s.dir, sub, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("%w: %v", ErrUnavailable, err)
				}
			}
		}
	}
	return nil
}

// writeAtomic writes via a temp file and rename so a crash never leaves
// a partial record behind.
func (s *fileStore) writeAtomic(path string, payload []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
