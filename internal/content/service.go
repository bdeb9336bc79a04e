package content

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	logx "rcbot/pkg/logx"
)

// Store is the slice of persistence the daily service needs. The full
// storage layer implements it.
type Store interface {
	// LoadBundle returns the stored bundle for the exact (date, scope)
	// key. ok=false means explicit absence; a non-nil error means the
	// persistence layer itself is unreachable.
	LoadBundle(ctx context.Context, date, scope string) (b *Bundle, ok bool, err error)
	// SaveBundle persists keyed by (date, scope), overwriting silently.
	SaveBundle(ctx context.Context, b *Bundle) error
}

// TopicSelector picks a topic from the rotation. Selections are
// independent of prior picks; repeats across days are permitted.
type TopicSelector func(topics []string) string

// RandomTopic is the default selector: uniform over the rotation.
func RandomTopic() TopicSelector {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var mu sync.Mutex
	return func(topics []string) string {
		if len(topics) == 0 {
			return ""
		}
		mu.Lock()
		defer mu.Unlock()
		return topics[rng.Intn(len(topics))]
	}
}

// Service is the daily content orchestrator. It guarantees at most one
// generation per (date, scope): concurrent callers are serialized on a
// per-key mutex, so the provider is invoked once and every caller gets
// the stored bundle for the rest of the day.
type Service struct {
	store    Store
	provider Provider
	tiers    map[string]Tier
	topics   []string
	pick     TopicSelector
	nq       int
	log      logx.Logger

	mu   sync.Mutex
	keys map[string]*keyLock
}

// keyLock is one entry in the per-(date, scope) lock table. refs counts
// holders plus waiters; the entry is removed on the last unlock.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

type ServiceOptions struct {
	Tiers  []Tier
	Topics []string
	// Questions is the required question count per bundle.
	Questions int
	// PickTopic overrides the topic selector (tests use a fixed one).
	PickTopic TopicSelector
}

func NewService(store Store, provider Provider, opts ServiceOptions, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	tiers := make(map[string]Tier, len(opts.Tiers))
	for _, t := range opts.Tiers {
		tiers[t.Name] = t
	}
	pick := opts.PickTopic
	if pick == nil {
		pick = RandomTopic()
	}
	nq := opts.Questions
	if nq <= 0 {
		nq = DefaultQuestions
	}
	return &Service{
		store:    store,
		provider: provider,
		tiers:    tiers,
		topics:   append([]string(nil), opts.Topics...),
		pick:     pick,
		nq:       nq,
		log:      log,
		keys:     map[string]*keyLock{},
	}
}

// Today returns the bundle for (date, scope), generating and persisting
// it at most once. A cache hit returns the stored bundle unchanged, so
// every caller within the same period sees identical content.
func (s *Service) Today(ctx context.Context, scope, date string) (*Bundle, error) {
	tier, ok := s.tiers[scope]
	if !ok {
		return nil, fmt.Errorf("unknown scope %q", scope)
	}

	if b, ok, err := s.store.LoadBundle(ctx, date, scope); err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	} else if ok {
		return b, nil
	}

	unlock := s.lockKey(date, scope)
	defer unlock()

	// Re-check under the lock: a concurrent caller may have generated
	// and stored while we were waiting.
	if b, ok, err := s.store.LoadBundle(ctx, date, scope); err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	} else if ok {
		return b, nil
	}

	return s.generate(ctx, scope, date, tier)
}

// Regenerate is the explicit override path: it generates fresh content
// and overwrites whatever is stored for (date, scope). Used for manual
// same-day resends only.
func (s *Service) Regenerate(ctx context.Context, scope, date string) (*Bundle, error) {
	tier, ok := s.tiers[scope]
	if !ok {
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
	unlock := s.lockKey(date, scope)
	defer unlock()
	return s.generate(ctx, scope, date, tier)
}

// generate runs provider -> validate -> save. Callers must hold the
// (date, scope) key lock. Invalid output is never stored and is not
// retried here; the caller decides.
func (s *Service) generate(ctx context.Context, scope, date string, tier Tier) (*Bundle, error) {
	topic := s.pick(s.topics)
	start := time.Now()

	b, err := s.provider.Generate(ctx, topic, tier)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	b.Scope = scope
	b.Date = date

	lim := Limits{MinWords: tier.MinWords, MaxWords: tier.MaxWords, Questions: s.nq}
	if err := Validate(b, lim); err != nil {
		s.log.Warn("generated bundle rejected",
			logx.String("scope", scope), logx.String("date", date),
			logx.String("topic", topic), logx.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if err := s.store.SaveBundle(ctx, b); err != nil {
		return nil, fmt.Errorf("save bundle: %w", err)
	}

	s.log.Info("bundle generated",
		logx.String("scope", scope), logx.String("date", date),
		logx.String("topic", topic), logx.String("source", b.Source),
		logx.Int("words", WordCount(b.Passage)), logx.Duration("took", time.Since(start)))
	return b, nil
}

// lockKey serializes callers per (date, scope) without blocking
// unrelated keys. Entries are reference-counted and removed on the
// last unlock, so the table stays bounded across days and an entry is
// never dropped while any caller still holds or waits on its mutex.
func (s *Service) lockKey(date, scope string) (unlock func()) {
	key := date + "|" + scope

	s.mu.Lock()
	l, ok := s.keys[key]
	if !ok {
		l = &keyLock{}
		s.keys[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.keys, key)
		}
		s.mu.Unlock()
	}
}
