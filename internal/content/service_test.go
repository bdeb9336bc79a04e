package content

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	logx "rcbot/pkg/logx"
)

type stubStore struct {
	mu      sync.Mutex
	m       map[string]*Bundle
	loadErr error
	saveErr error
}

func newStubStore() *stubStore { return &stubStore{m: map[string]*Bundle{}} }

func (s *stubStore) LoadBundle(_ context.Context, date, scope string) (*Bundle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	b, ok := s.m[date+"|"+scope]
	return b, ok, nil
}

func (s *stubStore) SaveBundle(_ context.Context, b *Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.m[b.Date+"|"+b.Scope] = b
	return nil
}

func (s *stubStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

type stubProvider struct {
	calls atomic.Int64
	words int
	delay time.Duration
}

func (p *stubProvider) Generate(_ context.Context, topic string, _ Tier) (*Bundle, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return &Bundle{
		Topic:     topic,
		Passage:   passageOf(p.words),
		Questions: QuestionSet(4),
		Source:    "fallback",
	}, nil
}

func newTestService(store Store, p Provider) *Service {
	return NewService(store, p, ServiceOptions{
		Tiers:     []Tier{{Name: "extreme", MinWords: 10, MaxWords: 100}},
		Topics:    []string{"Philosophy"},
		Questions: 4,
		PickTopic: func(topics []string) string { return topics[0] },
	}, logx.Nop())
}

func TestTodayGeneratesOnce(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	prov := &stubProvider{words: 50}
	svc := newTestService(store, prov)

	first, err := svc.Today(context.Background(), "extreme", "2026-08-31")
	if err != nil {
		t.Fatalf("Today error: %v", err)
	}
	second, err := svc.Today(context.Background(), "extreme", "2026-08-31")
	if err != nil {
		t.Fatalf("Today (repeat) error: %v", err)
	}

	if n := prov.calls.Load(); n != 1 {
		t.Fatalf("provider called %d times, want 1", n)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated calls returned different bundles")
	}
	if first.Scope != "extreme" || first.Date != "2026-08-31" {
		t.Fatalf("bundle not keyed: scope=%q date=%q", first.Scope, first.Date)
	}
}

func TestTodayConcurrentSingleGeneration(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	prov := &stubProvider{words: 50, delay: 20 * time.Millisecond}
	svc := newTestService(store, prov)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Today(context.Background(), "extreme", "2026-08-31")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Today error: %v", err)
		}
	}
	if n := prov.calls.Load(); n != 1 {
		t.Fatalf("provider called %d times under contention, want 1", n)
	}
	if store.len() != 1 {
		t.Fatalf("store has %d bundles, want 1", store.len())
	}
}

// A slow generation for one date must keep serializing late arrivals
// for that date even while a different date is being requested, and
// the lock table must drain once everyone is done.
func TestTodayInterleavedDatesGenerateOncePerDate(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	prov := &stubProvider{words: 50, delay: 50 * time.Millisecond}
	svc := newTestService(store, prov)

	errs := make(chan error, 3)
	var wg sync.WaitGroup
	run := func(date string) {
		defer wg.Done()
		_, err := svc.Today(context.Background(), "extreme", date)
		errs <- err
	}

	wg.Add(1)
	go run("2026-08-30")
	time.Sleep(10 * time.Millisecond) // first caller now holds its key lock
	wg.Add(1)
	go run("2026-08-31")
	time.Sleep(10 * time.Millisecond) // second date has gone through the lock table
	wg.Add(1)
	go run("2026-08-30") // must queue behind the still-held first lock
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Today error: %v", err)
		}
	}
	if n := prov.calls.Load(); n != 2 {
		t.Fatalf("provider called %d times, want 2 (one per date)", n)
	}
	if store.len() != 2 {
		t.Fatalf("store has %d bundles, want 2", store.len())
	}

	svc.mu.Lock()
	left := len(svc.keys)
	svc.mu.Unlock()
	if left != 0 {
		t.Fatalf("lock table still has %d entries", left)
	}
}

func TestTodayRejectedOutputNotStored(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	prov := &stubProvider{words: 5} // below tier minimum
	svc := newTestService(store, prov)

	_, err := svc.Today(context.Background(), "extreme", "2026-08-31")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("Today = %v, want ErrGenerationFailed", err)
	}
	if !errors.Is(err, ErrWordCountOutOfRange) {
		t.Fatalf("Today = %v, want wrapped ErrWordCountOutOfRange", err)
	}
	if store.len() != 0 {
		t.Fatal("rejected bundle was stored")
	}

	// The failure is not cached: the next call tries again.
	prov.words = 50
	if _, err := svc.Today(context.Background(), "extreme", "2026-08-31"); err != nil {
		t.Fatalf("Today after recovery error: %v", err)
	}
	if n := prov.calls.Load(); n != 2 {
		t.Fatalf("provider called %d times, want 2", n)
	}
}

func TestTodayStoreUnavailable(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	store.loadErr = errors.New("disk on fire")
	svc := newTestService(store, &stubProvider{words: 50})

	if _, err := svc.Today(context.Background(), "extreme", "2026-08-31"); err == nil {
		t.Fatal("expected error when the store is unreachable")
	}
}

func TestTodayUnknownScope(t *testing.T) {
	t.Parallel()
	svc := newTestService(newStubStore(), &stubProvider{words: 50})
	if _, err := svc.Today(context.Background(), "nope", "2026-08-31"); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

// End-to-end through the real generator: with no remote backend
// configured (the outage-equivalent state) the static passages serve
// the day, the bundle validates and is stored normally.
func TestTodayFallsBackDuringOutage(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	gen := NewGenerator(GeneratorOptions{Questions: 4}, logx.Nop())
	svc := NewService(store, gen, ServiceOptions{
		Tiers:     []Tier{{Name: "extreme", MinWords: 150, MaxWords: 600}},
		Topics:    []string{"Sociology"},
		Questions: 4,
	}, logx.Nop())

	b, err := svc.Today(context.Background(), "extreme", "2026-08-31")
	if err != nil {
		t.Fatalf("Today error: %v", err)
	}
	if b.Source != "fallback" {
		t.Fatalf("Source = %q, want fallback", b.Source)
	}
	if store.len() != 1 {
		t.Fatal("fallback bundle not stored")
	}
}

func TestRegenerateOverwrites(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	prov := &stubProvider{words: 50}
	svc := newTestService(store, prov)

	if _, err := svc.Today(context.Background(), "extreme", "2026-08-31"); err != nil {
		t.Fatalf("Today error: %v", err)
	}
	prov.words = 60
	b, err := svc.Regenerate(context.Background(), "extreme", "2026-08-31")
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}
	if WordCount(b.Passage) != 60 {
		t.Fatalf("Regenerate returned old content: %d words", WordCount(b.Passage))
	}

	got, err := svc.Today(context.Background(), "extreme", "2026-08-31")
	if err != nil {
		t.Fatalf("Today after Regenerate error: %v", err)
	}
	if !reflect.DeepEqual(got, b) {
		t.Fatal("store still serves the pre-override bundle")
	}
}
