package heropool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/cache"
	"github.com/wnsghl6272/total-cooked/internal/domain"
)

// fakeStore — минимальная таблица в памяти под кеш пула.
type fakeStore struct {
	mu   sync.Mutex
	rows map[string]domain.CacheRow
}

func newFakeStore() *fakeStore { return &fakeStore{rows: make(map[string]domain.CacheRow)} }

func (s *fakeStore) Get(_ context.Context, key string) (domain.CacheRow, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[key]
	return row, ok, nil
}

func (s *fakeStore) Upsert(_ context.Context, key string, payload []byte, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key] = domain.CacheRow{Key: key, Payload: payload, CreatedAt: updatedAt, UpdatedAt: updatedAt}
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, key)
	return nil
}

func (s *fakeStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *fakeStore) Recent(_ context.Context, limit int) ([]domain.CacheRow, error) {
	return nil, nil
}

// fakeGen возвращает по картинке на промпт; failOn помечает проваливающиеся слоты.
type fakeGen struct {
	calls  int
	failOn map[int]bool
}

func (g *fakeGen) GenerateFoodImage(_ context.Context, prompt string) (domain.DalleImage, error) {
	g.calls++
	if g.failOn[g.calls] {
		return domain.DalleImage{}, errors.New("generation failed")
	}
	return domain.DalleImage{
		ID:     fmt.Sprintf("img-%d", g.calls),
		URL:    fmt.Sprintf("https://img.example/%d.png", g.calls),
		Prompt: prompt,
	}, nil
}

func newTestManager(store *fakeStore, gen Generator) *Manager {
	logger := log.New(io.Discard, "", 0)
	m := New(cache.New(store, domain.HeroPoolTTL, logger), gen, logger)
	m.delay = 0
	m.sleep = func(context.Context, time.Duration) {}
	return m
}

func storedPool(t *testing.T, store *fakeStore) domain.HeroImagePool {
	t.Helper()
	row, ok := store.rows[domain.HeroPoolKey]
	if !ok {
		t.Fatal("expected pool row in store")
	}
	var pool domain.HeroImagePool
	if err := json.Unmarshal(row.Payload, &pool); err != nil {
		t.Fatalf("stored pool is not valid json: %v", err)
	}
	return pool
}

func TestGenerateFullPool(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store, &fakeGen{})

	pool := m.Generate(context.Background())
	if len(pool.Images) != domain.HeroPoolSize {
		t.Fatalf("expected %d images, got %d", domain.HeroPoolSize, len(pool.Images))
	}
	if pool.CurrentIndex != 0 {
		t.Errorf("expected zero current index, got %d", pool.CurrentIndex)
	}
	if got := storedPool(t, store); len(got.Images) != domain.HeroPoolSize {
		t.Errorf("stored pool has %d images", len(got.Images))
	}
}

func TestGeneratePartialStoredButAbsentOnRead(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store, &fakeGen{failOn: map[int]bool{2: true, 4: true}})
	ctx := context.Background()

	pool := m.Generate(ctx)
	if len(pool.Images) != 3 {
		t.Fatalf("expected 3 surviving images, got %d", len(pool.Images))
	}

	// Неполный пул пишется как есть...
	if got := storedPool(t, store); len(got.Images) != 3 {
		t.Errorf("stored pool has %d images, want 3", len(got.Images))
	}

	// ...но читатель считает его отсутствующим.
	if _, ok := m.Pool(ctx); ok {
		t.Error("incomplete pool must read as absent")
	}
}

func TestPoolMalformedReadsAsAbsent(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store, &fakeGen{})
	_ = store.Upsert(context.Background(), domain.HeroPoolKey, []byte("{broken"), time.Now())

	if _, ok := m.Pool(context.Background()); ok {
		t.Error("malformed pool must read as absent")
	}
}

func TestNextImageRegeneratesWhenAbsent(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGen{}
	m := newTestManager(store, gen)

	img, ok := m.NextImage(context.Background())
	if !ok {
		t.Fatal("expected an image")
	}
	if img.URL == "" {
		t.Error("expected non-empty url")
	}
	if gen.calls != domain.HeroPoolSize {
		t.Errorf("expected %d generator calls, got %d", domain.HeroPoolSize, gen.calls)
	}
}

func TestNextImageFalseWhenNothingGenerated(t *testing.T) {
	failAll := map[int]bool{}
	for i := 1; i <= domain.HeroPoolSize; i++ {
		failAll[i] = true
	}
	m := newTestManager(newFakeStore(), &fakeGen{failOn: failAll})

	if _, ok := m.NextImage(context.Background()); ok {
		t.Error("expected false when no image could be generated")
	}
}

func TestNextImageUniformSelection(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store, &fakeGen{})
	ctx := context.Background()
	m.Generate(ctx)

	// Детерминированный "рандом" по кругу: каждый слот должен быть достижим.
	var seq int
	m.randInt = func(n int) int {
		seq++
		return seq % n
	}

	seen := map[string]bool{}
	for i := 0; i < domain.HeroPoolSize*3; i++ {
		img, ok := m.NextImage(ctx)
		if !ok {
			t.Fatal("expected image from full pool")
		}
		seen[img.ID] = true
	}
	if len(seen) != domain.HeroPoolSize {
		t.Errorf("expected all %d slots served, saw %d", domain.HeroPoolSize, len(seen))
	}
}

func TestNextImageIndexInBounds(t *testing.T) {
	m := newTestManager(newFakeStore(), &fakeGen{})
	ctx := context.Background()
	m.Generate(ctx)

	m.randInt = func(n int) int {
		if n != domain.HeroPoolSize {
			t.Errorf("randInt bound = %d, want %d", n, domain.HeroPoolSize)
		}
		return n - 1
	}
	if _, ok := m.NextImage(ctx); !ok {
		t.Fatal("expected image")
	}
}

func TestRefreshRebuildsPool(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGen{}
	m := newTestManager(store, gen)
	ctx := context.Background()

	m.Generate(ctx)
	first := storedPool(t, store)

	pool := m.Refresh(ctx)
	if len(pool.Images) != domain.HeroPoolSize {
		t.Fatalf("expected full pool after refresh, got %d", len(pool.Images))
	}
	second := storedPool(t, store)
	if first.Images[0].ID == second.Images[0].ID {
		t.Error("refresh must produce new images")
	}
	if gen.calls != 2*domain.HeroPoolSize {
		t.Errorf("expected %d total calls, got %d", 2*domain.HeroPoolSize, gen.calls)
	}
}

func TestNeedsRefresh(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store, &fakeGen{})
	ctx := context.Background()

	if !m.NeedsRefresh(ctx) {
		t.Error("empty store must need refresh")
	}

	m.Generate(ctx)
	if m.NeedsRefresh(ctx) {
		t.Error("fresh pool must not need refresh")
	}

	// Старше 30 дней.
	m.now = func() time.Time { return time.Now().Add(domain.HeroPoolTTL + time.Hour) }
	if !m.NeedsRefresh(ctx) {
		t.Error("stale pool must need refresh")
	}
}
