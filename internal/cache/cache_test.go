package cache

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/domain"
)

// fakeStore — таблица в памяти с теми же контрактами, что у Postgres-слоя.
type fakeStore struct {
	mu   sync.Mutex
	rows map[string]domain.CacheRow

	getErr    error
	upsertErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]domain.CacheRow)}
}

func (s *fakeStore) Get(_ context.Context, key string) (domain.CacheRow, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return domain.CacheRow{}, false, s.getErr
	}
	row, ok := s.rows[key]
	return row, ok, nil
}

func (s *fakeStore) Upsert(_ context.Context, key string, payload []byte, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	row, ok := s.rows[key]
	if !ok {
		row = domain.CacheRow{Key: key, CreatedAt: updatedAt}
	}
	row.Payload = payload
	row.UpdatedAt = updatedAt
	s.rows[key] = row
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.rows, key)
	return nil
}

func (s *fakeStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, row := range s.rows {
		if row.UpdatedAt.Before(cutoff) {
			delete(s.rows, k)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Recent(_ context.Context, limit int) ([]domain.CacheRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CacheRow, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func newTestCache(store domain.CacheStore, ttl time.Duration, at time.Time) (*Cache, *time.Time) {
	c := New(store, ttl, discard())
	now := at
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetMissOnEmptyStore(t *testing.T) {
	c, _ := newTestCache(newFakeStore(), time.Hour, time.Now())
	if _, ok := c.Get(context.Background(), "nope"); ok {
		t.Error("expected miss on empty store")
	}
}

func TestSetThenGet(t *testing.T) {
	c, _ := newTestCache(newFakeStore(), time.Hour, time.Now())
	ctx := context.Background()

	c.Set(ctx, "k", []byte(`{"a":1}`))
	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if string(got) != `{"a":1}` {
		t.Errorf("unexpected payload: %s", got)
	}
}

func TestGetExpiresAtTTLBoundary(t *testing.T) {
	store := newFakeStore()
	c, now := newTestCache(store, time.Hour, time.Unix(1_000_000, 0))
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))

	// Ровно на границе TTL запись ещё свежая.
	*now = now.Add(time.Hour)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("expected hit exactly at ttl")
	}

	// Секундой позже — протухла и удалена.
	*now = now.Add(time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss past ttl")
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("expected expired row to be deleted on read")
	}
}

func TestGetStoreErrorIsMiss(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	c, _ := newTestCache(store, time.Hour, time.Now())
	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("store error must read as miss")
	}
}

func TestSetErrorSwallowed(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = errors.New("write failed")
	c, _ := newTestCache(store, time.Hour, time.Now())
	// Не должно паниковать и не должно ничего возвращать.
	c.Set(context.Background(), "k", []byte("v"))
}

func TestSetOverwritesAndRefreshesTTL(t *testing.T) {
	store := newFakeStore()
	c, now := newTestCache(store, time.Hour, time.Unix(1_000_000, 0))
	ctx := context.Background()

	c.Set(ctx, "k", []byte("old"))
	*now = now.Add(50 * time.Minute)
	c.Set(ctx, "k", []byte("new"))

	// Полчаса спустя первая запись была бы протухшей, вторая — нет.
	*now = now.Add(30 * time.Minute)
	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit, upsert should refresh updated_at")
	}
	if string(got) != "new" {
		t.Errorf("expected overwritten payload, got %s", got)
	}
}

func TestGetOrGenerateHitSkipsGen(t *testing.T) {
	c, _ := newTestCache(newFakeStore(), time.Hour, time.Now())
	ctx := context.Background()
	c.Set(ctx, "k", []byte("cached"))

	called := false
	got, err := c.GetOrGenerate(ctx, "k", func(context.Context) ([]byte, error) {
		called = true
		return []byte("fresh"), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("generator must not run on cache hit")
	}
	if string(got) != "cached" {
		t.Errorf("expected cached payload, got %s", got)
	}
}

func TestGetOrGenerateMissRunsGenAndStores(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCache(store, time.Hour, time.Now())
	ctx := context.Background()

	got, err := c.GetOrGenerate(ctx, "k", func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "fresh" {
		t.Errorf("unexpected payload: %s", got)
	}
	if row, found, _ := store.Get(ctx, "k"); !found || string(row.Payload) != "fresh" {
		t.Error("generated payload must be stored")
	}
}

func TestGetOrGenerateErrorNotCached(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCache(store, time.Hour, time.Now())
	ctx := context.Background()

	genErr := errors.New("vendor down")
	if _, err := c.GetOrGenerate(ctx, "k", func(context.Context) ([]byte, error) {
		return nil, genErr
	}); !errors.Is(err, genErr) {
		t.Fatalf("expected generator error, got %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("failed generation must not be cached")
	}

	// Следующий вызов снова зовёт генератор.
	got, err := c.GetOrGenerate(ctx, "k", func(context.Context) ([]byte, error) {
		return []byte("ok now"), nil
	})
	if err != nil || string(got) != "ok now" {
		t.Errorf("expected retry to succeed, got %s, %v", got, err)
	}
}

func TestGetOrGenerateCollapsesConcurrentMisses(t *testing.T) {
	c, _ := newTestCache(newFakeStore(), time.Hour, time.Now())
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	gen := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("once"), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([][]byte, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, err := c.GetOrGenerate(ctx, "k", gen)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = payload
		}(i)
	}

	// Даём воркерам собраться на одном ключе и отпускаем генератор.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 generator call, got %d", n)
	}
	for i, r := range results {
		if string(r) != "once" {
			t.Errorf("worker %d got %q", i, r)
		}
	}
}

func TestPurgeExpired(t *testing.T) {
	store := newFakeStore()
	c, now := newTestCache(store, time.Hour, time.Unix(1_000_000, 0))
	ctx := context.Background()

	c.Set(ctx, "old", []byte("1"))
	*now = now.Add(2 * time.Hour)
	c.Set(ctx, "fresh", []byte("2"))

	n, err := c.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged row, got %d", n)
	}
	if _, found, _ := store.Get(ctx, "fresh"); !found {
		t.Error("fresh row must survive purge")
	}
}
