package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingStore struct {
	StaticStore
	calls int32
	err   error
	gate  chan struct{}
}

func (c *countingStore) ListCategories(ctx context.Context) ([]Category, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.gate != nil {
		<-c.gate
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.StaticStore.ListCategories(ctx)
}

type memoryShared struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryShared() *memoryShared {
	return &memoryShared{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryShared) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (m *memoryShared) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryShared) CatalogKey(parts ...string) string {
	key := "sf:catalog"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func TestCachedStoreFetchesCategoriesOnce(t *testing.T) {
	inner := &countingStore{StaticStore: StaticStore{Categories: []Category{{ID: "c1", Title: "Shirts"}}}}
	cached := NewCachedStore(inner)

	for i := 0; i < 3; i++ {
		got, err := cached.ListCategories(context.Background())
		if err != nil {
			t.Fatalf("list categories: %v", err)
		}
		if len(got) != 1 || got[0].ID != "c1" {
			t.Fatalf("unexpected categories %+v", got)
		}
		got[0].Title = "mutated"
	}
	if calls := atomic.LoadInt32(&inner.calls); calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
	again, _ := cached.ListCategories(context.Background())
	if again[0].Title != "Shirts" {
		t.Fatalf("cached categories were mutated through a returned slice")
	}
}

func TestCachedStoreCoalescesConcurrentLoads(t *testing.T) {
	inner := &countingStore{
		StaticStore: StaticStore{Categories: []Category{{ID: "c1"}}},
		gate:        make(chan struct{}),
	}
	cached := NewCachedStore(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cached.ListCategories(context.Background()); err != nil {
				t.Errorf("list categories: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(inner.gate)
	wg.Wait()

	if calls := atomic.LoadInt32(&inner.calls); calls != 1 {
		t.Fatalf("expected coalesced upstream call, got %d", calls)
	}
}

func TestCachedStoreDoesNotCacheFailures(t *testing.T) {
	inner := &countingStore{err: errors.New("cms down")}
	cached := NewCachedStore(inner)

	if _, err := cached.ListCategories(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	inner.err = nil
	inner.Categories = []Category{{ID: "c1"}}
	got, err := cached.ListCategories(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("expected retry to succeed, got %v %v", got, err)
	}
	if calls := atomic.LoadInt32(&inner.calls); calls != 2 {
		t.Fatalf("expected two upstream calls, got %d", calls)
	}
}

func TestCachedStoreSharesCategoriesAcrossInstances(t *testing.T) {
	shared := newMemoryShared()
	first := &countingStore{StaticStore: StaticStore{Categories: []Category{{ID: "c1", Title: "Shirts", Slug: "shirts"}}}}
	if _, err := NewCachedStore(first, WithSharedCache(shared, time.Hour)).ListCategories(context.Background()); err != nil {
		t.Fatalf("prime shared cache: %v", err)
	}
	if ttl := shared.ttls["sf:catalog:categories"]; ttl != time.Hour {
		t.Fatalf("expected shared ttl of one hour, got %s", ttl)
	}

	second := &countingStore{}
	got, err := NewCachedStore(second, WithSharedCache(shared, time.Hour)).ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "shirts" {
		t.Fatalf("expected categories from shared cache, got %+v", got)
	}
	if calls := atomic.LoadInt32(&second.calls); calls != 0 {
		t.Fatalf("expected no upstream call on shared hit, got %d", calls)
	}
}

func TestCachedStorePassesProductsThrough(t *testing.T) {
	inner := &countingStore{StaticStore: StaticStore{Products: []Product{{ID: "p1"}}}}
	cached := NewCachedStore(inner)

	products, err := cached.ListAllProducts(context.Background())
	if err != nil || len(products) != 1 {
		t.Fatalf("unexpected products %v %v", products, err)
	}
}
