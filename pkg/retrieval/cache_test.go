package retrieval

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/mnemo/mnemo/pkg/store/memory"
)

func newTestCache() *StoreCache {
	return NewStoreCache(memory.NewMemoryStore(), nil)
}

func TestPositionConfidence(t *testing.T) {
	wants := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.3, 0.3}
	for i, want := range wants {
		if got := positionConfidence(i); math.Abs(got-want) > 1e-9 {
			t.Errorf("positionConfidence(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestStoreCache_PutAssignsConfidences(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	results := []ExternalResult{
		{Title: "a", Content: "1", Source: "web"},
		{Title: "b", Content: "2", Source: "web"},
		{Title: "c", Content: "3", Source: "web"},
	}
	if err := cache.Put(ctx, "AI Safety", results); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	cached, err := cache.Get(ctx, "ai safety", time.Hour)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(cached) != 3 {
		t.Fatalf("expected 3 cached results, got %d", len(cached))
	}
	for i, want := range []float64{1.0, 0.9, 0.8} {
		if math.Abs(cached[i].Confidence-want) > 1e-9 {
			t.Errorf("position %d: expected confidence %v, got %v", i, want, cached[i].Confidence)
		}
	}
}

func TestStoreCache_QueryNormalization(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	if err := cache.Put(ctx, "  Machine LEARNING  ", []ExternalResult{{Content: "x"}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	cached, err := cache.Get(ctx, "machine learning", time.Hour)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(cached) != 1 {
		t.Errorf("expected normalized lookup to hit, got %d results", len(cached))
	}
	if cached[0].Query != "machine learning" {
		t.Errorf("expected stored query normalized, got %q", cached[0].Query)
	}
}

func TestStoreCache_PutIsIdempotent(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	results := []ExternalResult{{Content: "first"}, {Content: "second"}}
	for i := 0; i < 3; i++ {
		if err := cache.Put(ctx, "q", results); err != nil {
			t.Fatalf("Put %d failed: %v", i, err)
		}
	}

	cached, err := cache.Get(ctx, "q", time.Hour)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(cached) != 2 {
		t.Errorf("re-caching duplicated entries: got %d, want 2", len(cached))
	}
}

func TestStoreCache_GetFiltersByAge(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	base := time.Now()
	cache.now = func() time.Time { return base.Add(-48 * time.Hour) }
	if err := cache.Put(ctx, "q", []ExternalResult{{Content: "old"}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	cache.now = func() time.Time { return base }
	if err := cache.Put(ctx, "other", []ExternalResult{{Content: "fresh"}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	stale, err := cache.Get(ctx, "q", 24*time.Hour)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("expected stale entries filtered, got %d", len(stale))
	}

	fresh, err := cache.Get(ctx, "other", 24*time.Hour)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(fresh) != 1 {
		t.Errorf("expected fresh entry returned, got %d", len(fresh))
	}

	// Expired entries survive reads; only a sweep removes them.
	swept, err := cache.Sweep(ctx, 24*time.Hour, 10)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if swept != 1 {
		t.Errorf("expected sweep to delete 1 entry, got %d", swept)
	}
}

func TestStoreCache_GetExpiresAtExactMaxAge(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	base := time.Now()
	cache.now = func() time.Time { return base.Add(-24 * time.Hour) }
	if err := cache.Put(ctx, "q", []ExternalResult{{Content: "boundary"}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	cache.now = func() time.Time { return base }
	cached, err := cache.Get(ctx, "q", 24*time.Hour)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(cached) != 0 {
		t.Errorf("entry aged exactly maxAge should be expired, got %d results", len(cached))
	}
}

func TestStoreCache_GetIsIdempotent(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	if err := cache.Put(ctx, "q", []ExternalResult{{Content: "a"}, {Content: "b"}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	first, err := cache.Get(ctx, "q", time.Hour)
	if err != nil {
		t.Fatalf("first Get failed: %v", err)
	}
	second, err := cache.Get(ctx, "q", time.Hour)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("consecutive reads returned different results")
	}
}

func TestStoreCache_SweepRespectsBatchLimit(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	base := time.Now()
	cache.now = func() time.Time { return base.Add(-10 * 24 * time.Hour) }
	for i := 0; i < 5; i++ {
		if err := cache.Put(ctx, fmt.Sprintf("query-%d", i), []ExternalResult{{Content: "x"}}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	cache.now = func() time.Time { return base }

	swept, err := cache.Sweep(ctx, 7*24*time.Hour, 3)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if swept != 3 {
		t.Errorf("expected sweep capped at batch size 3, got %d", swept)
	}

	swept, err = cache.Sweep(ctx, 7*24*time.Hour, 3)
	if err != nil {
		t.Fatalf("second Sweep failed: %v", err)
	}
	if swept != 2 {
		t.Errorf("expected remaining 2 swept, got %d", swept)
	}
}

func TestStoreCache_EmptyQuery(t *testing.T) {
	cache := newTestCache()

	if _, err := cache.Get(context.Background(), "   ", time.Hour); err != ErrInvalidQuery {
		t.Errorf("expected ErrInvalidQuery on Get, got %v", err)
	}
	if err := cache.Put(context.Background(), "", nil); err != ErrInvalidQuery {
		t.Errorf("expected ErrInvalidQuery on Put, got %v", err)
	}
}

func TestStoreCache_SortedByConfidence(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	results := make([]ExternalResult, 6)
	for i := range results {
		results[i] = ExternalResult{Content: fmt.Sprintf("r%d", i)}
	}
	if err := cache.Put(ctx, "q", results); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	cached, err := cache.Get(ctx, "q", time.Hour)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for i := 1; i < len(cached); i++ {
		if cached[i].Confidence > cached[i-1].Confidence {
			t.Fatalf("results not sorted by confidence: %v", cached)
		}
	}
}
