package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mnemo/mnemo/pkg/store"
)

// Default cache thresholds.
const (
	DefaultCacheMaxAge   = 24 * time.Hour
	DefaultSweepAge      = 7 * 24 * time.Hour
	DefaultSweepBatch    = 100
	confidenceFloor      = 0.3
	confidencePerRankCut = 0.1
)

// ResultCache is the external result cache. Caching is global per
// normalized query text, not per user, since external results are not
// user-specific.
type ResultCache interface {
	// Get returns unexpired cached results for a query, sorted by
	// confidence descending. Reads have no side effects.
	Get(ctx context.Context, query string, maxAge time.Duration) ([]CachedResult, error)

	// Put caches the provider's ranked results for a query. Writes are
	// idempotent per (query, position).
	Put(ctx context.Context, query string, results []ExternalResult) error

	// Sweep deletes entries older than the threshold, bounded per
	// invocation, and returns the number deleted.
	Sweep(ctx context.Context, olderThan time.Duration, batchSize int) (int, error)
}

// normalizeQuery produces the global cache key for a query.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// positionConfidence assigns a linearly decaying confidence to the
// provider's result at 0-based position i, floored at 0.3 so later
// results are never treated as worthless.
func positionConfidence(i int) float64 {
	c := 1.0 - float64(i)*confidencePerRankCut
	if c < confidenceFloor {
		return confidenceFloor
	}
	return c
}

// StoreCache implements ResultCache on the document store.
type StoreCache struct {
	store  store.Store
	logger retrievalLogger
	now    func() time.Time
}

// NewStoreCache creates a document-store-backed result cache.
func NewStoreCache(st store.Store, logger retrievalLogger) *StoreCache {
	if logger == nil {
		logger = nopLogger{}
	}
	return &StoreCache{store: st, logger: logger, now: time.Now}
}

// cacheEntryKey embeds the per-result ordinal so multiple results share
// a query while each write stays idempotent per (query, position).
func cacheEntryKey(normalized string, position int) string {
	return fmt.Sprintf("%s#%03d", normalized, position)
}

func (c *StoreCache) Get(ctx context.Context, query string, maxAge time.Duration) ([]CachedResult, error) {
	if maxAge <= 0 {
		maxAge = DefaultCacheMaxAge
	}
	normalized := normalizeQuery(query)
	if normalized == "" {
		return nil, ErrInvalidQuery
	}

	records, err := c.store.List(ctx, store.CollectionCache, normalized+"#")
	if err != nil {
		return nil, err
	}

	cutoff := c.now().Add(-maxAge)
	results := make([]CachedResult, 0, len(records))
	for _, rec := range records {
		var cached CachedResult
		if err := unmarshal(rec.Value, &cached); err != nil {
			c.logger.Warn("skipping undecodable cache entry", "key", rec.Key, "error", err)
			continue
		}
		// An entry whose age equals maxAge exactly is already expired.
		if !cached.CachedAt.After(cutoff) {
			continue
		}
		results = append(results, cached)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	return results, nil
}

func (c *StoreCache) Put(ctx context.Context, query string, results []ExternalResult) error {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return ErrInvalidQuery
	}

	now := c.now()
	for i, result := range results {
		cached := CachedResult{
			Query:      normalized,
			Source:     result.Source,
			Content:    result.Content,
			Title:      result.Title,
			URL:        result.URL,
			Confidence: positionConfidence(i),
			CachedAt:   now,
		}
		data, err := marshal(&cached)
		if err != nil {
			return err
		}
		if err := c.store.Put(ctx, store.CollectionCache, cacheEntryKey(normalized, i), data); err != nil {
			return err
		}
	}
	return nil
}

func (c *StoreCache) Sweep(ctx context.Context, olderThan time.Duration, batchSize int) (int, error) {
	if olderThan <= 0 {
		olderThan = DefaultSweepAge
	}
	if batchSize <= 0 {
		batchSize = DefaultSweepBatch
	}

	records, err := c.store.List(ctx, store.CollectionCache, "")
	if err != nil {
		return 0, err
	}

	cutoff := c.now().Add(-olderThan)
	deleted := 0

	for _, rec := range records {
		if deleted >= batchSize {
			break
		}
		var cached CachedResult
		if err := unmarshal(rec.Value, &cached); err != nil {
			// Undecodable entries are dead weight; sweep them too.
			if err := c.store.Delete(ctx, store.CollectionCache, rec.Key); err == nil {
				deleted++
			}
			continue
		}
		if !cached.CachedAt.Before(cutoff) {
			continue
		}
		if err := c.store.Delete(ctx, store.CollectionCache, rec.Key); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}
