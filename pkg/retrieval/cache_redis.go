package retrieval

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces cache hashes in a shared Redis instance.
const redisKeyPrefix = "mnemo:cache:"

// RedisCache implements ResultCache on Redis. Each query maps to a
// hash keyed by result position; the hash TTL is set to the sweep
// threshold so Redis expires whole queries on its own.
type RedisCache struct {
	client   redis.Cmdable
	sweepTTL time.Duration
	logger   retrievalLogger
	now      func() time.Time
}

// NewRedisCache creates a Redis-backed result cache. sweepTTL bounds
// how long entries may live regardless of read maxAge.
func NewRedisCache(client redis.Cmdable, sweepTTL time.Duration, logger retrievalLogger) *RedisCache {
	if sweepTTL <= 0 {
		sweepTTL = DefaultSweepAge
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &RedisCache{
		client:   client,
		sweepTTL: sweepTTL,
		logger:   logger,
		now:      time.Now,
	}
}

func redisQueryKey(normalized string) string {
	return redisKeyPrefix + normalized
}

func (c *RedisCache) Get(ctx context.Context, query string, maxAge time.Duration) ([]CachedResult, error) {
	if maxAge <= 0 {
		maxAge = DefaultCacheMaxAge
	}
	normalized := normalizeQuery(query)
	if normalized == "" {
		return nil, ErrInvalidQuery
	}

	fields, err := c.client.HGetAll(ctx, redisQueryKey(normalized)).Result()
	if err != nil {
		return nil, err
	}

	cutoff := c.now().Add(-maxAge)
	results := make([]CachedResult, 0, len(fields))
	for field, raw := range fields {
		var cached CachedResult
		if err := unmarshal([]byte(raw), &cached); err != nil {
			c.logger.Warn("skipping undecodable redis cache entry", "query", normalized, "field", field, "error", err)
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

func (c *RedisCache) Put(ctx context.Context, query string, results []ExternalResult) error {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return ErrInvalidQuery
	}
	if len(results) == 0 {
		return nil
	}

	now := c.now()
	values := make(map[string]interface{}, len(results))
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
		values[strconv.Itoa(i)] = data
	}

	key := redisQueryKey(normalized)
	if err := c.client.HSet(ctx, key, values).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.sweepTTL).Err()
}

// Sweep scans for cache hashes whose entries have all aged past the
// threshold and deletes them. Redis TTLs already bound entry lifetime;
// this pass reclaims hashes early when a shorter threshold is asked for.
func (c *RedisCache) Sweep(ctx context.Context, olderThan time.Duration, batchSize int) (int, error) {
	if olderThan <= 0 {
		olderThan = DefaultSweepAge
	}
	if batchSize <= 0 {
		batchSize = DefaultSweepBatch
	}

	cutoff := c.now().Add(-olderThan)
	deleted := 0
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, redisKeyPrefix+"*", 64).Result()
		if err != nil {
			return deleted, err
		}

		for _, key := range keys {
			if deleted >= batchSize {
				return deleted, nil
			}

			fields, err := c.client.HGetAll(ctx, key).Result()
			if err != nil {
				return deleted, err
			}

			expired := len(fields) > 0
			for _, raw := range fields {
				var cached CachedResult
				if err := unmarshal([]byte(raw), &cached); err != nil {
					continue
				}
				if !cached.CachedAt.Before(cutoff) {
					expired = false
					break
				}
			}

			if expired {
				if err := c.client.Del(ctx, key).Err(); err != nil {
					return deleted, err
				}
				deleted++
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
