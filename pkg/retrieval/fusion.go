package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/mnemo/mnemo/pkg/websearch"
)

// DefaultSearchLimit is the result limit when the caller passes none.
const DefaultSearchLimit = 10

// Share of the limit requested from each path before merging.
const (
	internalShare = 0.6
	externalShare = 0.4
)

// ExternalSearcher performs live external searches.
type ExternalSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error)
}

// Observer receives engine events for metrics. Implementations must be
// cheap and non-blocking.
type Observer interface {
	SearchCompleted(source string, results int, elapsed time.Duration)
	CacheLookup(hit bool)
	FeedbackRecorded()
	LearnerUpdated()
}

type nopObserver struct{}

func (nopObserver) SearchCompleted(string, int, time.Duration) {}
func (nopObserver) CacheLookup(bool)                           {}
func (nopObserver) FeedbackRecorded()                          {}
func (nopObserver) LearnerUpdated()                            {}

// FusionEngine merges context-weighted internal recall with cached or
// live external search results into one ranking.
type FusionEngine struct {
	weighter *Weighter
	cache    ResultCache
	searcher ExternalSearcher
	learner  *MetaLearner
	perf     *PerformanceRecorder
	observer Observer
	logger   retrievalLogger

	cacheMaxAge  time.Duration
	defaultLimit int
	now          func() time.Time
}

// FusionOption configures a FusionEngine.
type FusionOption func(*FusionEngine)

// WithCacheMaxAge overrides the read-validity window for cached
// external results.
func WithCacheMaxAge(maxAge time.Duration) FusionOption {
	return func(e *FusionEngine) {
		if maxAge > 0 {
			e.cacheMaxAge = maxAge
		}
	}
}

// WithDefaultLimit overrides the result limit used when a caller
// passes none.
func WithDefaultLimit(limit int) FusionOption {
	return func(e *FusionEngine) {
		if limit > 0 {
			e.defaultLimit = limit
		}
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) FusionOption {
	return func(e *FusionEngine) {
		if o != nil {
			e.observer = o
		}
	}
}

// NewFusionEngine creates a fusion engine. searcher may be nil, in
// which case the external path serves cached results only.
func NewFusionEngine(weighter *Weighter, cache ResultCache, searcher ExternalSearcher, learner *MetaLearner, perf *PerformanceRecorder, logger retrievalLogger, opts ...FusionOption) *FusionEngine {
	if logger == nil {
		logger = nopLogger{}
	}
	e := &FusionEngine{
		weighter:     weighter,
		cache:        cache,
		searcher:     searcher,
		learner:      learner,
		perf:         perf,
		observer:     nopObserver{},
		logger:       logger,
		cacheMaxAge:  DefaultCacheMaxAge,
		defaultLimit: DefaultSearchLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs hybrid retrieval for a query. The internal and external
// fetches execute concurrently with independent failure domains; an
// external failure degrades to internal-only results, never to an
// error. Cache population, session bumps and performance recording are
// fire-and-forget.
func (e *FusionEngine) Search(ctx context.Context, query, userID, sessionID string, limit int) ([]FusedResult, error) {
	if query == "" {
		return nil, ErrInvalidQuery
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if limit <= 0 {
		limit = e.defaultLimit
	}

	start := e.now()
	internalWeight, externalWeight := e.learner.FusionWeights(ctx, userID)

	internalLimit := ceilShare(limit, internalShare)
	externalLimit := ceilShare(limit, externalShare)

	var (
		wg          sync.WaitGroup
		internal    []WeightedMemory
		internalErr error
		external    []CachedResult
		externalErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		internal, internalErr = e.weighter.GetWeighted(ctx, query, userID, sessionID, internalLimit)
	}()
	go func() {
		defer wg.Done()
		external, externalErr = e.fetchExternal(ctx, query, externalLimit)
	}()
	wg.Wait()

	if internalErr != nil {
		e.logger.Warn("internal recall failed", "userId", userID, "error", internalErr)
		internal = nil
	}
	if externalErr != nil {
		e.logger.Warn("external path failed, serving internal-only results", "userId", userID, "error", externalErr)
		external = nil
	}

	fused := make([]FusedResult, 0, len(internal)+len(external))
	for _, mem := range internal {
		fused = append(fused, FusedResult{
			ID:         mem.Memory.ID,
			Content:    mem.Memory.Content,
			Source:     SourceInternal,
			Confidence: mem.Similarity,
			FusedScore: mem.Similarity * internalWeight,
		})
	}
	for i, res := range external {
		fused = append(fused, FusedResult{
			ID:         externalResultID(res, i),
			Content:    res.Content,
			Source:     SourceExternal,
			Title:      res.Title,
			URL:        res.URL,
			Confidence: res.Confidence,
			FusedScore: res.Confidence * externalWeight,
		})
	}

	sort.Slice(fused, func(i, j int) bool {
		return fused[i].FusedScore > fused[j].FusedScore
	})
	if limit < len(fused) {
		fused = fused[:limit]
	}

	elapsed := e.now().Sub(start)
	e.observer.SearchCompleted(SourceInternal, len(internal), elapsed)
	e.observer.SearchCompleted(SourceExternal, len(external), elapsed)

	e.recordPerformance(query, userID, len(internal), len(external), fused, elapsed)

	return fused, nil
}

// fetchExternal serves the external path cache-aside: cached results
// when fresh, otherwise a live provider call whose results populate the
// cache in the background.
func (e *FusionEngine) fetchExternal(ctx context.Context, query string, limit int) ([]CachedResult, error) {
	cached, err := e.cache.Get(ctx, query, e.cacheMaxAge)
	if err != nil {
		e.logger.Warn("cache read failed, falling through to provider", "error", err)
	} else if len(cached) > 0 {
		e.observer.CacheLookup(true)
		if limit < len(cached) {
			cached = cached[:limit]
		}
		return cached, nil
	}
	e.observer.CacheLookup(false)

	if e.searcher == nil {
		return nil, nil
	}

	results, err := e.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	externals := make([]ExternalResult, len(results))
	for i, r := range results {
		externals[i] = ExternalResult{
			Title:   r.Title,
			Content: r.Content,
			URL:     r.URL,
			Source:  "web",
		}
	}

	// Populate the cache after the response path is satisfied; errors
	// are logged, never surfaced.
	go func() {
		putCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.cache.Put(putCtx, query, externals); err != nil {
			e.logger.Warn("cache population failed", "query", normalizeQuery(query), "error", err)
		}
	}()

	now := e.now()
	fresh := make([]CachedResult, len(externals))
	for i, r := range externals {
		fresh[i] = CachedResult{
			Query:      normalizeQuery(query),
			Source:     r.Source,
			Content:    r.Content,
			Title:      r.Title,
			URL:        r.URL,
			Confidence: positionConfidence(i),
			CachedAt:   now,
		}
	}
	if limit < len(fresh) {
		fresh = fresh[:limit]
	}
	return fresh, nil
}

func (e *FusionEngine) recordPerformance(query, userID string, internalCount, externalCount int, fused []FusedResult, elapsed time.Duration) {
	if e.perf == nil {
		return
	}

	var confSum, scoreSum float64
	for _, r := range fused {
		confSum += r.Confidence
		scoreSum += r.FusedScore
	}
	avgConfidence, avgFused := 0.0, 0.0
	if len(fused) > 0 {
		avgConfidence = confSum / float64(len(fused))
		avgFused = scoreSum / float64(len(fused))
	}

	metric := &PerformanceMetric{
		Query:          query,
		UserID:         userID,
		InternalCount:  internalCount,
		ExternalCount:  externalCount,
		AvgConfidence:  avgConfidence,
		AvgFusedScore:  avgFused,
		ResponseTimeMs: elapsed.Milliseconds(),
		Timestamp:      e.now(),
	}

	go func() {
		recCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.perf.Record(recCtx, metric); err != nil {
			e.logger.Warn("performance recording failed", "userId", userID, "error", err)
		}
	}()
}

func externalResultID(res CachedResult, position int) string {
	if res.URL != "" {
		return res.URL
	}
	return fmt.Sprintf("external-%d", position)
}

func ceilShare(limit int, share float64) int {
	return int(math.Ceil(float64(limit) * share))
}
