package retrieval

import (
	"context"
	"time"

	"github.com/mnemo/mnemo/pkg/store"
)

// EngineConfig collects tunables for the assembled engine.
type EngineConfig struct {
	DefaultLimit      int
	CacheMaxAge       time.Duration
	RecencyWindowDays float64
	Learner           LearnerParams
	Sweeper           SweeperConfig
}

// Engine assembles the retrieval components behind one facade with a
// Start/Stop lifecycle.
type Engine struct {
	Repo     *Repository
	Sessions *SessionStore
	Weighter *Weighter
	Cache    ResultCache
	Fusion   *FusionEngine
	Feedback *FeedbackRecorder
	Learner  *MetaLearner
	Perf     *PerformanceRecorder
	Memories *MemoryService

	sweeper *Sweeper
	logger  retrievalLogger
	started bool
}

// EngineDeps are the externally provided capabilities.
type EngineDeps struct {
	Store    store.Store
	Embedder Embedder
	Index    interface {
		VectorSearcher
		VectorWriter
	}
	Searcher ExternalSearcher
	Cache    ResultCache // nil selects the store-backed cache
	Observer Observer
	Logger   retrievalLogger
}

// NewEngine wires the retrieval engine from its dependencies.
func NewEngine(deps EngineDeps, cfg EngineConfig) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	repo := NewRepository(deps.Store)
	sessions := NewSessionStore(repo, logger)

	var weighterOpts []WeighterOption
	if cfg.RecencyWindowDays > 0 {
		weighterOpts = append(weighterOpts, WithRecencyWindow(cfg.RecencyWindowDays))
	}
	weighter := NewWeighter(repo, sessions, deps.Embedder, deps.Index, logger, weighterOpts...)

	cache := deps.Cache
	if cache == nil {
		cache = NewStoreCache(deps.Store, logger)
	}

	learner := NewMetaLearner(repo, logger, WithLearnerParams(cfg.Learner))
	perf := NewPerformanceRecorder(repo, logger)

	var fusionOpts []FusionOption
	if cfg.DefaultLimit > 0 {
		fusionOpts = append(fusionOpts, WithDefaultLimit(cfg.DefaultLimit))
	}
	if cfg.CacheMaxAge > 0 {
		fusionOpts = append(fusionOpts, WithCacheMaxAge(cfg.CacheMaxAge))
	}
	if deps.Observer != nil {
		fusionOpts = append(fusionOpts, WithObserver(deps.Observer))
	}
	fusion := NewFusionEngine(weighter, cache, deps.Searcher, learner, perf, logger, fusionOpts...)

	feedback := NewFeedbackRecorder(repo, learner, deps.Observer, logger)
	memories := NewMemoryService(repo, deps.Embedder, deps.Index, logger)

	return &Engine{
		Repo:     repo,
		Sessions: sessions,
		Weighter: weighter,
		Cache:    cache,
		Fusion:   fusion,
		Feedback: feedback,
		Learner:  learner,
		Perf:     perf,
		Memories: memories,
		sweeper:  NewSweeper(sessions, cache, cfg.Sweeper, logger),
		logger:   logger,
	}
}

// Start launches background maintenance.
func (e *Engine) Start(ctx context.Context) {
	if e.started {
		return
	}
	e.started = true
	e.sweeper.Start(ctx)
	e.logger.Info("retrieval engine started")
}

// Stop shuts down background maintenance.
func (e *Engine) Stop() {
	if !e.started {
		return
	}
	e.started = false
	e.sweeper.Stop()
	e.logger.Info("retrieval engine stopped")
}
