package retrieval

import (
	"context"
	"time"
)

// Sweep defaults.
const (
	DefaultSessionMaxAge = 30 * 24 * time.Hour
	DefaultSweepInterval = time.Hour
)

// SweeperConfig controls the maintenance loop.
type SweeperConfig struct {
	Interval      time.Duration
	SessionMaxAge time.Duration
	CacheSweepAge time.Duration
	CacheBatch    int
}

// Sweeper periodically deletes stale context sessions and expired
// cache entries in a background goroutine.
type Sweeper struct {
	sessions *SessionStore
	cache    ResultCache
	cfg      SweeperConfig
	logger   retrievalLogger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a maintenance sweeper.
func NewSweeper(sessions *SessionStore, cache ResultCache, cfg SweeperConfig, logger retrievalLogger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSweepInterval
	}
	if cfg.SessionMaxAge <= 0 {
		cfg.SessionMaxAge = DefaultSessionMaxAge
	}
	if cfg.CacheSweepAge <= 0 {
		cfg.CacheSweepAge = DefaultSweepAge
	}
	if cfg.CacheBatch <= 0 {
		cfg.CacheBatch = DefaultSweepBatch
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Sweeper{
		sessions: sessions,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(parentCtx context.Context) {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// runOnce executes a single maintenance pass. Errors are logged and
// never abort the loop.
func (s *Sweeper) runOnce(ctx context.Context) {
	if deleted, err := s.sessions.CleanupStale(ctx, s.cfg.SessionMaxAge); err != nil {
		s.logger.Warn("session cleanup failed", "error", err)
	} else if deleted > 0 {
		s.logger.Info("cleaned up stale sessions", "deleted", deleted)
	}

	if deleted, err := s.cache.Sweep(ctx, s.cfg.CacheSweepAge, s.cfg.CacheBatch); err != nil {
		s.logger.Warn("cache sweep failed", "error", err)
	} else if deleted > 0 {
		s.logger.Info("swept expired cache entries", "deleted", deleted)
	}
}

// Stop cancels the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}
