package retrieval

import (
	"context"
	"sort"
	"time"

	"github.com/mnemo/mnemo/pkg/vectorindex"
)

// Composite score weights and recency decay constants.
const (
	similarityWeight = 0.5
	recencyWeight    = 0.25
	importanceWeight = 0.25

	recencyWindowDays = 90.0
	recencyFloor      = 0.1
	recencyDecaySpan  = 0.9
)

// Embedder converts query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher finds similar memory vectors for a user.
type VectorSearcher interface {
	Search(query []float32, topK int, userID string) ([]vectorindex.Match, error)
}

// Weighter ranks candidate memories by a composite of similarity,
// recency and importance.
type Weighter struct {
	repo       *Repository
	sessions   *SessionStore
	embedder   Embedder
	index      VectorSearcher
	logger     retrievalLogger
	windowDays float64
	now        func() time.Time
}

// WeighterOption configures a Weighter.
type WeighterOption func(*Weighter)

// WithRecencyWindow overrides the decay window in days.
func WithRecencyWindow(days float64) WeighterOption {
	return func(w *Weighter) {
		if days > 0 {
			w.windowDays = days
		}
	}
}

// NewWeighter creates a context weighter.
func NewWeighter(repo *Repository, sessions *SessionStore, embedder Embedder, index VectorSearcher, logger retrievalLogger, opts ...WeighterOption) *Weighter {
	if logger == nil {
		logger = nopLogger{}
	}
	w := &Weighter{
		repo:       repo,
		sessions:   sessions,
		embedder:   embedder,
		index:      index,
		logger:     logger,
		windowDays: recencyWindowDays,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// GetWeighted returns up to limit memories for a query ranked by
// composite score. The vector path degrades gracefully: if embedding
// or index search fails, the result is empty rather than an error.
// Returned memories are recorded as accessed in the session store as a
// fire-and-forget side effect.
func (w *Weighter) GetWeighted(ctx context.Context, query, userID, sessionID string, limit int) ([]WeightedMemory, error) {
	if query == "" {
		return nil, ErrInvalidQuery
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if limit <= 0 {
		limit = 10
	}

	vector, err := w.embedder.Embed(ctx, query)
	if err != nil {
		w.logger.Warn("embedding failed, returning empty recall", "userId", userID, "error", err)
		return []WeightedMemory{}, nil
	}

	// Over-fetch 2n candidates so re-ranking can change the top n.
	matches, err := w.index.Search(vector, 2*limit, userID)
	if err != nil {
		w.logger.Warn("vector search failed, returning empty recall", "userId", userID, "error", err)
		return []WeightedMemory{}, nil
	}

	now := w.now()
	weighted := make([]WeightedMemory, 0, len(matches))

	for _, match := range matches {
		record, err := w.repo.GetMemory(ctx, userID, match.ID)
		if err != nil {
			w.logger.Debug("indexed memory missing from store", "memoryId", match.ID, "error", err)
			continue
		}

		var importance float64
		if record.Importance != nil {
			importance = *record.Importance
		} else {
			importance = w.sessions.Importance(ctx, userID, match.ID)
		}

		recency := recencyScoreWindow(now.Sub(record.CreatedAt), w.windowDays)

		weighted = append(weighted, WeightedMemory{
			Memory:     *record,
			Similarity: match.Similarity,
			Recency:    recency,
			Importance: importance,
			FinalScore: similarityWeight*match.Similarity + recencyWeight*recency + importanceWeight*importance,
		})
	}

	sort.Slice(weighted, func(i, j int) bool {
		return weighted[i].FinalScore > weighted[j].FinalScore
	})

	if limit < len(weighted) {
		weighted = weighted[:limit]
	}

	if len(weighted) > 0 {
		ids := make([]string, len(weighted))
		for i := range weighted {
			ids[i] = weighted[i].Memory.ID
		}
		// Access bump must not block or fail the caller's response.
		go func() {
			touchCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := w.sessions.Touch(touchCtx, userID, sessionID, ids); err != nil {
				w.logger.Warn("session access bump failed", "userId", userID, "error", err)
			}
		}()
	}

	return weighted, nil
}

// recencyScore maps memory age to [0.1, 1.0] with linear decay over a
// 90-day window. Ages at or below zero score 1.0; the floor keeps old
// but relevant memories from collapsing to zero.
func recencyScore(age time.Duration) float64 {
	return recencyScoreWindow(age, recencyWindowDays)
}

func recencyScoreWindow(age time.Duration, windowDays float64) float64 {
	ageDays := age.Hours() / 24
	if ageDays <= 0 {
		return 1.0
	}
	score := 1.0 - (ageDays/windowDays)*recencyDecaySpan
	if score < recencyFloor {
		return recencyFloor
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
