// Package retrieval implements the adaptive hybrid retrieval engine:
// context-weighted recall over stored memories, fusion with cached or
// live external search results, and a per-user meta-learning loop that
// adapts fusion weights from feedback.
package retrieval

import (
	"errors"
	"time"
)

// Sentinel errors for the retrieval engine.
var (
	ErrInvalidUserID       = errors.New("retrieval: invalid user ID")
	ErrInvalidQuery        = errors.New("retrieval: invalid query")
	ErrInvalidSatisfaction = errors.New("retrieval: satisfaction must be in [0,1]")
	ErrInvalidMemoryID     = errors.New("retrieval: invalid memory ID")
	ErrNotFound            = errors.New("retrieval: record not found")
)

// Result sources.
const (
	SourceInternal = "internal"
	SourceExternal = "external"
)

// Learning strategies.
const (
	StrategyConservative = "conservative"
	StrategyBalanced     = "balanced"
	StrategyAggressive   = "aggressive"
)

// Weight sources reported by the adaptive weights accessor.
const (
	WeightSourceDefault   = "default"
	WeightSourceLearned   = "learned"
	WeightSourceOptimized = "optimized"
)

// MemoryRecord is a stored memory. The core fields are fixed; anything
// else callers want to attach goes into the typed Metadata extension.
type MemoryRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// Importance, when set, takes precedence over session-store
	// importance during weighting.
	Importance *float64 `json:"importance,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// WeightedMemory is a memory with its composite relevance score.
type WeightedMemory struct {
	Memory     MemoryRecord `json:"memory"`
	Similarity float64      `json:"similarity"`
	Recency    float64      `json:"recency"`
	Importance float64      `json:"importance"`
	FinalScore float64      `json:"finalScore"`
}

// ContextMemory tracks one memory's importance within a session.
type ContextMemory struct {
	MemoryID     string    `json:"memoryId"`
	Importance   float64   `json:"importance"`
	LastAccessed time.Time `json:"lastAccessed"`
	AccessCount  int       `json:"accessCount"`
}

// ContextSession is a per-user record of recently active memories.
// At most one ContextMemory entry exists per memory ID.
type ContextSession struct {
	UserID         string          `json:"userId"`
	SessionID      string          `json:"sessionId"`
	ActiveMemories []ContextMemory `json:"activeMemories"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastAccessed   time.Time       `json:"lastAccessed"`
}

// ExternalResult is a normalized result from the external search
// provider, before confidence assignment.
type ExternalResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// CachedResult is an external result stored in the cache with its
// position-derived confidence.
type CachedResult struct {
	Query      string    `json:"query"`
	Source     string    `json:"source"`
	Content    string    `json:"content"`
	Title      string    `json:"title,omitempty"`
	URL        string    `json:"url,omitempty"`
	Confidence float64   `json:"confidence"`
	CachedAt   time.Time `json:"cachedAt"`
}

// FusedResult is a single entry in the merged ranking returned by the
// fusion engine.
type FusedResult struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Title      string  `json:"title,omitempty"`
	URL        string  `json:"url,omitempty"`
	Confidence float64 `json:"confidence"`
	FusedScore float64 `json:"fusedScore"`
}

// MetaLearningState is the per-user adaptive state.
// internalWeight + externalWeight always sum to 1.0.
type MetaLearningState struct {
	UserID          string    `json:"userId"`
	InternalWeight  float64   `json:"internalWeight"`
	ExternalWeight  float64   `json:"externalWeight"`
	LearningRate    float64   `json:"learningRate"`
	TotalQueries    int64     `json:"totalQueries"`
	AvgSatisfaction float64   `json:"avgSatisfaction"`
	Strategy        string    `json:"strategy"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// AdaptiveWeights is the fusion weight pair the engine reads per call,
// with confidence and provenance.
type AdaptiveWeights struct {
	Internal   float64 `json:"internal"`
	External   float64 `json:"external"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// FeedbackEvent is an immutable record of a user satisfaction signal.
type FeedbackEvent struct {
	ID           string    `json:"id"`
	Query        string    `json:"query"`
	UserID       string    `json:"userId"`
	ResultIDs    []string  `json:"resultIds"`
	Satisfaction float64   `json:"satisfaction"`
	Feedback     string    `json:"feedback,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Result quality labels.
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// PerformanceMetric is an append-only record of one query's shape.
type PerformanceMetric struct {
	ID             string    `json:"id"`
	Query          string    `json:"query"`
	UserID         string    `json:"userId"`
	InternalCount  int       `json:"internalCount"`
	ExternalCount  int       `json:"externalCount"`
	AvgConfidence  float64   `json:"avgConfidence"`
	AvgFusedScore  float64   `json:"avgFusedScore"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
	ResultQuality  string    `json:"resultQuality"`
	Timestamp      time.Time `json:"timestamp"`
}

// retrievalLogger is the minimal logger interface used by this package.
type retrievalLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopLogger is a no-op logger.
type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
