// Package models defines API request/response data structures.
package models

import "time"

// SearchRequest represents a hybrid search request.
type SearchRequest struct {
	// Query is the search text.
	Query string `json:"query" validate:"required,min=1,max=2000" example:"how do b-tree indexes work"`

	// UserID scopes the search to one user's memories and learning state.
	UserID string `json:"user_id" validate:"required,min=1,max=100" example:"user-42"`

	// SessionID groups accesses for context tracking. Optional.
	SessionID string `json:"session_id,omitempty" validate:"max=100" example:"session-7"`

	// Limit caps the number of fused results.
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=100" example:"10"`
}

// SearchResult is one entry in the fused ranking.
type SearchResult struct {
	// ID identifies the result: a memory ID or an external URL.
	ID string `json:"id"`

	// Content is the result text.
	Content string `json:"content"`

	// Source is "internal" or "external".
	Source string `json:"source"`

	// Title is the external result title, if any.
	Title string `json:"title,omitempty"`

	// URL is the external result URL, if any.
	URL string `json:"url,omitempty"`

	// Confidence is the per-source confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// FusedScore is the weight-adjusted ranking score.
	FusedScore float64 `json:"fused_score"`
}

// SearchResponse represents a hybrid search response.
type SearchResponse struct {
	// Query is the search text as received.
	Query string `json:"query"`

	// Results is the fused ranking, best first.
	Results []SearchResult `json:"results"`

	// Count is the number of results returned.
	Count int `json:"count"`

	// ElapsedMs is the server-side search duration in milliseconds.
	ElapsedMs int64 `json:"elapsed_ms"`
}

// MemoryRequest represents a memory ingestion request.
type MemoryRequest struct {
	// UserID is the memory owner.
	UserID string `json:"user_id" validate:"required,min=1,max=100" example:"user-42"`

	// Content is the memory text.
	Content string `json:"content" validate:"required,min=1,max=10000" example:"Postgres uses B-tree indexes by default"`

	// Importance overrides session-derived importance when set.
	Importance *float64 `json:"importance,omitempty" validate:"omitempty,gte=0,lte=1" example:"0.8"`

	// Metadata holds optional key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty" example:"topic:databases"`
}

// MemoryResponse represents a stored memory.
type MemoryResponse struct {
	// ID is the memory identifier.
	ID string `json:"id"`

	// UserID is the memory owner.
	UserID string `json:"user_id"`

	// Content is the memory text.
	Content string `json:"content"`

	// Importance is the explicit importance, if one was set.
	Importance *float64 `json:"importance,omitempty"`

	// Metadata holds optional key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`

	// CreatedAt is the ingestion timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// MemoryListResponse represents a user's memory listing.
type MemoryListResponse struct {
	// Memories is the user's stored memories.
	Memories []MemoryResponse `json:"memories"`

	// Count is the number of memories returned.
	Count int `json:"count"`
}

// FeedbackRequest represents a satisfaction feedback submission.
type FeedbackRequest struct {
	// Query is the search text the feedback refers to.
	Query string `json:"query" validate:"required,min=1,max=2000" example:"how do b-tree indexes work"`

	// UserID is the feedback author.
	UserID string `json:"user_id" validate:"required,min=1,max=100" example:"user-42"`

	// ResultIDs are the result IDs the user saw.
	ResultIDs []string `json:"result_ids,omitempty"`

	// Satisfaction is the satisfaction score in [0,1].
	Satisfaction float64 `json:"satisfaction" validate:"gte=0,lte=1" example:"0.9"`

	// Feedback is optional free-form commentary.
	Feedback string `json:"feedback,omitempty" validate:"max=2000" example:"first result was exactly right"`
}

// FeedbackResponse represents a recorded feedback event.
type FeedbackResponse struct {
	// ID is the feedback event identifier.
	ID string `json:"id"`

	// Satisfaction is the recorded score.
	Satisfaction float64 `json:"satisfaction"`

	// Timestamp is when the event was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Message provides additional information.
	Message string `json:"message,omitempty"`
}

// LearningStateResponse represents a user's meta-learning state.
type LearningStateResponse struct {
	// UserID is the state owner.
	UserID string `json:"user_id"`

	// InternalWeight is the fusion weight for internal results.
	InternalWeight float64 `json:"internal_weight"`

	// ExternalWeight is the fusion weight for external results.
	ExternalWeight float64 `json:"external_weight"`

	// LearningRate is the current adaptation step size.
	LearningRate float64 `json:"learning_rate"`

	// TotalQueries counts applied feedback updates.
	TotalQueries int64 `json:"total_queries"`

	// AvgSatisfaction is the satisfaction moving average.
	AvgSatisfaction float64 `json:"avg_satisfaction"`

	// Strategy is the derived strategy label.
	Strategy string `json:"strategy"`

	// LastUpdated is the last update timestamp.
	LastUpdated time.Time `json:"last_updated"`
}

// AdaptiveWeightsResponse represents the weight pair fusion would use.
type AdaptiveWeightsResponse struct {
	// Internal is the internal fusion weight.
	Internal float64 `json:"internal"`

	// External is the external fusion weight.
	External float64 `json:"external"`

	// Confidence is the confidence in the learned weights.
	Confidence float64 `json:"confidence"`

	// Source is "default", "learned" or "optimized".
	Source string `json:"source"`
}

// PerformanceResponse represents a trailing-window performance report.
type PerformanceResponse struct {
	// UserID is the report scope; empty for the system-wide report.
	UserID string `json:"user_id,omitempty"`

	// WindowSeconds is the trailing window length in seconds.
	WindowSeconds int64 `json:"window_seconds"`

	// QueryCount is the number of queries in the window.
	QueryCount int `json:"query_count"`

	// AvgConfidence is the mean result confidence.
	AvgConfidence float64 `json:"avg_confidence"`

	// AvgFusedScore is the mean fused score.
	AvgFusedScore float64 `json:"avg_fused_score"`

	// AvgResponseMs is the mean response time in milliseconds.
	AvgResponseMs float64 `json:"avg_response_ms"`

	// QualityCounts counts queries per quality label.
	QualityCounts map[string]int `json:"quality_counts"`

	// GeneratedAt is the report timestamp.
	GeneratedAt time.Time `json:"generated_at"`
}
