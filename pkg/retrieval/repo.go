package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo/mnemo/pkg/store"
)

// Repository provides typed access to the retrieval collections on top
// of the document store. Keys for per-user collections are prefixed
// with the user ID so range listing by user is a prefix scan.
type Repository struct {
	store store.Store
}

// NewRepository creates a repository over the given store.
func NewRepository(st store.Store) *Repository {
	return &Repository{store: st}
}

func memoryKey(userID, memoryID string) string {
	return fmt.Sprintf("%s/%s", userID, memoryID)
}

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("%s/%s", userID, sessionID)
}

// timeOrderedKey builds an append-only key that sorts chronologically
// within a user's prefix.
func timeOrderedKey(userID string, ts time.Time) string {
	return fmt.Sprintf("%s/%020d-%s", userID, ts.UnixNano(), uuid.New().String()[:8])
}

func marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &store.SerializationError{Operation: "marshal", Cause: err}
	}
	return data, nil
}

func unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &store.SerializationError{Operation: "unmarshal", Cause: err}
	}
	return nil
}

// SaveMemory persists a memory record.
func (r *Repository) SaveMemory(ctx context.Context, m *MemoryRecord) error {
	data, err := marshal(m)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, store.CollectionMemories, memoryKey(m.UserID, m.ID), data)
}

// GetMemory retrieves a memory record.
func (r *Repository) GetMemory(ctx context.Context, userID, memoryID string) (*MemoryRecord, error) {
	data, err := r.store.Get(ctx, store.CollectionMemories, memoryKey(userID, memoryID))
	if err != nil {
		return nil, err
	}
	var m MemoryRecord
	if err := unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMemory removes a memory record.
func (r *Repository) DeleteMemory(ctx context.Context, userID, memoryID string) error {
	return r.store.Delete(ctx, store.CollectionMemories, memoryKey(userID, memoryID))
}

// ListMemories returns all memory records for a user. An empty userID
// lists every user's records.
func (r *Repository) ListMemories(ctx context.Context, userID string) ([]*MemoryRecord, error) {
	prefix := ""
	if userID != "" {
		prefix = userID + "/"
	}
	records, err := r.store.List(ctx, store.CollectionMemories, prefix)
	if err != nil {
		return nil, err
	}
	memories := make([]*MemoryRecord, 0, len(records))
	for _, rec := range records {
		var m MemoryRecord
		if err := unmarshal(rec.Value, &m); err != nil {
			return nil, err
		}
		memories = append(memories, &m)
	}
	return memories, nil
}

// GetSession retrieves a context session.
func (r *Repository) GetSession(ctx context.Context, userID, sessionID string) (*ContextSession, error) {
	data, err := r.store.Get(ctx, store.CollectionSessions, sessionKey(userID, sessionID))
	if err != nil {
		return nil, err
	}
	var s ContextSession
	if err := unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSession applies fn to a session document atomically. fn
// receives nil when the session does not exist yet and returns the
// session to persist.
func (r *Repository) UpdateSession(ctx context.Context, userID, sessionID string, fn func(*ContextSession) (*ContextSession, error)) error {
	return r.store.Update(ctx, store.CollectionSessions, sessionKey(userID, sessionID), func(current []byte) ([]byte, error) {
		var session *ContextSession
		if current != nil {
			session = &ContextSession{}
			if err := unmarshal(current, session); err != nil {
				return nil, err
			}
		}
		next, err := fn(session)
		if err != nil {
			return nil, err
		}
		return marshal(next)
	})
}

// ListSessions returns sessions for a user; an empty userID returns all
// sessions.
func (r *Repository) ListSessions(ctx context.Context, userID string) ([]*ContextSession, error) {
	prefix := ""
	if userID != "" {
		prefix = userID + "/"
	}
	records, err := r.store.List(ctx, store.CollectionSessions, prefix)
	if err != nil {
		return nil, err
	}
	sessions := make([]*ContextSession, 0, len(records))
	for _, rec := range records {
		var s ContextSession
		if err := unmarshal(rec.Value, &s); err != nil {
			return nil, err
		}
		sessions = append(sessions, &s)
	}
	return sessions, nil
}

// DeleteSession removes a context session.
func (r *Repository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return r.store.Delete(ctx, store.CollectionSessions, sessionKey(userID, sessionID))
}

// GetLearningState retrieves the meta-learning state for a user.
func (r *Repository) GetLearningState(ctx context.Context, userID string) (*MetaLearningState, error) {
	data, err := r.store.Get(ctx, store.CollectionLearning, userID)
	if err != nil {
		return nil, err
	}
	var s MetaLearningState
	if err := unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateLearningState applies fn to a user's learning state atomically.
// fn receives nil when the user has no state yet.
func (r *Repository) UpdateLearningState(ctx context.Context, userID string, fn func(*MetaLearningState) (*MetaLearningState, error)) error {
	return r.store.Update(ctx, store.CollectionLearning, userID, func(current []byte) ([]byte, error) {
		var state *MetaLearningState
		if current != nil {
			state = &MetaLearningState{}
			if err := unmarshal(current, state); err != nil {
				return nil, err
			}
		}
		next, err := fn(state)
		if err != nil {
			return nil, err
		}
		return marshal(next)
	})
}

// AppendFeedback persists an immutable feedback event. The event's ID
// and key are derived from its timestamp.
func (r *Repository) AppendFeedback(ctx context.Context, ev *FeedbackEvent) error {
	data, err := marshal(ev)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, store.CollectionFeedback, timeOrderedKey(ev.UserID, ev.Timestamp), data)
}

// ListFeedback returns feedback events for a user recorded at or after
// since, newest first, capped at limit.
func (r *Repository) ListFeedback(ctx context.Context, userID string, since time.Time, limit int) ([]*FeedbackEvent, error) {
	records, err := r.store.List(ctx, store.CollectionFeedback, userID+"/")
	if err != nil {
		return nil, err
	}

	var events []*FeedbackEvent
	// Keys sort chronologically; walk backwards for newest first.
	for i := len(records) - 1; i >= 0; i-- {
		var ev FeedbackEvent
		if err := unmarshal(records[i].Value, &ev); err != nil {
			return nil, err
		}
		if ev.Timestamp.Before(since) {
			break
		}
		events = append(events, &ev)
		if limit > 0 && len(events) >= limit {
			break
		}
	}
	return events, nil
}

// AppendMetric persists an append-only performance metric.
func (r *Repository) AppendMetric(ctx context.Context, m *PerformanceMetric) error {
	data, err := marshal(m)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, store.CollectionPerformance, timeOrderedKey(m.UserID, m.Timestamp), data)
}

// ListMetrics returns performance metrics recorded at or after since,
// newest first, capped at limit. An empty userID returns system-wide
// metrics.
func (r *Repository) ListMetrics(ctx context.Context, userID string, since time.Time, limit int) ([]*PerformanceMetric, error) {
	prefix := ""
	if userID != "" {
		prefix = userID + "/"
	}
	records, err := r.store.List(ctx, store.CollectionPerformance, prefix)
	if err != nil {
		return nil, err
	}

	var metrics []*PerformanceMetric
	for i := len(records) - 1; i >= 0; i-- {
		var m PerformanceMetric
		if err := unmarshal(records[i].Value, &m); err != nil {
			return nil, err
		}
		if m.Timestamp.Before(since) {
			if userID != "" {
				break
			}
			// System-wide listings interleave users, so order across
			// the scan is not chronological; keep filtering.
			continue
		}
		metrics = append(metrics, &m)
		if limit > 0 && len(metrics) >= limit {
			break
		}
	}
	return metrics, nil
}
