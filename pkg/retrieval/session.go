package retrieval

import (
	"context"
	"time"

	"github.com/mnemo/mnemo/pkg/store"
)

// DefaultSessionID is used when a caller does not supply a session.
const DefaultSessionID = "default"

const (
	initialImportance = 0.8
	importanceGrowth  = 1.1
	defaultImportance = 0.5
)

// SessionStore tracks which memories are active per user session and
// compounds their importance on repeated access.
type SessionStore struct {
	repo   *Repository
	logger retrievalLogger
}

// NewSessionStore creates a session store.
func NewSessionStore(repo *Repository, logger retrievalLogger) *SessionStore {
	if logger == nil {
		logger = nopLogger{}
	}
	return &SessionStore{repo: repo, logger: logger}
}

// Touch records access to the given memories within a session, creating
// the session if absent. First access tracks a memory at importance
// 0.8; repeated access multiplies importance by 1.1 capped at 1.0 and
// increments the access count. A session never holds more than one
// entry per memory ID.
func (s *SessionStore) Touch(ctx context.Context, userID, sessionID string, memoryIDs []string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	if len(memoryIDs) == 0 {
		return nil
	}

	now := time.Now()

	return s.repo.UpdateSession(ctx, userID, sessionID, func(session *ContextSession) (*ContextSession, error) {
		if session == nil {
			session = &ContextSession{
				UserID:    userID,
				SessionID: sessionID,
				CreatedAt: now,
			}
		}
		session.LastAccessed = now

		for _, memoryID := range memoryIDs {
			idx := -1
			for i := range session.ActiveMemories {
				if session.ActiveMemories[i].MemoryID == memoryID {
					idx = i
					break
				}
			}
			if idx >= 0 {
				entry := &session.ActiveMemories[idx]
				entry.Importance = min1(entry.Importance * importanceGrowth)
				entry.AccessCount++
				entry.LastAccessed = now
			} else {
				session.ActiveMemories = append(session.ActiveMemories, ContextMemory{
					MemoryID:     memoryID,
					Importance:   initialImportance,
					LastAccessed: now,
					AccessCount:  1,
				})
			}
		}

		return session, nil
	})
}

// Importance returns the session-tracked importance of a memory for a
// user, looking across all of the user's sessions. Memories never
// accessed in any session default to 0.5. When a memory is tracked in
// several sessions the most recently accessed entry wins.
func (s *SessionStore) Importance(ctx context.Context, userID, memoryID string) float64 {
	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		s.logger.Warn("session importance lookup failed", "userId", userID, "error", err)
		return defaultImportance
	}

	importance := defaultImportance
	var latest time.Time
	found := false

	for _, session := range sessions {
		for i := range session.ActiveMemories {
			entry := &session.ActiveMemories[i]
			if entry.MemoryID != memoryID {
				continue
			}
			if !found || entry.LastAccessed.After(latest) {
				importance = entry.Importance
				latest = entry.LastAccessed
				found = true
			}
		}
	}

	return importance
}

// Get returns a user's session, or store.NotFoundError if absent.
func (s *SessionStore) Get(ctx context.Context, userID, sessionID string) (*ContextSession, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	return s.repo.GetSession(ctx, userID, sessionID)
}

// CleanupStale deletes sessions whose lastAccessed is older than
// maxAge and returns the number deleted.
func (s *SessionStore) CleanupStale(ctx context.Context, maxAge time.Duration) (int, error) {
	sessions, err := s.repo.ListSessions(ctx, "")
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0

	for _, session := range sessions {
		if !session.LastAccessed.Before(cutoff) {
			continue
		}
		if err := s.repo.DeleteSession(ctx, session.UserID, session.SessionID); err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

func min1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
