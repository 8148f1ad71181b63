package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VectorWriter maintains the similarity index alongside the store.
type VectorWriter interface {
	Add(memoryID, userID string, vector []float32) error
	Delete(memoryID string)
}

// MemoryService ingests and manages memory records so the retrieval
// loop is exercisable end to end. Content edits and knowledge-graph
// analytics are out of scope.
type MemoryService struct {
	repo     *Repository
	embedder Embedder
	index    VectorWriter
	logger   retrievalLogger
	now      func() time.Time
}

// NewMemoryService creates a memory service.
func NewMemoryService(repo *Repository, embedder Embedder, index VectorWriter, logger retrievalLogger) *MemoryService {
	if logger == nil {
		logger = nopLogger{}
	}
	return &MemoryService{
		repo:     repo,
		embedder: embedder,
		index:    index,
		logger:   logger,
		now:      time.Now,
	}
}

// Add embeds and persists a new memory and registers its vector.
func (s *MemoryService) Add(ctx context.Context, userID, content string, importance *float64, metadata map[string]string) (*MemoryRecord, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if content == "" {
		return nil, ErrInvalidQuery
	}
	if importance != nil && (*importance < 0 || *importance > 1) {
		return nil, fmt.Errorf("retrieval: importance must be in [0,1], got %v", *importance)
	}

	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed memory: %w", err)
	}

	record := &MemoryRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		Content:    content,
		Embedding:  vector,
		CreatedAt:  s.now(),
		Importance: importance,
		Metadata:   metadata,
	}

	if err := s.repo.SaveMemory(ctx, record); err != nil {
		return nil, err
	}
	if err := s.index.Add(record.ID, userID, vector); err != nil {
		// The record is durable; an index failure costs recall until
		// the index is rebuilt, so surface it.
		return nil, fmt.Errorf("retrieval: index memory: %w", err)
	}

	return record, nil
}

// Get retrieves a memory record.
func (s *MemoryService) Get(ctx context.Context, userID, memoryID string) (*MemoryRecord, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if memoryID == "" {
		return nil, ErrInvalidMemoryID
	}
	return s.repo.GetMemory(ctx, userID, memoryID)
}

// Delete removes a memory record and its vector.
func (s *MemoryService) Delete(ctx context.Context, userID, memoryID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	if memoryID == "" {
		return ErrInvalidMemoryID
	}
	if err := s.repo.DeleteMemory(ctx, userID, memoryID); err != nil {
		return err
	}
	s.index.Delete(memoryID)
	return nil
}

// List returns all of a user's memories.
func (s *MemoryService) List(ctx context.Context, userID string) ([]*MemoryRecord, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListMemories(ctx, userID)
}

// Reindex rebuilds the vector index from the store, used at startup
// when no index snapshot is available. An empty userID reindexes every
// user's memories.
func (s *MemoryService) Reindex(ctx context.Context, userID string) (int, error) {
	memories, err := s.repo.ListMemories(ctx, userID)
	if err != nil {
		return 0, err
	}
	indexed := 0
	for _, m := range memories {
		if len(m.Embedding) == 0 {
			continue
		}
		if err := s.index.Add(m.ID, m.UserID, m.Embedding); err != nil {
			s.logger.Warn("reindex skipped memory", "memoryId", m.ID, "error", err)
			continue
		}
		indexed++
	}
	return indexed, nil
}
