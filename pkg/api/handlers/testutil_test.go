package handlers

import (
	"context"
	"sync"

	"github.com/mnemo/mnemo/pkg/logger"
	"github.com/mnemo/mnemo/pkg/retrieval"
	"github.com/mnemo/mnemo/pkg/store/memory"
	"github.com/mnemo/mnemo/pkg/vectorindex"
	"github.com/mnemo/mnemo/pkg/websearch"
)

// fakeEmbedder returns a fixed vector for any text.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// fakeIndex serves canned matches and records writes.
type fakeIndex struct {
	mu      sync.Mutex
	matches []vectorindex.Match
}

func (f *fakeIndex) Search(query []float32, topK int, userID string) ([]vectorindex.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeIndex) Add(memoryID, userID string, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append(f.matches, vectorindex.Match{ID: memoryID, Similarity: 0.9})
	return nil
}

func (f *fakeIndex) Delete(memoryID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.matches {
		if m.ID == memoryID {
			f.matches = append(f.matches[:i], f.matches[i+1:]...)
			return
		}
	}
}

// fakeSearcher serves canned external results.
type fakeSearcher struct {
	results []websearch.Result
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error) {
	if maxResults < len(f.results) {
		return f.results[:maxResults], nil
	}
	return f.results, nil
}

func testLogger() logger.Logger {
	return logger.New(&logger.Config{
		Level:  logger.ErrorLevel,
		Format: "json",
		Output: "stdout",
	})
}

// newTestEngine wires a retrieval engine over an in-memory store with
// fake embedding, index and external search dependencies.
func newTestEngine() (*retrieval.Engine, *fakeSearcher) {
	searcher := &fakeSearcher{}
	eng := retrieval.NewEngine(retrieval.EngineDeps{
		Store:    memory.NewMemoryStore(),
		Embedder: fakeEmbedder{},
		Index:    &fakeIndex{},
		Searcher: searcher,
		Logger:   testLogger(),
	}, retrieval.EngineConfig{})
	return eng, searcher
}
