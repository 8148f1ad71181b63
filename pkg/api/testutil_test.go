package api

import (
	"context"
	"sync"

	"github.com/mnemo/mnemo/pkg/retrieval"
	"github.com/mnemo/mnemo/pkg/store/memory"
	"github.com/mnemo/mnemo/pkg/vectorindex"
	"github.com/mnemo/mnemo/pkg/websearch"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

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

type fakeSearcher struct{}

func (fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error) {
	return []websearch.Result{
		{Title: "result", URL: "https://example.com/result", Content: "external content", Score: 1.0},
	}, nil
}

func newTestEngine() *retrieval.Engine {
	return retrieval.NewEngine(retrieval.EngineDeps{
		Store:    memory.NewMemoryStore(),
		Embedder: fakeEmbedder{},
		Index:    &fakeIndex{},
		Searcher: fakeSearcher{},
		Logger:   testLog(),
	}, retrieval.EngineConfig{})
}
