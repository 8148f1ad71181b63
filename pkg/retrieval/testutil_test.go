package retrieval

import (
	"context"
	"errors"
	"sync"

	"github.com/mnemo/mnemo/pkg/store/memory"
	"github.com/mnemo/mnemo/pkg/vectorindex"
	"github.com/mnemo/mnemo/pkg/websearch"
)

// fakeEmbedder returns a fixed vector per text, or fails.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

// fakeIndex serves canned matches and records writes.
type fakeIndex struct {
	mu      sync.Mutex
	matches []vectorindex.Match
	err     error
	added   map[string][]float32
	deleted []string
}

func newFakeIndex(matches ...vectorindex.Match) *fakeIndex {
	return &fakeIndex{matches: matches, added: make(map[string][]float32)}
}

func (f *fakeIndex) Search(query []float32, topK int, userID string) ([]vectorindex.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeIndex) Add(memoryID, userID string, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added[memoryID] = vector
	return nil
}

func (f *fakeIndex) Delete(memoryID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, memoryID)
}

// fakeSearcher serves canned external results or fails.
type fakeSearcher struct {
	mu      sync.Mutex
	results []websearch.Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if maxResults < len(f.results) {
		return f.results[:maxResults], nil
	}
	return f.results, nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errUpstreamDown = errors.New("upstream down")

// newTestRepo builds a repository over a fresh in-memory store.
func newTestRepo() *Repository {
	return NewRepository(memory.NewMemoryStore())
}
