// Package vectorindex provides similarity search over memory embeddings.
package vectorindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"
)

// ErrDimensionMismatch indicates a vector of the wrong dimension.
var ErrDimensionMismatch = errors.New("vectorindex: dimension mismatch")

// Match is a single search hit.
type Match struct {
	ID         string
	Similarity float64
}

// Index provides nearest neighbor search using a brute-force approach
// with cosine similarity. For workloads beyond ~100K vectors this can
// be replaced with an HNSW implementation behind the same interface.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[string][]float32 // memoryID -> vector
	owners    map[string]string    // memoryID -> userID
}

// NewIndex creates a new vector index with the given dimension.
func NewIndex(dimension int) *Index {
	return &Index{
		dimension: dimension,
		vectors:   make(map[string][]float32),
		owners:    make(map[string]string),
	}
}

// Add inserts or replaces a vector in the index.
func (x *Index) Add(memoryID, userID string, vector []float32) error {
	if len(vector) != x.dimension {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, x.dimension, len(vector))
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.vectors[memoryID] = vector
	x.owners[memoryID] = userID
	return nil
}

// Delete removes a vector from the index.
func (x *Index) Delete(memoryID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.vectors, memoryID)
	delete(x.owners, memoryID)
}

// Search finds the top-K most similar vectors to the query for a user.
// Matches are ordered by descending similarity.
func (x *Index) Search(query []float32, topK int, userID string) ([]Match, error) {
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, x.dimension, len(query))
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var matches []Match
	for id, vec := range x.vectors {
		if userID != "" && x.owners[id] != userID {
			continue
		}
		matches = append(matches, Match{
			ID:         id,
			Similarity: cosineSimilarity(query, vec),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteByUser removes all vectors owned by a user.
func (x *Index) DeleteByUser(userID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, owner := range x.owners {
		if owner == userID {
			delete(x.vectors, id)
			delete(x.owners, id)
		}
	}
}

// Len returns the number of vectors in the index.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Save persists the index to a file.
// Format: [dimension:uint32][count:uint32] then for each entry:
// [idLen:uint16][id:bytes][ownerLen:uint16][owner:bytes][vector:float32*dim]
func (x *Index) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vectorindex: save failed: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(x.dimension)); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(x.vectors))); err != nil {
		return err
	}

	for id, vec := range x.vectors {
		owner := x.owners[id]
		if err := writeString(f, id); err != nil {
			return err
		}
		if err := writeString(f, owner); err != nil {
			return err
		}
		if err := binary.Write(f, binary.LittleEndian, vec); err != nil {
			return err
		}
	}
	return nil
}

// Load restores the index from a file.
func (x *Index) Load(path string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("vectorindex: load failed: %w", err)
	}
	defer f.Close()

	var dim, count uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return err
	}
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return err
	}

	if int(dim) != x.dimension {
		return fmt.Errorf("%w: file has %d, index expects %d", ErrDimensionMismatch, dim, x.dimension)
	}

	vectors := make(map[string][]float32, count)
	owners := make(map[string]string, count)

	for i := uint32(0); i < count; i++ {
		id, err := readString(f)
		if err != nil {
			return err
		}
		owner, err := readString(f)
		if err != nil {
			return err
		}

		vec := make([]float32, dim)
		if err := binary.Read(f, binary.LittleEndian, vec); err != nil {
			return err
		}

		vectors[id] = vec
		owners[id] = owner
	}

	x.vectors = vectors
	x.owners = owners
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a []float32, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dotProduct / denom
}
