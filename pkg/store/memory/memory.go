// Package memory provides an in-memory implementation of the store interface,
// suitable for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mnemo/mnemo/pkg/store"
)

// MemoryStore implements the Store interface with in-process maps.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
	closed      bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string][]byte),
	}
}

// Put writes a record, replacing any existing value.
func (m *MemoryStore) Put(ctx context.Context, collection, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &store.UnavailableError{Cause: errClosed}
	}

	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string][]byte)
		m.collections[collection] = coll
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	coll[key] = buf
	return nil
}

// Get retrieves a record by key.
func (m *MemoryStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, &store.UnavailableError{Cause: errClosed}
	}

	coll, ok := m.collections[collection]
	if !ok {
		return nil, &store.NotFoundError{Collection: collection, Key: key}
	}
	value, ok := coll[key]
	if !ok {
		return nil, &store.NotFoundError{Collection: collection, Key: key}
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	return buf, nil
}

// Delete removes a record. Deleting an absent key is not an error.
func (m *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &store.UnavailableError{Cause: errClosed}
	}

	if coll, ok := m.collections[collection]; ok {
		delete(coll, key)
	}
	return nil
}

// List returns records whose key starts with prefix, ordered by key.
func (m *MemoryStore) List(ctx context.Context, collection, prefix string) ([]store.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, &store.UnavailableError{Cause: errClosed}
	}

	coll := m.collections[collection]

	records := make([]store.Record, 0, len(coll))
	for key, value := range coll {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		buf := make([]byte, len(value))
		copy(buf, value)
		records = append(records, store.Record{Key: key, Value: buf})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})

	return records, nil
}

// Update applies fn to the current value of a record atomically.
func (m *MemoryStore) Update(ctx context.Context, collection, key string, fn func(current []byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &store.UnavailableError{Cause: errClosed}
	}

	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string][]byte)
		m.collections[collection] = coll
	}

	var current []byte
	if existing, ok := coll[key]; ok {
		current = make([]byte, len(existing))
		copy(current, existing)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	buf := make([]byte, len(next))
	copy(buf, next)
	coll[key] = buf
	return nil
}

// Close marks the store as closed. Subsequent operations fail.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.collections = nil
	return nil
}

var errClosed = &closedError{}

type closedError struct{}

func (*closedError) Error() string { return "store is closed" }
