// Package store provides the persistent storage abstraction for memories,
// sessions, cached search results and learning state.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Well-known collection names.
const (
	CollectionMemories    = "memories"
	CollectionSessions    = "context_sessions"
	CollectionCache       = "external_cache"
	CollectionLearning    = "meta_learning_state"
	CollectionFeedback    = "feedback"
	CollectionPerformance = "performance_metrics"
)

// Store defines the interface for persistent key-value storage grouped
// into named collections.
type Store interface {
	// Put writes a record, replacing any existing value.
	Put(ctx context.Context, collection, key string, value []byte) error

	// Get retrieves a record. Returns NotFoundError if absent.
	Get(ctx context.Context, collection, key string) ([]byte, error)

	// Delete removes a record. Deleting an absent key is not an error.
	Delete(ctx context.Context, collection, key string) error

	// List returns all records in a collection whose key starts with
	// prefix, ordered by key. An empty prefix returns the whole
	// collection.
	List(ctx context.Context, collection, prefix string) ([]Record, error)

	// Update applies fn to the current value of a record atomically.
	// fn receives nil when the key is absent; the value fn returns
	// replaces the record. If fn returns an error the record is left
	// untouched and the error is returned.
	Update(ctx context.Context, collection, key string, fn func(current []byte) ([]byte, error)) error

	// Lifecycle
	Close() error
}

// Record is a single key-value entry returned by List.
type Record struct {
	Key   string
	Value []byte
}

// NotFoundError indicates that the requested record was not found.
type NotFoundError struct {
	Collection string
	Key        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s record not found: %s", e.Collection, e.Key)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// UnavailableError indicates that the storage backend is unavailable.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// SerializationError indicates a failure encoding or decoding a record.
type SerializationError struct {
	Operation string
	Cause     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error during %s: %v", e.Operation, e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}
