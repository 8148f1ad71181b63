// Package badger provides a Badger-based implementation of the store interface.
package badger

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/mnemo/mnemo/pkg/store"
)

// Config holds configuration for BadgerStore.
type Config struct {
	Path              string
	SyncWrites        bool
	ValueLogFileSize  int64
	NumVersionsToKeep int
	InMemory          bool
}

// BadgerStore implements the Store interface using Badger.
type BadgerStore struct {
	db     *badger.DB
	config *Config
}

// NewBadgerStore creates a new Badger store instance.
func NewBadgerStore(config *Config) (*BadgerStore, error) {
	opts := badger.DefaultOptions(config.Path)
	opts.SyncWrites = config.SyncWrites
	opts.InMemory = config.InMemory
	if config.InMemory {
		opts.Dir = ""
		opts.ValueDir = ""
	}
	if config.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = config.ValueLogFileSize
	}
	if config.NumVersionsToKeep > 0 {
		opts.NumVersionsToKeep = config.NumVersionsToKeep
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &store.UnavailableError{Cause: err}
	}

	return &BadgerStore{
		db:     db,
		config: config,
	}, nil
}

// recordKey builds the full key for a collection entry.
// Collection names never contain '/'.
func recordKey(collection, key string) []byte {
	return []byte(fmt.Sprintf("%s/%s", collection, key))
}

// Put writes a record, replacing any existing value.
func (b *BadgerStore) Put(ctx context.Context, collection, key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(collection, key), value)
	})
}

// Get retrieves a record by key.
func (b *BadgerStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	var value []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(collection, key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return &store.NotFoundError{Collection: collection, Key: key}
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Delete removes a record. Deleting an absent key is not an error.
func (b *BadgerStore) Delete(ctx context.Context, collection, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(collection, key))
	})
}

// List returns records whose key starts with prefix, ordered by key.
func (b *BadgerStore) List(ctx context.Context, collection, prefix string) ([]store.Record, error) {
	var records []store.Record

	fullPrefix := recordKey(collection, prefix)
	trim := fmt.Sprintf("%s/", collection)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = fullPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := strings.TrimPrefix(string(item.Key()), trim)

			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			records = append(records, store.Record{Key: key, Value: value})
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return records, nil
}

// Update applies fn to the current value of a record within a single
// read-modify-write transaction.
func (b *BadgerStore) Update(ctx context.Context, collection, key string, fn func(current []byte) ([]byte, error)) error {
	fullKey := recordKey(collection, key)

	return b.db.Update(func(txn *badger.Txn) error {
		var current []byte

		item, err := txn.Get(fullKey)
		if err == nil {
			current, err = item.ValueCopy(nil)
			if err != nil {
				return err
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		return txn.Set(fullKey, next)
	})
}

// Close closes the Badger database.
func (b *BadgerStore) Close() error {
	// Value log GC is opportunistic; ErrNoRewrite just means nothing to do.
	_ = b.db.RunValueLogGC(0.5)

	return b.db.Close()
}
