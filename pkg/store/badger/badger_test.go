package badger

import (
	"context"
	"testing"

	"github.com/mnemo/mnemo/pkg/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := NewBadgerStore(&Config{
		Path:       t.TempDir(),
		SyncWrites: false,
	})
	if err != nil {
		t.Fatalf("failed to open badger store: %v", err)
	}
	return st
}

func TestBadgerStore_Conformance(t *testing.T) {
	suite := &store.TestSuite{
		NewStore: newTestStore,
	}
	suite.RunAllTests(t)
}

func TestBadgerStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := NewBadgerStore(&Config{Path: dir})
	if err != nil {
		t.Fatalf("failed to open badger store: %v", err)
	}

	if err := st.Put(ctx, store.CollectionMemories, "mem-1", []byte("persisted")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopen and verify the record survived.
	st, err = NewBadgerStore(&Config{Path: dir})
	if err != nil {
		t.Fatalf("failed to reopen badger store: %v", err)
	}
	defer st.Close()

	value, err := st.Get(ctx, store.CollectionMemories, "mem-1")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(value) != "persisted" {
		t.Errorf("expected persisted value, got %s", value)
	}
}

func TestBadgerStore_InMemoryMode(t *testing.T) {
	st, err := NewBadgerStore(&Config{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open in-memory badger store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Put(ctx, store.CollectionCache, "q", []byte("r")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value, err := st.Get(ctx, store.CollectionCache, "q")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "r" {
		t.Errorf("unexpected value: %s", value)
	}
}
