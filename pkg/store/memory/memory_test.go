package memory

import (
	"context"
	"testing"

	"github.com/mnemo/mnemo/pkg/store"
)

func TestMemoryStore_Conformance(t *testing.T) {
	suite := &store.TestSuite{
		NewStore: func(t *testing.T) store.Store {
			return NewMemoryStore()
		},
	}
	suite.RunAllTests(t)
}

func TestMemoryStore_ClosedOperations(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if err := st.Put(ctx, store.CollectionMemories, "k", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := st.Put(ctx, store.CollectionMemories, "k", []byte("v")); err == nil {
		t.Error("expected error on Put after Close")
	}
	if _, err := st.Get(ctx, store.CollectionMemories, "k"); err == nil {
		t.Error("expected error on Get after Close")
	}
	if _, err := st.List(ctx, store.CollectionMemories, ""); err == nil {
		t.Error("expected error on List after Close")
	}
}

func TestMemoryStore_ValueIsolation(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()

	ctx := context.Background()

	original := []byte("immutable")
	if err := st.Put(ctx, store.CollectionMemories, "k", original); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Mutating the slice passed to Put must not affect the stored value.
	original[0] = 'X'

	value, err := st.Get(ctx, store.CollectionMemories, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "immutable" {
		t.Errorf("stored value aliased caller slice: %s", value)
	}

	// Mutating a returned slice must not affect subsequent reads.
	value[0] = 'Y'
	again, err := st.Get(ctx, store.CollectionMemories, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(again) != "immutable" {
		t.Errorf("returned value aliased stored slice: %s", again)
	}
}
