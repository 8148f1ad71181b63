package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
)

// TestSuite defines a test suite that can be run against any Store
// implementation.
type TestSuite struct {
	NewStore func(t *testing.T) Store
}

// RunAllTests runs all store tests against the provided implementation.
func (s *TestSuite) RunAllTests(t *testing.T) {
	t.Run("PutGetDelete", s.TestPutGetDelete)
	t.Run("GetNotFound", s.TestGetNotFound)
	t.Run("DeleteAbsentKey", s.TestDeleteAbsentKey)
	t.Run("ListWithPrefix", s.TestListWithPrefix)
	t.Run("ListOrdering", s.TestListOrdering)
	t.Run("CollectionIsolation", s.TestCollectionIsolation)
	t.Run("AtomicUpdate", s.TestAtomicUpdate)
	t.Run("UpdateAbsentKey", s.TestUpdateAbsentKey)
	t.Run("UpdateError", s.TestUpdateError)
	t.Run("ConcurrentUpdates", s.TestConcurrentUpdates)
}

// TestPutGetDelete tests the basic record lifecycle.
func (s *TestSuite) TestPutGetDelete(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	ctx := context.Background()

	if err := st.Put(ctx, CollectionMemories, "mem-1", []byte(`{"content":"hello"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, err := st.Get(ctx, CollectionMemories, "mem-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != `{"content":"hello"}` {
		t.Errorf("unexpected value: %s", value)
	}

	// Overwrite
	if err := st.Put(ctx, CollectionMemories, "mem-1", []byte(`{"content":"updated"}`)); err != nil {
		t.Fatalf("Put (overwrite) failed: %v", err)
	}
	value, err = st.Get(ctx, CollectionMemories, "mem-1")
	if err != nil {
		t.Fatalf("Get (after overwrite) failed: %v", err)
	}
	if string(value) != `{"content":"updated"}` {
		t.Errorf("expected overwritten value, got %s", value)
	}

	if err := st.Delete(ctx, CollectionMemories, "mem-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := st.Get(ctx, CollectionMemories, "mem-1"); !IsNotFound(err) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
}

// TestGetNotFound tests that missing records return NotFoundError.
func (s *TestSuite) TestGetNotFound(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	_, err := st.Get(context.Background(), CollectionSessions, "missing")
	if err == nil {
		t.Fatal("expected error for missing record")
	}
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

// TestDeleteAbsentKey tests that deleting a missing key succeeds.
func (s *TestSuite) TestDeleteAbsentKey(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	if err := st.Delete(context.Background(), CollectionCache, "missing"); err != nil {
		t.Errorf("Delete of absent key should not fail: %v", err)
	}
}

// TestListWithPrefix tests prefix filtering.
func (s *TestSuite) TestListWithPrefix(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	ctx := context.Background()

	entries := map[string]string{
		"user-a/mem-1": "a1",
		"user-a/mem-2": "a2",
		"user-b/mem-1": "b1",
	}
	for key, value := range entries {
		if err := st.Put(ctx, CollectionMemories, key, []byte(value)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	records, err := st.List(ctx, CollectionMemories, "user-a/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for prefix, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Key != "user-a/mem-1" && rec.Key != "user-a/mem-2" {
			t.Errorf("unexpected key in prefix listing: %s", rec.Key)
		}
	}

	all, err := st.List(ctx, CollectionMemories, "")
	if err != nil {
		t.Fatalf("List (all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 records total, got %d", len(all))
	}
}

// TestListOrdering tests that List returns records ordered by key.
func (s *TestSuite) TestListOrdering(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	ctx := context.Background()

	for _, key := range []string{"c", "a", "b"} {
		if err := st.Put(ctx, CollectionFeedback, key, []byte(key)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	records, err := st.List(ctx, CollectionFeedback, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"a", "b", "c"} {
		if records[i].Key != want {
			t.Errorf("position %d: expected key %s, got %s", i, want, records[i].Key)
		}
	}
}

// TestCollectionIsolation tests that collections do not leak into each other.
func (s *TestSuite) TestCollectionIsolation(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	ctx := context.Background()

	if err := st.Put(ctx, CollectionMemories, "shared-key", []byte("memory")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := st.Put(ctx, CollectionCache, "shared-key", []byte("cache")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, err := st.Get(ctx, CollectionMemories, "shared-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "memory" {
		t.Errorf("expected memory collection value, got %s", value)
	}

	records, err := st.List(ctx, CollectionCache, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 || string(records[0].Value) != "cache" {
		t.Errorf("cache collection contaminated: %+v", records)
	}
}

// TestAtomicUpdate tests read-modify-write semantics.
func (s *TestSuite) TestAtomicUpdate(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	ctx := context.Background()

	if err := st.Put(ctx, CollectionLearning, "user-1", []byte("10")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	err := st.Update(ctx, CollectionLearning, "user-1", func(current []byte) ([]byte, error) {
		n, err := strconv.Atoi(string(current))
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(n + 5)), nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	value, err := st.Get(ctx, CollectionLearning, "user-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "15" {
		t.Errorf("expected 15, got %s", value)
	}
}

// TestUpdateAbsentKey tests that fn receives nil for a missing record.
func (s *TestSuite) TestUpdateAbsentKey(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	ctx := context.Background()

	err := st.Update(ctx, CollectionLearning, "fresh", func(current []byte) ([]byte, error) {
		if current != nil {
			t.Errorf("expected nil current for absent key, got %s", current)
		}
		return []byte("initialized"), nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	value, err := st.Get(ctx, CollectionLearning, "fresh")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "initialized" {
		t.Errorf("expected initialized, got %s", value)
	}
}

// TestUpdateError tests that a failing fn leaves the record untouched.
func (s *TestSuite) TestUpdateError(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	ctx := context.Background()

	if err := st.Put(ctx, CollectionLearning, "user-1", []byte("original")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	wantErr := fmt.Errorf("refuse update")
	err := st.Update(ctx, CollectionLearning, "user-1", func(current []byte) ([]byte, error) {
		return nil, wantErr
	})
	if err == nil {
		t.Fatal("expected error from Update")
	}

	value, err := st.Get(ctx, CollectionLearning, "user-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "original" {
		t.Errorf("record modified despite update error: %s", value)
	}
}

// TestConcurrentUpdates tests that concurrent counter increments do not
// lose writes.
func (s *TestSuite) TestConcurrentUpdates(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	ctx := context.Background()

	if err := st.Put(ctx, CollectionLearning, "counter", []byte("0")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	const workers = 10
	const increments = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				// Badger may report transaction conflicts under
				// contention; retry until applied.
				for {
					err := st.Update(ctx, CollectionLearning, "counter", func(current []byte) ([]byte, error) {
						n, err := strconv.Atoi(string(current))
						if err != nil {
							return nil, err
						}
						return []byte(strconv.Itoa(n + 1)), nil
					})
					if err == nil {
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	value, err := st.Get(ctx, CollectionLearning, "counter")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != strconv.Itoa(workers*increments) {
		t.Errorf("expected %d, got %s", workers*increments, value)
	}
}
