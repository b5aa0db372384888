package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "blobs.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSQLitePutGet verifies basic blob round-tripping and the absent-key
// contract.
func TestSQLitePutGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, ok, err := s.Get(ctx, "workouts"); err != nil || ok {
		t.Fatalf("Get on empty store = ok=%v, err=%v", ok, err)
	}

	if err := s.Put(ctx, "workouts", []byte(`[1,2,3]`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	v, ok, err := s.Get(ctx, "workouts")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v, err=%v", ok, err)
	}
	if string(v) != `[1,2,3]` {
		t.Errorf("value = %s, want [1,2,3]", v)
	}
}

// TestSQLitePutOverwrites verifies a put replaces the prior value wholesale.
func TestSQLitePutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Put(ctx, "workouts", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "workouts", []byte("new")); err != nil {
		t.Fatal(err)
	}

	v, _, err := s.Get(ctx, "workouts")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "new" {
		t.Errorf("value = %s, want new", v)
	}
}

// TestSQLiteDelete verifies deletion removes the key entirely and deleting
// an absent key is not an error.
func TestSQLiteDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Put(ctx, "workouts", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "workouts"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "workouts"); ok {
		t.Error("key still present after delete")
	}
	if err := s.Delete(ctx, "workouts"); err != nil {
		t.Errorf("delete of absent key: %v", err)
	}
}

// TestSQLitePersistsAcrossOpens verifies the blob survives reopening the
// database file, which is what carries workouts across sessions.
func TestSQLitePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blobs.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "workouts", []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	v, ok, err := s2.Get(ctx, "workouts")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v, err=%v", ok, err)
	}
	if string(v) != "persisted" {
		t.Errorf("value = %s, want persisted", v)
	}
}
