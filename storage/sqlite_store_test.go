package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "attendlog_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SetGetRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if err := store.Set("role", "Admin"); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, found, err := store.Get("role")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || value != "Admin" {
		t.Fatalf("unexpected value %q found=%v", value, found)
	}

	_, found, err = store.Get("missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if found {
		t.Fatalf("expected missing key to be absent")
	}
}

func TestSQLiteStore_SetManyOverwrites(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if err := store.SetMany(map[string]string{"outlet_id": "1", "outlet_name": "Mall"}); err != nil {
		t.Fatalf("set many: %v", err)
	}
	if err := store.SetMany(map[string]string{"outlet_id": "2"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	all, err := store.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 || all["outlet_id"] != "2" || all["outlet_name"] != "Mall" {
		t.Fatalf("unexpected values: %+v", all)
	}
}

func TestSQLiteStore_DeleteKeys(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if err := store.SetMany(map[string]string{"a": "1", "b": "2", "c": "3"}); err != nil {
		t.Fatalf("set many: %v", err)
	}

	deleted, err := store.DeleteKeys("a", "b", "missing")
	if err != nil {
		t.Fatalf("delete keys: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted keys, got %d", deleted)
	}

	all, err := store.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 || all["c"] != "3" {
		t.Fatalf("unexpected remaining values: %+v", all)
	}
}

func TestSQLiteStore_RejectsEmptyKey(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if err := store.Set(" ", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if _, _, err := store.Get(""); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "attendlog_test.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := store.Set("access_token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer reopened.Close()

	value, found, err := reopened.Get("access_token")
	if err != nil || !found || value != "abc" {
		t.Fatalf("unexpected value %q found=%v err=%v", value, found, err)
	}
}
