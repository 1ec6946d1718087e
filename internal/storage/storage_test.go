package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close sqlite: %v", err)
		}
	})
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": db,
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			value, ok, err := st.Get(context.Background(), "absent")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if ok || value != "" {
				t.Fatalf("expected missing key, got ok=%v value=%q", ok, value)
			}
		})
	}
}

func TestStoreSetGet(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := st.Set(ctx, "doc", `{"v":1}`); err != nil {
				t.Fatalf("set: %v", err)
			}
			value, ok, err := st.Get(ctx, "doc")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if value != `{"v":1}` {
				t.Fatalf("unexpected value %q", value)
			}
		})
	}
}

func TestStoreSetOverwrites(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := st.Set(ctx, "doc", "first"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := st.Set(ctx, "doc", "second"); err != nil {
				t.Fatalf("set again: %v", err)
			}
			value, ok, err := st.Get(ctx, "doc")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if value != "second" {
				t.Fatalf("expected overwrite, got %q", value)
			}
		})
	}
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Set(ctx, "doc", "kept"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer db.Close()
	value, ok, err := db.Get(ctx, "doc")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if value != "kept" {
		t.Fatalf("unexpected value %q", value)
	}
}
