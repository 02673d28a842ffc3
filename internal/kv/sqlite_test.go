package kv

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "kv-test.db")

	store, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	defer store.Close()

	t.Run("get missing key", func(t *testing.T) {
		_, found, err := store.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if found {
			t.Error("Get() found = true, want false")
		}
	})

	t.Run("set then get", func(t *testing.T) {
		payload := []byte(`[{"id":"t1"}]`)
		if err := store.Set(ctx, "cashier_transactions", payload); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		value, found, err := store.Get(ctx, "cashier_transactions")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !found {
			t.Fatal("Get() found = false, want true")
		}
		if !bytes.Equal(value, payload) {
			t.Errorf("Get() = %q, want %q", value, payload)
		}
	})

	t.Run("upsert replaces value", func(t *testing.T) {
		if err := store.Set(ctx, "cashier_transactions", []byte("[]")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		value, _, err := store.Get(ctx, "cashier_transactions")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(value) != "[]" {
			t.Errorf("Get() = %q, want %q", value, "[]")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.Delete(ctx, "cashier_transactions"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		_, found, err := store.Get(ctx, "cashier_transactions")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if found {
			t.Error("Get() after Delete() found = true")
		}
	})
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "kv-reopen.db")

	store, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	if err := store.Set(ctx, "cashier_active_session", []byte(`"s1"`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite() reopen error = %v", err)
	}
	defer reopened.Close()

	value, found, err := reopened.Get(ctx, "cashier_active_session")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || string(value) != `"s1"` {
		t.Errorf("Get() = %q, found %v; want persisted value", value, found)
	}
}
