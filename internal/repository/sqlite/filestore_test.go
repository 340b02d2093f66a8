package sqlite_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"unimarket/internal/domain"
)

func TestFileStore_SaveAndGet(t *testing.T) {
	db := newTestDB(t)
	store := db.FileStore()
	ctx := context.Background()

	data := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	if err := store.Save(ctx, "photo-key", "image/jpeg", data); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, contentType, err := store.Get(ctx, "photo-key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("expected %v, got %v", data, got)
	}
	if contentType != "image/jpeg" {
		t.Fatalf("expected content type image/jpeg, got %q", contentType)
	}
}

func TestFileStore_Get_NotFound(t *testing.T) {
	db := newTestDB(t)
	store := db.FileStore()
	ctx := context.Background()

	_, _, err := store.Get(ctx, "missing-key")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStore_Delete(t *testing.T) {
	db := newTestDB(t)
	store := db.FileStore()
	ctx := context.Background()

	if err := store.Save(ctx, "del-key", "image/png", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "del-key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, _, err := store.Get(ctx, "del-key")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
