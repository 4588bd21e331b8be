package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(path, contents string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}

func TestLocalStorePutGetRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()
	if err := store.Put(ctx, "a/b/c.json", bytes.NewReader([]byte("hello"))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	r, err := store.Get(ctx, "a/b/c.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
}

func TestLocalStoreExists(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()
	exists, err := store.Exists(ctx, "missing.json")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatal("expected missing key to not exist")
	}

	if err := store.Put(ctx, "present.json", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	exists, err = store.Exists(ctx, "present.json")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatal("expected present key to exist")
	}
}

func TestLocalStorePutOverwrites(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()
	store.Put(ctx, "key", bytes.NewReader([]byte("first")))
	store.Put(ctx, "key", bytes.NewReader([]byte("second")))

	r, _ := store.Get(ctx, "key")
	defer r.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "second" {
		t.Fatalf("got %q, want second (upsert semantics)", got)
	}
}

func TestLocalForecastSourceFetchesByDateAndEnsemble(t *testing.T) {
	root := t.TempDir()
	date := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	dir := filepath.Join(root, "2026-07-31")
	if err := writeFile(filepath.Join(dir, "3.nc"), "member-bytes"); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	src := NewLocalForecastSource(root)
	r, err := src.FetchEnsembleMember(context.Background(), date, 3)
	if err != nil {
		t.Fatalf("FetchEnsembleMember: %v", err)
	}
	defer r.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "member-bytes" {
		t.Fatalf("got %q, want member-bytes", got)
	}
}

func TestLocalForecastSourceMissingMemberErrors(t *testing.T) {
	src := NewLocalForecastSource(t.TempDir())
	_, err := src.FetchEnsembleMember(context.Background(), time.Now().UTC(), 0)
	if err == nil {
		t.Fatal("expected error for missing ensemble member file")
	}
}
