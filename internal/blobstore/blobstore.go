// Package blobstore models the byte-oriented object storage and ensemble
// source collaborators behind interfaces, per the core's "no package-level
// singletons, always explicit constructor args" design. A local-filesystem
// implementation is provided for tests and local runs; a real S3/FTP
// backend is out of scope.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// BlobStore is the byte-oriented object storage collaborator used for
// admin boundaries, thresholds, population rasters and flood-extent maps.
type BlobStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, r io.Reader) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ForecastSource fetches one ensemble member's discharge cube for a run
// date. Implementations model the upstream GloFAS FTP drop.
type ForecastSource interface {
	FetchEnsembleMember(ctx context.Context, date time.Time, ensemble int) (io.ReadCloser, error)
}

// LocalStore is a filesystem-rooted BlobStore, used by tests and local
// runs in place of a real object-storage backend.
type LocalStore struct {
	Root string
}

// NewLocalStore roots a store at dir, creating it if necessary.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root %s: %w", dir, err)
	}
	return &LocalStore{Root: dir}, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.Root, filepath.FromSlash(key))
}

// Get opens key for reading. The returned ReadCloser must be closed by the
// caller.
func (s *LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("blobstore: get %s: %w", key, err)
	}
	return f, nil
}

// Put writes r's contents to key, creating parent directories as needed and
// overwriting any existing object (upsert semantics).
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("blobstore: put %s: %w", key, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("blobstore: put %s: %w", key, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("blobstore: put %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present.
func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("blobstore: exists %s: %w", key, err)
}

// LocalForecastSource resolves ensemble members from a directory tree laid
// out as <root>/<date>/<ensemble>.nc, standing in for a real FTP source.
type LocalForecastSource struct {
	Root string
}

// NewLocalForecastSource roots a fake source at dir.
func NewLocalForecastSource(dir string) *LocalForecastSource {
	return &LocalForecastSource{Root: dir}
}

// FetchEnsembleMember opens the member file for date, ensemble.
func (s *LocalForecastSource) FetchEnsembleMember(ctx context.Context, date time.Time, ensemble int) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s/%d.nc", date.Format("2006-01-02"), ensemble)
	f, err := os.Open(filepath.Join(s.Root, filepath.FromSlash(name)))
	if err != nil {
		return nil, fmt.Errorf("blobstore: fetch ensemble member %d for %s: %w", ensemble, date.Format("2006-01-02"), err)
	}
	return f, nil
}
