package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"gameforum/settings"

	"github.com/spf13/afero"
)

// ErrNotOwned is returned when a URL does not point into this store.
var ErrNotOwned = errors.New("url does not belong to the blob store")

// BlobStore keeps uploaded files under Root/{bucket}/{path} and serves
// them below PublicBaseURL.
type BlobStore struct {
	fs      afero.Fs
	baseURL string
}

// New roots the store at cfg.Root on the local disk.
func New(cfg *settings.StorageConfig) (*BlobStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is nil")
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s failed: %w", cfg.Root, err)
	}
	return NewWithFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.Root), cfg.PublicBaseURL), nil
}

// NewWithFs builds a store over any afero filesystem; tests use
// afero.NewMemMapFs.
func NewWithFs(fs afero.Fs, baseURL string) *BlobStore {
	return &BlobStore{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

func objectPath(bucket, name string) (string, error) {
	p := path.Clean("/" + bucket + "/" + name)
	if bucket == "" || name == "" || strings.Contains(bucket, "/") || !strings.HasPrefix(p, "/"+bucket+"/") {
		return "", fmt.Errorf("invalid object path %q/%q", bucket, name)
	}
	return p, nil
}

// Upload writes data and returns its public URL. An existing object at the
// same path is replaced.
func (s *BlobStore) Upload(ctx context.Context, bucket, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := objectPath(bucket, name)
	if err != nil {
		return "", err
	}
	if err = s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir failed: %w", err)
	}
	if err = afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", fmt.Errorf("write object %s failed: %w", p, err)
	}
	return s.baseURL + p, nil
}

// Remove deletes the object; a missing object is not an error.
func (s *BlobStore) Remove(ctx context.Context, bucket, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := objectPath(bucket, name)
	if err != nil {
		return err
	}
	if err = s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove object %s failed: %w", p, err)
	}
	return nil
}

func (s *BlobStore) PublicURL(bucket, name string) string {
	return s.baseURL + "/" + bucket + "/" + name
}

// Owns splits a URL produced by this store back into bucket and name.
func (s *BlobStore) Owns(url string) (bucket, name string, ok bool) {
	rest, found := strings.CutPrefix(url, s.baseURL+"/")
	if !found {
		return "", "", false
	}
	bucket, name, found = strings.Cut(rest, "/")
	if !found || bucket == "" || name == "" {
		return "", "", false
	}
	return bucket, name, true
}

// RemoveURL deletes the object behind url when the store owns it.
func (s *BlobStore) RemoveURL(ctx context.Context, url string) error {
	bucket, name, ok := s.Owns(url)
	if !ok {
		return ErrNotOwned
	}
	return s.Remove(ctx, bucket, name)
}

// FileSystem exposes the store read-only for http.FileServer.
func (s *BlobStore) FileSystem() http.FileSystem {
	return afero.NewHttpFs(afero.NewReadOnlyFs(s.fs))
}
