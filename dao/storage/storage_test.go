package storage

import (
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadOwnsRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewWithFs(fs, "/storage/")
	ctx := context.Background()

	url, err := s.Upload(ctx, "avatars", "alice-1700000000000.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/storage/avatars/alice-1700000000000.png", url)
	assert.Equal(t, url, s.PublicURL("avatars", "alice-1700000000000.png"))

	bucket, name, ok := s.Owns(url)
	require.True(t, ok)
	assert.Equal(t, "avatars", bucket)
	assert.Equal(t, "alice-1700000000000.png", name)

	f, err := s.FileSystem().Open("/avatars/alice-1700000000000.png")
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	_ = f.Close()
	assert.Equal(t, "png", string(body))

	require.NoError(t, s.RemoveURL(ctx, url))
	exists, err := afero.Exists(fs, "/avatars/alice-1700000000000.png")
	require.NoError(t, err)
	assert.False(t, exists)

	// Removing twice is fine.
	require.NoError(t, s.RemoveURL(ctx, url))
}

func TestOwnsRejectsForeignURLs(t *testing.T) {
	s := NewWithFs(afero.NewMemMapFs(), "/storage")

	for _, url := range []string{
		"https://ui-avatars.com/api/?name=alice",
		"/storage/avatars",
		"/storage/",
		"",
	} {
		_, _, ok := s.Owns(url)
		assert.False(t, ok, url)
	}
	assert.ErrorIs(t, s.RemoveURL(context.Background(), "https://example.com/a.png"), ErrNotOwned)
}

func TestUploadRejectsTraversal(t *testing.T) {
	s := NewWithFs(afero.NewMemMapFs(), "/storage")

	_, err := s.Upload(context.Background(), "avatars", "../secret", []byte("x"))
	assert.Error(t, err)
	_, err = s.Upload(context.Background(), "a/b", "x.png", []byte("x"))
	assert.Error(t, err)
}
