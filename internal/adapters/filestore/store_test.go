package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "https://files.example.com/exports/")
	require.NoError(t, err)

	ctx := context.Background()
	url, err := s.Upload(ctx, "client-1/abc.zip", []byte("zipdata"))
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/exports/client-1/abc.zip", url)

	data, err := os.ReadFile(filepath.Join(dir, "client-1", "abc.zip"))
	require.NoError(t, err)
	assert.Equal(t, "zipdata", string(data))

	require.NoError(t, s.Delete(ctx, "client-1/abc.zip"))
	_, err = os.Stat(filepath.Join(dir, "client-1", "abc.zip"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, "client-1/abc.zip"), "deleting twice is fine")
}

func TestUploadOverwrites(t *testing.T) {
	s, err := New(t.TempDir(), "")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = s.Upload(ctx, "k.zip", []byte("one"))
	require.NoError(t, err)
	_, err = s.Upload(ctx, "k.zip", []byte("two"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(s.Root(), "k.zip"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestRejectsEscapingKeys(t *testing.T) {
	s, err := New(t.TempDir(), "")
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "a/../../b", "/abs", "a//b", "a/./b"} {
		_, err := s.Upload(context.Background(), key, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestURLEscapesSegments(t *testing.T) {
	s, err := New(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/acme%20corp/x.zip", s.URL("acme corp/x.zip"))
}

func TestUploadCancelled(t *testing.T) {
	s, err := New(t.TempDir(), "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Upload(ctx, "k.zip", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
