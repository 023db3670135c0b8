package filesystem_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sagarc03/docrepo"
	"github.com/sagarc03/docrepo/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()
	tempDir := t.TempDir()
	osDir, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = osDir.Close() })
	return filesystem.NewFileStorage(osDir), tempDir
}

func TestStore_Get_Success(t *testing.T) {
	store, tempDir := newStore(t)

	content := []byte("test content")
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "documents"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "documents", "1-test.txt"), content, 0o644))

	result, err := store.Get(context.Background(), "documents/1-test.txt")
	require.NoError(t, err)

	readContent, err := io.ReadAll(result)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
	assert.NoError(t, result.Close())
}

func TestStore_Get_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Get(ctx, "test.txt")

	assert.Nil(t, result)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_Get_NotFound(t *testing.T) {
	store, _ := newStore(t)

	result, err := store.Get(context.Background(), "documents/nonexistent.txt")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, docrepo.ErrNotFound)
}

func TestStore_Get_Directory(t *testing.T) {
	store, tempDir := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "documents"), 0o755))

	_, err := store.Get(context.Background(), "documents")
	assert.ErrorIs(t, err, docrepo.ErrNotFound)
}

func TestStore_Get_EscapeRejected(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get(context.Background(), "../outside.txt")
	assert.Error(t, err)
}

func TestStore_Put_Success(t *testing.T) {
	store, tempDir := newStore(t)

	data := []byte("nested content")
	err := store.Put(context.Background(), "documents/1-test.txt", bytes.NewReader(data), int64(len(data)), "text/plain")
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(tempDir, "documents", "1-test.txt"))
	assert.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestStore_Put_Overwrites(t *testing.T) {
	store, tempDir := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "documents/1-a.txt", strings.NewReader("first"), 5, "text/plain"))
	require.NoError(t, store.Put(ctx, "documents/1-a.txt", strings.NewReader("second"), 6, "text/plain"))

	written, err := os.ReadFile(filepath.Join(tempDir, "documents", "1-a.txt"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("second"), written)
}

func TestStore_Put_SizeMismatch(t *testing.T) {
	store, tempDir := newStore(t)

	err := store.Put(context.Background(), "documents/1-a.txt", strings.NewReader("abc"), 10, "text/plain")
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(tempDir, "documents", "1-a.txt"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
	assertNoTempFiles(t, tempDir)
}

func TestStore_Put_ContextCanceledBefore(t *testing.T) {
	store, tempDir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Put(ctx, "documents/1-a.txt", strings.NewReader("abc"), 3, "text/plain")
	assert.Equal(t, context.Canceled, err)
	assertNoTempFiles(t, tempDir)
}

type cancelingReader struct {
	cancel context.CancelFunc
	data   []byte
	read   bool
}

func (r *cancelingReader) Read(p []byte) (int, error) {
	if r.read {
		return 0, io.EOF
	}
	r.read = true
	r.cancel()
	return copy(p, r.data), nil
}

func TestStore_Put_ContextCanceledDuring(t *testing.T) {
	store, tempDir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &cancelingReader{cancel: cancel, data: []byte("partial")}
	err := store.Put(ctx, "documents/1-a.txt", reader, 100, "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
	assertNoTempFiles(t, tempDir)
}

func TestStore_Put_EscapeRejected(t *testing.T) {
	store, tempDir := newStore(t)

	err := store.Put(context.Background(), "../evil.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
	assertNoTempFiles(t, tempDir)
}

func TestStore_List(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	files := map[string]string{
		"documents/1-a.pdf":        "aaaa",
		"documents/2-b.txt":        "bb",
		"documents/nested/3-c.png": "c",
		"other/4-d.txt":            "dddd",
		"root.txt":                 "r",
	}
	for key, content := range files {
		require.NoError(t, store.Put(ctx, key, strings.NewReader(content), int64(len(content)), ""))
	}

	entries, err := store.List(ctx, "documents/")
	require.NoError(t, err)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
		assert.Equal(t, int64(len(files[e.Key])), e.Size)
		assert.False(t, e.LastModified.IsZero())
	}
	assert.Equal(t, []string{"documents/1-a.pdf", "documents/2-b.txt", "documents/nested/3-c.png"}, keys)
}

func TestStore_List_PartialName(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "documents/17-a.txt", strings.NewReader("a"), 1, ""))
	require.NoError(t, store.Put(ctx, "documents/28-b.txt", strings.NewReader("b"), 1, ""))

	entries, err := store.List(ctx, "documents/1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "documents/17-a.txt", entries[0].Key)
}

func TestStore_List_MissingPrefixDirectory(t *testing.T) {
	store, _ := newStore(t)

	entries, err := store.List(context.Background(), "documents/")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestStore_List_SkipsTempFiles(t *testing.T) {
	store, tempDir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".tleftover"), []byte("x"), 0o644))

	entries, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_List_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.List(ctx, "documents/")
	assert.Equal(t, context.Canceled, err)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".t"), "leftover temp file %s", e.Name())
	}
}
