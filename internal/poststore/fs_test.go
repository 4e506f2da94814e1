package poststore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFSBucket(t *testing.T) *FSBucket {
	t.Helper()

	b, err := NewFSBucket(filepath.Join(t.TempDir(), "posts"))
	require.NoError(t, err)
	return b
}

func TestFSBucket_PutGet(t *testing.T) {
	b := newTestFSBucket(t)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "hello", []byte("v1")))
	require.NoError(t, b.Put(ctx, "hello", []byte("v2")))

	data, err := b.Get(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	_, err = os.Stat(filepath.Join(b.Dir(), "hello.mdx"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(b.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFSBucket_LegacyMarkdown(t *testing.T) {
	b := newTestFSBucket(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(b.Dir(), "legacy.md"), []byte("old"), 0o644))

	data, err := b.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), data)

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy"}, keys)

	require.NoError(t, b.Put(ctx, "legacy", []byte("new")))

	_, err = os.Stat(filepath.Join(b.Dir(), "legacy.md"))
	assert.True(t, os.IsNotExist(err))

	keys, err = b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy"}, keys)
}

func TestFSBucket_Delete(t *testing.T) {
	b := newTestFSBucket(t)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "gone", []byte("x")))
	require.NoError(t, b.Delete(ctx, "gone"))

	assert.ErrorIs(t, b.Delete(ctx, "gone"), ErrNotFound)

	_, err := b.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSBucket_Keys(t *testing.T) {
	b := newTestFSBucket(t)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "a", []byte("a")))
	require.NoError(t, b.Put(ctx, "b", []byte("b")))
	require.NoError(t, os.WriteFile(filepath.Join(b.Dir(), "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(b.Dir(), "dir.mdx"), 0o755))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestFSBucket_RejectsPathKeys(t *testing.T) {
	b := newTestFSBucket(t)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape", "a/b", ".hidden"} {
		_, err := b.Get(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, key)
		assert.Error(t, b.Put(ctx, key, []byte("x")), key)
	}
}

func TestFSBucket_ModTimeFillsLegacyTimestamps(t *testing.T) {
	b := newTestFSBucket(t)
	ctx := context.Background()

	modTime := time.Date(2022, 6, 1, 8, 0, 0, 0, time.UTC)
	path := filepath.Join(b.Dir(), "legacy.mdx")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Legacy\ndate: 2022-06-01\n---\nbody"), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))

	s := New(b, FrontmatterCodec{}, Options{Consistency: Strong})

	p, err := s.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.True(t, p.CreatedAt.Equal(modTime))
	assert.True(t, p.UpdatedAt.Equal(modTime))
}

func TestFSBucket_HonoursContext(t *testing.T) {
	b := newTestFSBucket(t)
	require.NoError(t, b.Put(context.Background(), "hello", []byte("v1")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := b.Get(ctx, "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, b.Put(ctx, "hello", []byte("v2")), context.DeadlineExceeded)
	assert.ErrorIs(t, b.Delete(ctx, "hello"), context.DeadlineExceeded)
	_, err = b.Keys(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// An expired request surfaces as a retryable store error.
	s := New(b, FrontmatterCodec{}, Options{Consistency: Strong})
	var storeErr *StoreError

	_, err = s.Get(ctx, "hello")
	require.ErrorAs(t, err, &storeErr)
	assert.True(t, storeErr.Retryable())

	_, err = s.List(ctx)
	require.ErrorAs(t, err, &storeErr)
	assert.True(t, storeErr.Retryable())

	data, err := b.Get(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
}

func TestFSBucket_NonCanonicalNames(t *testing.T) {
	b := newTestFSBucket(t)
	ctx := context.Background()

	for _, name := range []string{"My_Post.mdx", "Hello.md", "café.mdx"} {
		require.NoError(t, os.WriteFile(filepath.Join(b.Dir(), name), []byte("body"), 0o644))
	}

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"My_Post", "Hello", "café"}, keys)

	for _, key := range keys {
		data, err := b.Get(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, []byte("body"), data)
	}
}
