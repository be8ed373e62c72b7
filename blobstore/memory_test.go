package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	src := []byte("abcdef")
	require.NoError(t, store.Put(ctx, "b", src))
	src[0] = 'X' // stored copy is independent

	w, err := store.Create(ctx, "a")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	w, err = store.Create(ctx, "c")
	require.NoError(t, err)
	_, _ = w.Write([]byte("dropped"))
	require.NoError(t, w.Abort())
	require.NoError(t, w.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, 2, store.Len())

	got, err := ReadAll(ctx, store, "b")
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(got))

	b, err := store.Open(ctx, "b")
	require.NoError(t, err)
	rc, err := b.ReadRange(ctx, 2, 10)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "cdef", string(part))

	buf := make([]byte, 4)
	n, err := b.ReadAt(ctx, buf, 4)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, store.Delete(ctx, "b"))
	_, err = store.Open(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TotalBytes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "tiles/000001/r0c0.tile", make([]byte, 10)))
	require.NoError(t, store.Put(ctx, "tiles/000001/r0c1.tile", make([]byte, 5)))
	assert.Equal(t, int64(15), store.TotalBytes())

	require.NoError(t, store.Put(ctx, "tiles/000001/r0c0.tile", make([]byte, 3)))
	assert.Equal(t, int64(8), store.TotalBytes())

	require.NoError(t, store.Delete(ctx, "tiles/000001/r0c1.tile"))
	require.NoError(t, store.Delete(ctx, "missing"))
	assert.Equal(t, int64(3), store.TotalBytes())
}

func TestMemoryStore_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	assert.ErrorIs(t, store.Put(ctx, "a", []byte("x")), context.Canceled)
	_, err := store.Open(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.List(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
