package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/hupe1980/geotile/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore(dir)

	data := []byte("GTL1 seattle tile payload")

	w, err := store.Create(ctx, "tiles/0001.tile")
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	// Not visible before Close.
	_, err = store.Open(ctx, "tiles/0001.tile")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())
	_, err = os.Stat(filepath.Join(dir, "tiles", "0001.tile"))
	require.NoError(t, err)

	b, err := store.Open(ctx, "tiles/0001.tile")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), b.Size())

	buf := make([]byte, 6)
	_, err = b.ReadAt(ctx, buf, 5)
	require.NoError(t, err)
	assert.Equal(t, "seattl", string(buf))

	rc, err := b.ReadRange(ctx, 5, 7)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "seattle", string(got))
	require.NoError(t, rc.Close())
	require.NoError(t, b.Close())

	all, err := ReadAll(ctx, store, "tiles/0001.tile")
	require.NoError(t, err)
	assert.Equal(t, data, all)

	require.NoError(t, store.Put(ctx, "CURRENT", []byte("MANIFEST-000001.json")))
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CURRENT", "tiles/0001.tile"}, names)

	names, err = store.List(ctx, "tiles/")
	require.NoError(t, err)
	assert.Equal(t, []string{"tiles/0001.tile"}, names)

	require.NoError(t, store.Delete(ctx, "tiles/0001.tile"))
	require.NoError(t, store.Delete(ctx, "tiles/0001.tile"), "deleting a missing blob is not an error")
	_, err = store.Open(ctx, "tiles/0001.tile")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_EmptyBlob(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Put(ctx, "empty", nil))
	data, err := ReadAll(ctx, store, "empty")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestLocalStore_InvalidName(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	for _, name := range []string{"", "../escape", "/abs/path"} {
		_, err := store.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, store.Put(ctx, name, []byte("x")), ErrInvalidName, name)
	}
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_WriteFailureLeavesNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("0002.tile", fs.Fault{FailAfterBytes: 4, Err: syscall.ENOSPC})
	store := NewLocalStore(dir, WithFileSystem(ffs))

	require.NoError(t, store.Put(ctx, "tiles/0001.tile", []byte("fits in")))

	err := store.Put(ctx, "tiles/0002.tile", []byte("does not fit"))
	require.ErrorIs(t, err, syscall.ENOSPC)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"tiles/0001.tile"}, names)

	entries, err := os.ReadDir(filepath.Join(dir, "tiles"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be removed")
}

func TestLocalStore_RenameFailure(t *testing.T) {
	ctx := context.Background()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("CURRENT", fs.Fault{FailAfterBytes: -1, FailOnRename: true})
	store := NewLocalStore(t.TempDir(), WithFileSystem(ffs))

	err := store.Put(ctx, "CURRENT", []byte("MANIFEST-000002.json"))
	require.ErrorIs(t, err, fs.ErrInjected)

	_, err = store.Open(ctx, "CURRENT")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Abort(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	w, err := store.Create(ctx, "tiles/x.tile")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())
	require.NoError(t, w.Abort())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewLocalStore(t.TempDir())
	_, err := store.Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Create(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
