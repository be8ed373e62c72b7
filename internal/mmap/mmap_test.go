package mmap

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping_OpenReadClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.bin")
	content := []byte("GTL1 tile payload")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	m, err := Open(path)
	require.NoError(t, err)

	assert.False(t, m.Mapped())
	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())

	buf := make([]byte, 4)
	n, err := m.ReadAt(buf, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "tile", string(buf))

	buf = make([]byte, 10)
	n, err = m.ReadAt(buf, int64(len(content)-3))
	assert.Equal(t, 3, n)
	assert.Equal(t, io.EOF, err)

	_, err = m.ReadAt(buf, int64(len(content)))
	assert.Equal(t, io.EOF, err)

	_, err = m.ReadAt(buf, -1)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())

	_, err = m.ReadAt(buf, 0)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = m.Slice(0, 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMapping_LargeFileIsMapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dense.tile")
	content := bytes.Repeat([]byte("0123456789abcdef"), MinMapSize/16*2)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.True(t, m.Mapped())
	assert.Equal(t, content, m.Bytes())

	s, err := m.Slice(16, 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(s))
}

func TestMapping_Slice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.bin")
	require.NoError(t, os.WriteFile(path, []byte("GTL1payload"), 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	s, err := m.Slice(4, 3)
	require.NoError(t, err)
	assert.Equal(t, "pay", string(s))

	s, err = m.Slice(4, 100)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(s))

	s, err = m.Slice(int64(m.Size()), 5)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = m.Slice(-1, 1)
	assert.ErrorIs(t, err, ErrInvalidOffset)
	_, err = m.Slice(100, 1)
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestMapping_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Bytes())
}

func TestMapping_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
