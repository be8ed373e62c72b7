package mmap

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

// MinMapSize is the smallest file that gets a real mapping. Smaller files
// (sparse tiles, manifests) are read onto the heap: a mapping costs at least
// one page plus two syscalls.
const MinMapSize = 16 << 10

var (
	// ErrClosed is returned when accessing a closed mapping.
	ErrClosed = errors.New("mmap: mapping closed")
	// ErrInvalidOffset is returned for negative or out-of-range offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)

// Mapping holds the read-only contents of one blob file.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open loads the file at path, mapping it when it is at least MinMapSize
// bytes long.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < MinMapSize {
		data := make([]byte, size)
		if _, err := io.ReadFull(f, data); err != nil {
			return nil, err
		}
		return &Mapping{data: data}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Mapped reports whether the contents live in a memory mapping rather than
// on the heap.
func (m *Mapping) Mapped() bool { return m.unmap != nil }

// Close releases the contents. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap == nil {
		return nil
	}
	return m.unmap(m.data)
}

// Bytes returns the full contents, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the contents in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Slice returns up to n bytes starting at off without copying. The result is
// shorter than n when the range runs past the end. It shares the lifetime of
// the mapping.
func (m *Mapping) Slice(off, n int64) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off > int64(len(m.data)) {
		return nil, ErrInvalidOffset
	}
	end := off + n
	if end > int64(len(m.data)) || end < off {
		end = int64(len(m.data))
	}
	return m.data[off:end], nil
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
