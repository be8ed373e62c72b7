package fs

import (
	"io"
	"os"
)

const (
	// FilePerm is the mode tile and manifest files are created with.
	FilePerm os.FileMode = 0o644
	// DirPerm is the mode run directories are created with.
	DirPerm os.FileMode = 0o755
)

// File is a file opened for writing. Reads never go through this package;
// committed blobs are memory-mapped by internal/mmap.
type File interface {
	io.WriteCloser
	Sync() error
	Name() string
}

// FileSystem is the set of disk operations blobstore.LocalStore needs to
// stage a blob in a temporary file and publish it with a rename.
type FileSystem interface {
	// Create creates or truncates name for writing.
	Create(name string) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	// MkdirAll creates dir and any missing parents with DirPerm.
	MkdirAll(dir string) error
	ReadDir(dir string) ([]os.DirEntry, error)
}

// OSFS is the FileSystem backed by the os package.
type OSFS struct{}

func (OSFS) Create(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePerm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (OSFS) Remove(name string) error             { return os.Remove(name) }
func (OSFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (OSFS) MkdirAll(dir string) error            { return os.MkdirAll(dir, DirPerm) }

func (OSFS) ReadDir(dir string) ([]os.DirEntry, error) { return os.ReadDir(dir) }

// Default is the FileSystem used when none is injected.
var Default FileSystem = OSFS{}
