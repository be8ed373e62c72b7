// Package fs is the write side of the local tile store, abstracted so tests
// can inject disk failures.
//
// [FileSystem] covers only what staging a blob needs: create a temporary
// file, sync it, rename it over the final name and clean up on failure.
//
// # Implementations
//
//   - [OSFS]: the os package
//   - [FaultyFS]: test utility that injects I/O errors (disk full, failed
//     sync, failed rename) for files matching a name pattern
//
// # Usage
//
// Production code uses fs.Default (an [OSFS]). Tests inject
// [FaultyFS] into blobstore.LocalStore to simulate a tile write failing
// halfway through a partition run:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("tiles/", fs.Fault{FailAfterBytes: 0, Err: syscall.ENOSPC})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// Filesystem calls take no context.Context: local operations are not
// interruptible at the syscall level. Slow backends (S3, MinIO) are reached
// through blobstore, which does take a context.
package fs
