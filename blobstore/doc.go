// Package blobstore provides the storage abstraction for tile blobs and
// manifests.
//
// A partition run writes one immutable blob per tile plus a manifest; an
// extraction run opens only the tiles it needs. BlobStore implementations
// must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic temp+rename writes, mmap reads
//   - MemoryStore: in-process map, for tests and small pipelines
//   - CachingStore: block cache in front of any other store
//   - s3.Store / s3.DDBCommitStore: Amazon S3, optionally with DynamoDB
//     for atomic CURRENT commits
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Open must return an error satisfying errors.Is(err, ErrNotFound) for a
// missing blob. Delete of a missing blob is not an error.
package blobstore
