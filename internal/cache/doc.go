// Package cache provides an in-memory LRU for immutable blob blocks.
//
// blobstore.CachingStore splits reads into fixed-size blocks and keeps them
// here, so repeated extractions over the same area of a remote store (S3,
// MinIO) read each tile from the network once.
//
// Memory is charged against an optional resource.Controller. When the
// controller declines, the block is simply not cached.
package cache
