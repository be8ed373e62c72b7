package cache

import "context"

// Key identifies one block of a blob.
type Key struct {
	// Name is the blob name within its store.
	Name string
	// Block is the block index (byte offset / block size).
	Block int64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key Key) (b []byte, ok bool)
	// Set caches a block. The caller must treat b as immutable afterwards.
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}

// InvalidateBlob removes all blocks of the named blob.
func InvalidateBlob(c BlockCache, name string) {
	c.Invalidate(func(k Key) bool { return k.Name == name })
}
