// Package index provides the TileIndex, the in-memory lookup structure from
// query boxes to the tiles that may hold matching records.
//
// # Lookup
//
// Tile bounds are kept in an R-tree (github.com/dhconnelly/rtreego). A query
// collects the positions of all candidate tiles into a roaring bitmap, checks
// each candidate with the exact closed-rectangle test and returns the tiles
// in index order, so the result is stable across runs for a fixed index.
//
// # Lifecycle
//
// A TileIndex is built once from the tile list of a committed manifest and is
// read-only afterwards. It is safe for concurrent use.
package index
