// Package hash provides the checksums and content hashes used by the tile
// format and the extractor.
//
// Tile blobs carry a CRC32-Castagnoli (CRC32C) checksum of their stored
// payload so a truncated or bit-flipped tile is detected before decoding:
//
//	sum := hash.CRC32C(payload)
//
// Features read from legacy tiles may have no identifier. Those are keyed by
// a 64-bit FNV-1a hash of their canonical encoding so the same footprint
// stored in two overlapping tiles is returned once:
//
//	key := hash.Content64(encoded)
package hash
