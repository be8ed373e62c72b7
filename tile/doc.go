// Package tile encodes the records of one tile into a self-checking blob.
//
// # Format
//
//	Header (17 bytes):
//	  Magic       (4 bytes) - "GTL1"
//	  Compression (1 byte)  - compress.Algorithm of the payload
//	  Checksum    (4 bytes) - CRC32-C of the stored payload
//	  Size        (8 bytes) - Uncompressed payload length
//
//	Payload:
//	  GeoJSON FeatureCollection, optionally LZ4 or ZSTD compressed
//
// Integers are little-endian. Blobs without the magic are read as plain
// GeoJSON, which is how tiles of the legacy layout are stored.
package tile
