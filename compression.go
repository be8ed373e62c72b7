package geotile

import "github.com/hupe1980/geotile/internal/compress"

// Compression selects how tile payloads are compressed. The value is
// recorded in every tile header, so datasets written with different
// settings can be read by the same Extractor.
type Compression = compress.Algorithm

const (
	CompressionNone Compression = compress.None
	CompressionLZ4  Compression = compress.LZ4
	CompressionZSTD Compression = compress.ZSTD
)

// ErrUnknownCompression is returned by ParseCompression for an unknown name.
var ErrUnknownCompression = compress.ErrUnknownAlgorithm

// ParseCompression maps "none", "lz4" or "zstd" to a Compression. The empty
// string means CompressionNone.
func ParseCompression(name string) (Compression, error) {
	return compress.Parse(name)
}
