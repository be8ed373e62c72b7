// Package compress implements the payload compression used by tile blobs.
package compress

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies a compression algorithm. The value is persisted in
// tile headers; never renumber.
type Algorithm uint8

const (
	// None stores the payload as is.
	None Algorithm = 0
	// LZ4 is LZ4 block compression (fast).
	LZ4 Algorithm = 1
	// ZSTD is Zstandard compression (better ratio).
	ZSTD Algorithm = 2
)

var (
	// ErrUnknownAlgorithm is returned for an algorithm byte or name that is not defined.
	ErrUnknownAlgorithm = errors.New("compress: unknown algorithm")
	// ErrSizeMismatch is returned when a decompressed payload does not have the recorded size.
	ErrSizeMismatch = errors.New("compress: decompressed size mismatch")
)

// minSavings is the ratio above which compressed output is discarded.
const minSavings = 0.9

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// Valid reports whether a is a known algorithm.
func (a Algorithm) Valid() bool {
	return a <= ZSTD
}

// Parse returns the algorithm for a name as accepted on the command line.
// The empty string means None.
func Parse(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zstandard":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Compress compresses data with the requested algorithm and returns the
// stored bytes together with the algorithm that was actually applied. When
// compression does not save at least 10% the input is returned with None.
func Compress(a Algorithm, data []byte) ([]byte, Algorithm, error) {
	if a == None || len(data) == 0 {
		return data, None, nil
	}

	var (
		out []byte
		err error
	)
	switch a {
	case LZ4:
		out, err = compressLZ4(data)
	case ZSTD:
		out, err = compressZSTD(data)
	default:
		return nil, None, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(a))
	}
	if err != nil {
		return nil, None, err
	}

	if len(out) == 0 || float64(len(out)) > float64(len(data))*minSavings {
		return data, None, nil
	}
	return out, a, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil // n == 0 means incompressible
}

func compressZSTD(data []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

// Decompress reverses Compress. size is the uncompressed length recorded
// alongside the stored bytes.
func Decompress(a Algorithm, data []byte, size int) ([]byte, error) {
	switch a {
	case None:
		if len(data) != size {
			return nil, ErrSizeMismatch
		}
		return data, nil

	case LZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		if n != size {
			return nil, ErrSizeMismatch
		}
		return out, nil

	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		if len(out) != size {
			return nil, ErrSizeMismatch
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(a))
	}
}
