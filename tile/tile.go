package tile

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/geotile/blobstore"
	"github.com/hupe1980/geotile/codec"
	"github.com/hupe1980/geotile/feature"
	"github.com/hupe1980/geotile/internal/compress"
	"github.com/hupe1980/geotile/internal/hash"
	"github.com/hupe1980/geotile/model"
)

const (
	// Magic starts every framed tile blob.
	Magic = "GTL1"
	// HeaderSize is the size of the frame header in bytes.
	HeaderSize = 17
	// Ext is the file extension of framed tiles.
	Ext = ".tile"
)

// ErrCorrupt is returned when a tile blob fails its checksum or cannot be
// decoded.
var ErrCorrupt = errors.New("tile: corrupt")

// IsFramed reports whether data starts with the frame magic.
func IsFramed(data []byte) bool {
	return len(data) >= len(Magic) && string(data[:len(Magic)]) == Magic
}

// Frame wraps payload in a frame header, compressing it with alg. It
// returns the algorithm actually used, which is None when compression did
// not pay off.
func Frame(payload []byte, alg compress.Algorithm) ([]byte, compress.Algorithm, error) {
	stored, used, err := compress.Compress(alg, payload)
	if err != nil {
		return nil, compress.None, err
	}

	out := make([]byte, HeaderSize, HeaderSize+len(stored))
	copy(out, Magic)
	out[4] = byte(used)
	binary.LittleEndian.PutUint32(out[5:9], hash.CRC32C(stored))
	binary.LittleEndian.PutUint64(out[9:17], uint64(len(payload)))
	return append(out, stored...), used, nil
}

// Unframe verifies the frame and returns the uncompressed payload.
func Unframe(data []byte) ([]byte, error) {
	if len(data) < HeaderSize || !IsFramed(data) {
		return nil, fmt.Errorf("%w: short or missing header", ErrCorrupt)
	}

	alg := compress.Algorithm(data[4])
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, compress.ErrUnknownAlgorithm)
	}
	sum := binary.LittleEndian.Uint32(data[5:9])
	size := binary.LittleEndian.Uint64(data[9:17])
	stored := data[HeaderSize:]

	if got := hash.CRC32C(stored); got != sum {
		return nil, fmt.Errorf("%w: checksum mismatch (got %08x, want %08x)", ErrCorrupt, got, sum)
	}
	if size > uint64(len(stored))*1024+1<<20 {
		return nil, fmt.Errorf("%w: implausible size %d", ErrCorrupt, size)
	}

	payload, err := compress.Decompress(alg, stored, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return payload, nil
}

// Encoder turns batches into tile blobs.
type Encoder struct {
	Codec       codec.Codec
	Compression compress.Algorithm
}

// Encode serializes b as a framed tile.
func (e Encoder) Encode(b *model.Batch) ([]byte, error) {
	payload, err := feature.Encode(b, e.Codec)
	if err != nil {
		return nil, err
	}
	data, _, err := Frame(payload, e.Compression)
	return data, err
}

// Decode parses a framed or legacy tile blob.
func Decode(data []byte, c codec.Codec) (*model.Batch, error) {
	payload := data
	if IsFramed(data) {
		var err error
		if payload, err = Unframe(data); err != nil {
			return nil, err
		}
	} else if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: neither framed nor GeoJSON", ErrCorrupt)
	}

	b, err := feature.Decode(payload, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return b, nil
}

// Write encodes b and streams it to name. On any error the partial blob is
// aborted and never becomes visible.
func (e Encoder) Write(ctx context.Context, store blobstore.BlobStore, name string, b *model.Batch) (int, error) {
	data, err := e.Encode(b)
	if err != nil {
		return 0, err
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data[:HeaderSize]); err != nil {
		_ = w.Abort()
		return 0, err
	}
	if _, err := w.Write(data[HeaderSize:]); err != nil {
		_ = w.Abort()
		return 0, err
	}
	if err := w.Close(); err != nil {
		_ = w.Abort()
		return 0, err
	}
	return len(data), nil
}

// Read loads and decodes the tile blob name.
func Read(ctx context.Context, store blobstore.BlobStore, name string, c codec.Codec) (*model.Batch, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return Decode(data, c)
}
