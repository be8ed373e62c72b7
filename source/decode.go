package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hupe1980/geotile/blobstore"
	"github.com/hupe1980/geotile/codec"
	"github.com/hupe1980/geotile/feature"
	"github.com/hupe1980/geotile/model"
	"github.com/klauspost/compress/gzip"
)

// maxLineSize bounds a single line-delimited feature.
const maxLineSize = 64 << 20

var gzipMagic = []byte{0x1f, 0x8b}

// MaybeGunzip returns a reader that decompresses r when it starts with the
// gzip magic and passes it through otherwise. The returned closer must be
// closed by the caller.
func MaybeGunzip(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if !bytes.Equal(head, gzipMagic) {
		return io.NopCloser(br), nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("source: gzip: %w", err)
	}
	return zr, nil
}

// DecodeLines parses line-delimited GeoJSON features. Blank lines are
// ignored. Features with a null or unsupported geometry become invalid
// records.
func DecodeLines(r io.Reader) ([]model.Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	var (
		recs []model.Record
		line int
	)
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		rec, err := feature.DecodeFeature(data)
		if err != nil {
			return nil, fmt.Errorf("source: line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("source: line %d: %w", line+1, err)
	}
	return recs, nil
}

// Decode parses a FeatureCollection or line-delimited features.
func Decode(data []byte, c codec.Codec) (*model.Batch, error) {
	if c == nil {
		c = codec.Default
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := c.Unmarshal(data, &head); err == nil && head.Type == "FeatureCollection" {
		return feature.Decode(data, c)
	}

	recs, err := DecodeLines(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return model.NewBatch(recs...), nil
}

// ReadFile reads a local GeoJSON file. Gzip'd input is detected by content.
func ReadFile(ctx context.Context, path string, c codec.Codec) (*model.Batch, error) {
	store := blobstore.NewLocalStore(filepath.Dir(path))

	blob, err := store.Open(ctx, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r, err := MaybeGunzip(rc)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}

	b, err := Decode(data, c)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return b, nil
}
