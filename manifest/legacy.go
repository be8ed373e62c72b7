package manifest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/geotile/blobstore"
	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/model"
)

// LegacySuffix names the metadata file of the legacy layout.
const LegacySuffix = "_metadata.json"

type legacyCell struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// FindLegacy returns the name of the first legacy metadata blob in the store.
func FindLegacy(ctx context.Context, store blobstore.BlobStore) (string, error) {
	names, err := store.List(ctx, "")
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if strings.HasSuffix(name, LegacySuffix) && !strings.Contains(name, "/") {
			return name, nil
		}
	}
	return "", ErrNotFound
}

// LoadLegacy converts the legacy metadata blob name into a manifest.
// Tile IDs are the file names without extension; tiles are ordered by name.
func LoadLegacy(ctx context.Context, store blobstore.BlobStore, name string) (*Manifest, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return DecodeLegacy(strings.TrimSuffix(name, LegacySuffix), data)
}

// DecodeLegacy parses a legacy metadata document.
func DecodeLegacy(location string, data []byte) (*Manifest, error) {
	var cells map[string]legacyCell
	if err := gojson.Unmarshal(data, &cells); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	files := make([]string, 0, len(cells))
	for f := range cells {
		files = append(files, f)
	}
	sort.Strings(files)

	m := New(location)
	m.Legacy = true
	for _, f := range files {
		c := cells[f]
		b, err := geom.NewBoundingBox(c.YMin, c.XMin, c.YMax, c.XMax)
		if err != nil {
			return nil, fmt.Errorf("%w: tile %s: %w", ErrInvalidManifest, f, err)
		}
		m.Tiles = append(m.Tiles, model.Tile{
			ID:              model.TileID(strings.TrimSuffix(f, ".geojson")),
			Bounds:          b,
			StorageLocation: f,
			Cell:            b,
			Legacy:          true,
		})
		if m.Bounds == nil {
			bb := b
			m.Bounds = &bb
		} else {
			*m.Bounds = m.Bounds.Union(b)
		}
	}
	return m, nil
}
