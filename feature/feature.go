package feature

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/hupe1980/geotile/blobstore"
	"github.com/hupe1980/geotile/codec"
	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/internal/hash"
	"github.com/hupe1980/geotile/model"
	"github.com/paulmach/orb/geojson"
)

// ContentIDBase is ORed into IDs derived from feature content. Content IDs
// stay below 2^53 so they survive a round trip through a JSON number.
const ContentIDBase model.RecordID = 1 << 52

const contentIDMask = uint64(ContentIDBase) - 1

// FromRecord converts a record to a GeoJSON feature.
func FromRecord(r model.Record) *geojson.Feature {
	f := geojson.NewFeature(r.Geometry.Orb())
	f.ID = uint64(r.ID)
	f.Properties["type"] = "Feature"
	if r.Height != nil {
		f.Properties["height"] = *r.Height
	} else {
		f.Properties["height"] = nil
	}
	f.Properties["confidence"] = r.Confidence
	return f
}

// ToRecord converts a feature. Null or unsupported geometries yield a record
// with an invalid geometry rather than an error; the partitioner skips and
// counts those.
func ToRecord(f *geojson.Feature) model.Record {
	g, err := geom.FromOrb(f.Geometry)
	if err != nil {
		g = geom.Invalid()
	}

	props := attributes(f.Properties)
	r := model.Record{
		Geometry:   g,
		Height:     number(props["height"]),
		Confidence: -1,
	}
	if c := number(props["confidence"]); c != nil {
		r.Confidence = *c
	}

	if id, ok := parseID(f.ID); ok {
		r.ID = id
	} else {
		r.ID = ContentID(f)
	}
	return r
}

// ContentID derives a record ID from the feature geometry and properties.
func ContentID(f *geojson.Feature) model.RecordID {
	data := []byte("null")
	if f.Geometry != nil {
		if g, err := geojson.NewGeometry(f.Geometry).MarshalJSON(); err == nil {
			data = g
		}
	}
	// Map keys are sorted, so equal properties hash equally.
	if props, err := (codec.JSON{}).Marshal(f.Properties); err == nil {
		data = append(data, props...)
	}
	return ContentIDBase | model.RecordID(hash.Content64(data)&contentIDMask)
}

// attributes returns the building attributes of a feature. Tiles of the
// legacy layout keep them in a nested "properties" member, usually as a JSON
// string; its entries are merged over the top-level ones. A nested string
// that is not a JSON object is ignored.
func attributes(props geojson.Properties) geojson.Properties {
	var nested map[string]any
	switch v := props["properties"].(type) {
	case map[string]any:
		nested = v
	case string:
		if err := codec.Default.Unmarshal([]byte(v), &nested); err != nil {
			return props
		}
	default:
		return props
	}

	merged := make(geojson.Properties, len(props)+len(nested))
	for k, v := range props {
		merged[k] = v
	}
	for k, v := range nested {
		merged[k] = v
	}
	return merged
}

// RecordContentID is ContentID of the feature r encodes to. Records with
// equal geometry and attributes share it regardless of their IDs.
func RecordContentID(r model.Record) model.RecordID {
	return ContentID(FromRecord(r))
}

func parseID(v any) (model.RecordID, bool) {
	switch id := v.(type) {
	case float64:
		if id < 0 || id != math.Trunc(id) || id >= 1<<64 {
			return 0, false
		}
		return model.RecordID(id), true
	case uint64:
		return model.RecordID(id), true
	case int:
		if id < 0 {
			return 0, false
		}
		return model.RecordID(id), true
	case string:
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return 0, false
		}
		return model.RecordID(n), true
	default:
		return 0, false
	}
}

func number(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	default:
		return nil
	}
}

// Collection converts a batch to a FeatureCollection.
func Collection(b *model.Batch) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	b.Each(func(r model.Record) bool {
		fc.Append(FromRecord(r))
		return true
	})
	return fc
}

// Encode serializes the batch as a FeatureCollection. A nil codec selects
// codec.Default.
func Encode(b *model.Batch, c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(Collection(b))
	if err != nil {
		return nil, fmt.Errorf("feature: encode: %w", err)
	}
	return data, nil
}

// Decode parses a FeatureCollection into a batch.
func Decode(data []byte, c codec.Codec) (*model.Batch, error) {
	if c == nil {
		c = codec.Default
	}
	fc := geojson.NewFeatureCollection()
	if err := c.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("feature: decode: %w", err)
	}

	b := &model.Batch{Records: make([]model.Record, 0, len(fc.Features))}
	for _, f := range fc.Features {
		b.Append(ToRecord(f))
	}
	return b, nil
}

// DecodeFeature parses a single feature, as found in line-delimited files.
func DecodeFeature(data []byte) (model.Record, error) {
	f, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return model.Record{}, fmt.Errorf("feature: decode: %w", err)
	}
	return ToRecord(f), nil
}

// WriteFile writes the batch to path as a FeatureCollection. The file is
// replaced atomically.
func WriteFile(ctx context.Context, path string, b *model.Batch, c codec.Codec) error {
	data, err := Encode(b, c)
	if err != nil {
		return err
	}
	store := blobstore.NewLocalStore(filepath.Dir(path))
	return store.Put(ctx, filepath.Base(path), data)
}
