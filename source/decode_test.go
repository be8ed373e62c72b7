package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/geotile/codec"
	"github.com/hupe1980/geotile/geom"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	line1 = `{"type":"Feature","properties":{"height":6.5,"confidence":0.9},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}`
	line2 = `{"type":"Feature","properties":{"height":-1,"confidence":-1},"geometry":{"type":"Polygon","coordinates":[[[2,2],[3,2],[3,3],[2,3],[2,2]]]}}`
	line3 = `{"type":"Feature","properties":{},"geometry":null}`
)

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeLines(t *testing.T) {
	recs, err := DecodeLines(strings.NewReader(line1 + "\n\n" + line2 + "\n" + line3))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	require.NotNil(t, recs[0].Height)
	assert.Equal(t, 6.5, *recs[0].Height)
	assert.Equal(t, 0.9, recs[0].Confidence)

	b, err := recs[1].Bound()
	require.NoError(t, err)
	assert.Equal(t, geom.BoundingBox{MinLat: 2, MinLon: 2, MaxLat: 3, MaxLon: 3}, b)

	assert.Error(t, recs[2].Geometry.Validate())
}

func TestDecodeLines_Malformed(t *testing.T) {
	_, err := DecodeLines(strings.NewReader(line1 + "\n{nope\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestMaybeGunzip(t *testing.T) {
	for name, data := range map[string][]byte{
		"plain": []byte(line1),
		"gzip":  gzipBytes(t, line1),
	} {
		t.Run(name, func(t *testing.T) {
			r, err := MaybeGunzip(bytes.NewReader(data))
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, line1, string(got))
		})
	}

	r, err := MaybeGunzip(bytes.NewReader(nil))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecode_FeatureCollection(t *testing.T) {
	fc := `{"type":"FeatureCollection","features":[` + line1 + `,` + line2 + `]}`

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}, nil} {
		b, err := Decode([]byte(fc), c)
		require.NoError(t, err)
		assert.Equal(t, 2, b.Len())
	}
}

func TestDecode_Lines(t *testing.T) {
	b, err := Decode([]byte(line1+"\n"+line2+"\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	// A single feature is line-delimited input with one line.
	b, err = Decode([]byte(line1), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "Seattle.geojson")
	zipped := filepath.Join(dir, "part.geojsonl.gz")

	require.NoError(t, os.WriteFile(plain, []byte(`{"type":"FeatureCollection","features":[`+line1+`]}`), 0o644))
	require.NoError(t, os.WriteFile(zipped, gzipBytes(t, line1+"\n"+line2+"\n"+line3+"\n"), 0o644))

	b, err := ReadFile(context.Background(), plain, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())

	b, err = ReadFile(context.Background(), zipped, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())

	_, invalid, ok := b.Bound()
	assert.True(t, ok)
	assert.Equal(t, 1, invalid)

	_, err = ReadFile(context.Background(), filepath.Join(dir, "missing.geojson"), nil)
	assert.Error(t, err)
}
