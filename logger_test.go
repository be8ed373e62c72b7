package geotile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/hupe1980/geotile/blobstore"
	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(buf *bytes.Buffer) *Logger {
	return NewLogger(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_Partition(t *testing.T) {
	var buf bytes.Buffer
	batch := gridBatch()
	batch.Append(model.Record{ID: 500, Geometry: geom.Invalid()})

	_, _, err := NewPartitioner(blobstore.NewMemoryStore(),
		WithLogger(captureLogger(&buf)),
		WithLocation("Grid"),
	).Partition(context.Background(), batch, 50)
	require.NoError(t, err)

	lines := logLines(t, &buf)
	require.NotEmpty(t, lines)

	last := lines[len(lines)-1]
	assert.Equal(t, "WARN", last["level"])
	assert.Equal(t, "partition completed with skipped records", last["msg"])
	assert.Equal(t, "Grid", last["location"])
	assert.Equal(t, float64(1), last["skipped"])

	var skipped, written int
	for _, l := range lines {
		switch l["msg"] {
		case "record skipped":
			skipped++
			assert.Equal(t, float64(500), l["id"])
		case "tile written":
			written++
		}
	}
	assert.Equal(t, 1, skipped)
	assert.Positive(t, written)
}

func TestLogger_TileSkipped(t *testing.T) {
	var buf bytes.Buffer
	l := captureLogger(&buf).WithTile("r0c0")

	l.LogTileSkipped(context.Background(), &StorageReadError{
		TileID:   "r0c0",
		Location: "tiles/000001/r0c0.tile",
		Err:      errors.New("boom"),
	})

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "tile skipped", lines[0]["msg"])
	assert.Equal(t, "tiles/000001/r0c0.tile", lines[0]["location"])
	assert.Equal(t, "boom", lines[0]["error"])
}

func TestLogger_ExtractFailed(t *testing.T) {
	var buf bytes.Buffer
	captureLogger(&buf).LogExtract(context.Background(), geom.BoundingBox{}, &ExtractReport{}, ErrInvalidBoundingBox)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "extract failed", lines[0]["msg"])
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.LogPartition(context.Background(), &PartitionReport{}, nil)
}
