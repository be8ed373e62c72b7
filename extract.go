package geotile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/geotile/blobstore"
	"github.com/hupe1980/geotile/feature"
	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/index"
	"github.com/hupe1980/geotile/manifest"
	"github.com/hupe1980/geotile/model"
	"github.com/hupe1980/geotile/tile"
)

// ExtractReport summarizes an extraction.
type ExtractReport struct {
	// Candidates is the number of tiles whose bounds intersect the query.
	Candidates     int
	TilesLoaded    int
	RecordsScanned int
	Matched        int
	// Duplicates counts legacy-layout records already returned from another
	// tile. Partitioned indexes never produce them.
	Duplicates int
	// Failures lists candidate tiles that were skipped.
	Failures []*StorageReadError
	Duration time.Duration
}

// Partial reports whether any candidate tile was skipped.
func (r *ExtractReport) Partial() bool {
	return len(r.Failures) > 0
}

// Extractor answers bounding-box queries against a partitioned dataset.
// It is safe for concurrent use once the dataset is committed.
type Extractor struct {
	store     blobstore.BlobStore
	manifests *manifest.Store
	opts      options
}

// NewExtractor creates an extractor reading from store.
func NewExtractor(store blobstore.BlobStore, optFns ...Option) *Extractor {
	return &Extractor{
		store:     store,
		manifests: manifest.NewStore(store),
		opts:      applyOptions(optFns),
	}
}

// OpenIndex loads the current manifest and builds its TileIndex. Stores
// without a manifest are searched for a legacy <location>_metadata.json.
func (e *Extractor) OpenIndex(ctx context.Context) (*index.TileIndex, *manifest.Manifest, error) {
	m, err := e.manifests.Load(ctx)
	if errors.Is(err, manifest.ErrNotFound) {
		name, lerr := manifest.FindLegacy(ctx, e.store)
		if lerr != nil {
			return nil, nil, err
		}
		e.opts.logger.InfoContext(ctx, "using legacy metadata", "file", name)
		m, err = manifest.LoadLegacy(ctx, e.store, name)
	}
	if err != nil {
		return nil, nil, err
	}

	idx, err := index.New(m.Tiles)
	if err != nil {
		return nil, nil, fmt.Errorf("manifest %d: %w", m.ID, err)
	}
	return idx, m, nil
}

// Extract returns every record of idx whose geometry intersects query.
// Only tiles whose bounds intersect the query are read. Tiles that are
// missing or corrupt are skipped and listed in the report; the result then
// holds the matches of the remaining tiles.
func (e *Extractor) Extract(ctx context.Context, idx *index.TileIndex, query geom.BoundingBox) (*model.Batch, *ExtractReport, error) {
	start := time.Now()
	report := &ExtractReport{}

	out, err := e.extract(ctx, idx, query, report)

	report.Duration = time.Since(start)
	e.opts.metricsCollector.RecordExtract(report.Candidates, report.Matched, report.Duration, err)
	e.opts.logger.LogExtract(ctx, query, report, err)

	if err != nil {
		return nil, report, err
	}
	return out, report, nil
}

func (e *Extractor) extract(ctx context.Context, idx *index.TileIndex, query geom.BoundingBox, report *ExtractReport) (*model.Batch, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	candidates := idx.FindIntersecting(query)
	report.Candidates = len(candidates)

	out := model.NewBatch()
	seen := roaring64.New()

	for _, t := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := e.loadTile(ctx, t)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			rerr := &StorageReadError{TileID: t.ID, Location: t.StorageLocation, Err: err}
			report.Failures = append(report.Failures, rerr)
			e.opts.logger.LogTileSkipped(ctx, rerr)
			continue
		}
		report.TilesLoaded++

		records.Each(func(r model.Record) bool {
			report.RecordsScanned++
			if !r.Geometry.IntersectsBox(query) {
				return true
			}
			// Partitioned tiles hold each record once. Legacy tiles repeat
			// records that cross a cell edge, under IDs that restart per
			// dataset part, so those are matched by content.
			if t.Legacy && !seen.CheckedAdd(uint64(feature.RecordContentID(r))) {
				report.Duplicates++
				return true
			}
			out.Append(r)
			return true
		})
	}

	report.Matched = out.Len()
	return out, nil
}

func (e *Extractor) loadTile(ctx context.Context, t model.Tile) (*model.Batch, error) {
	begin := time.Now()

	data, err := blobstore.ReadAll(ctx, e.store, t.StorageLocation)
	if err == nil {
		err = e.opts.resources.AcquireIO(ctx, len(data))
	}
	var b *model.Batch
	if err == nil {
		b, err = tile.Decode(data, e.opts.codec)
	}

	e.opts.metricsCollector.RecordTileRead(len(data), time.Since(begin), err)
	return b, err
}
