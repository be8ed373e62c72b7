package geotile

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/geotile/blobstore"
	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/index"
	"github.com/hupe1980/geotile/internal/grid"
	"github.com/hupe1980/geotile/manifest"
	"github.com/hupe1980/geotile/model"
	"github.com/hupe1980/geotile/tile"
	"github.com/paulmach/orb"
)

// PartitionReport summarizes a partition run.
type PartitionReport struct {
	// Records is the size of the input batch.
	Records int
	// Skipped counts records with invalid geometry.
	Skipped int
	// Tiles is the number of tiles written.
	Tiles        int
	Splits       int
	MaxDepth     int
	ChunkedCells int
	BytesWritten int64
	ManifestID   uint64
	Duration     time.Duration
}

// Partitioner splits batches into tiles and commits a manifest.
type Partitioner struct {
	store     blobstore.BlobStore
	manifests *manifest.Store
	opts      options
}

// NewPartitioner creates a partitioner writing to store.
func NewPartitioner(store blobstore.BlobStore, optFns ...Option) *Partitioner {
	return &Partitioner{
		store:     store,
		manifests: manifest.NewStore(store),
		opts:      applyOptions(optFns),
	}
}

// Partition splits batch into tiles of at most maxRecordsPerTile records,
// writes them and commits a new manifest.
//
// Records with invalid geometry are skipped and counted in the report. An
// empty batch commits an empty index. Any storage failure aborts the run
// with a *StorageWriteError; tiles written by the run are removed and the
// previous manifest stays current.
func (p *Partitioner) Partition(ctx context.Context, batch *model.Batch, maxRecordsPerTile int) (*index.TileIndex, *PartitionReport, error) {
	start := time.Now()
	report := &PartitionReport{Records: batch.Len()}

	idx, err := p.partition(ctx, batch, maxRecordsPerTile, report)

	report.Duration = time.Since(start)
	p.opts.metricsCollector.RecordPartition(report.Records, report.Skipped, report.Tiles, report.Duration, err)
	p.opts.logger.LogPartition(ctx, report, err)

	if err != nil {
		return nil, report, err
	}
	return idx, report, nil
}

func (p *Partitioner) partition(ctx context.Context, batch *model.Batch, k int, report *PartitionReport) (*index.TileIndex, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxRecords, k)
	}

	var (
		valid   []model.Record
		bounds  []geom.BoundingBox
		centers []orb.Point
		total   geom.BoundingBox
	)
	batch.Each(func(r model.Record) bool {
		b, err := r.Bound()
		if err != nil {
			report.Skipped++
			p.opts.logger.LogRecordSkipped(ctx, r.ID, fmt.Errorf("%w: %w", ErrInvalidGeometry, err))
			return true
		}
		if len(valid) == 0 {
			total = b
		} else {
			total = total.Union(b)
		}
		valid = append(valid, r)
		bounds = append(bounds, b)
		centers = append(centers, b.Center())
		return true
	})

	if batch.Len() > 0 && len(valid) == 0 {
		return nil, fmt.Errorf("%w: %d records skipped", ErrNoValidRecords, report.Skipped)
	}

	runID, err := p.manifests.NextID(ctx)
	if err != nil {
		return nil, &StorageWriteError{Name: manifest.CurrentFileName, Err: err}
	}

	m := manifest.New(p.opts.location)
	m.Codec = p.opts.codec.Name()
	m.Compression = p.opts.compression.String()
	m.MaxRecordsPerTile = k
	m.GridSize = p.opts.gridSize
	m.MinCellSize = p.opts.minCellSize
	m.TotalRecords = len(valid)
	m.SkippedRecords = report.Skipped
	if len(valid) > 0 {
		m.Bounds = &total
	}

	var written []string
	cleanup := func() {
		// Best effort; the run already failed.
		for _, name := range written {
			_ = p.store.Delete(context.WithoutCancel(ctx), name)
		}
	}

	if len(valid) > 0 {
		res, err := grid.Partition(ctx, total, centers, grid.Config{
			MaxPerCell:  k,
			GridSize:    p.opts.gridSize,
			MinCellSize: p.opts.minCellSize,
			MaxDepth:    p.opts.maxDepth,
		})
		if err != nil {
			return nil, err
		}
		report.Splits = res.Splits
		report.MaxDepth = res.MaxDepth
		report.ChunkedCells = res.Chunked

		enc := tile.Encoder{Codec: p.opts.codec, Compression: p.opts.compression}
		prefix := fmt.Sprintf("%s%06d/", p.opts.tilePrefix, runID)

		for _, leaf := range res.Leaves {
			t, members := buildTile(leaf, valid, bounds)
			t.StorageLocation = prefix + string(t.ID) + tile.Ext

			begin := time.Now()
			n, err := enc.Write(ctx, p.store, t.StorageLocation, model.NewBatch(members...))
			p.opts.metricsCollector.RecordTileWrite(n, time.Since(begin), err)
			if err != nil {
				written = append(written, t.StorageLocation)
				cleanup()
				return nil, &StorageWriteError{Name: t.StorageLocation, Err: err}
			}
			written = append(written, t.StorageLocation)
			p.opts.logger.LogTileWritten(ctx, t, n)

			m.Tiles = append(m.Tiles, t)
			report.Tiles++
			report.BytesWritten += int64(n)
		}
	}

	if err := p.manifests.Save(ctx, m); err != nil {
		cleanup()
		return nil, &StorageWriteError{Name: manifest.Filename(runID), Err: err}
	}
	report.ManifestID = m.ID

	return index.New(m.Tiles)
}

// buildTile collects the records of leaf. Tile bounds cover the full
// geometry of every member, which may extend past the leaf cell.
func buildTile(leaf grid.Leaf, valid []model.Record, bounds []geom.BoundingBox) (model.Tile, []model.Record) {
	members := make([]model.Record, len(leaf.Items))
	b := bounds[leaf.Items[0]]
	for i, item := range leaf.Items {
		members[i] = valid[item]
		b = b.Union(bounds[item])
	}
	return model.Tile{
		ID:          model.TileID(leaf.Key),
		Bounds:      b,
		RecordCount: len(members),
		Cell:        leaf.Cell,
		Depth:       leaf.Depth,
	}, members
}
