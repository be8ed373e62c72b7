// Package geotile partitions building footprints into spatial tiles and
// extracts the footprints intersecting a bounding box.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./seattle")
//
//	batch, _ := source.ReadFile("Seattle.geojson")
//	p := geotile.NewPartitioner(store, geotile.WithLocation("Seattle"))
//	idx, report, _ := p.Partition(ctx, batch, 5000)
//	fmt.Println(report.Tiles, "tiles,", report.Skipped, "invalid records")
//
//	query := geom.FromCorners(
//	    geom.LatLon{Lat: 47.62, Lon: -122.36},
//	    geom.LatLon{Lat: 47.60, Lon: -122.32},
//	)
//	e := geotile.NewExtractor(store)
//	result, _, _ := e.Extract(ctx, idx, query)
//
// A later process reopens the committed index with Extractor.OpenIndex.
//
// # Partitioning
//
// The dataset bounding box is cut into a uniform grid (10 x 10 by default).
// Every record is assigned to exactly one cell by the center of its bounding
// box. Cells holding more than the per-tile limit are split into quadrants
// until they fit or reach the minimum cell size; overfull floor cells are
// chunked. Each non-empty cell becomes one tile whose bounds are the union of
// its records' bounding boxes.
//
// Tiles are written first. The manifest listing them is committed last, so a
// failed run never leaves a partial index behind.
//
// # Extraction
//
// The TileIndex selects tiles whose bounds intersect the query. Only those
// tiles are read, and each of their records is tested against the query
// geometry exactly. The result is the same for any tiling of the dataset.
//
// Missing or corrupt tiles do not fail an extraction: they are reported in
// ExtractReport.Failures and the remaining tiles still contribute.
//
// # Storage
//
// Partitioner and Extractor work on any blobstore.BlobStore: local
// directories, memory, S3 (optionally with a DynamoDB commit table) and MinIO.
//
// # Errors
//
//   - ErrInvalidGeometry: record skipped and counted
//   - *StorageWriteError: partition run aborted
//   - *StorageReadError: tile skipped during extraction
//   - ErrNoValidRecords, ErrInvalidMaxRecords, ErrInvalidBoundingBox: invalid input
package geotile
