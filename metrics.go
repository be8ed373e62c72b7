package geotile

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordPartition is called after each partition run.
	// records is the input size, skipped the number of invalid records.
	RecordPartition(records, skipped, tiles int, duration time.Duration, err error)

	// RecordTileWrite is called after each tile blob write.
	RecordTileWrite(bytes int, duration time.Duration, err error)

	// RecordExtract is called after each extraction.
	// candidates is the number of tiles selected by the index, matched the
	// number of records returned.
	RecordExtract(candidates, matched int, duration time.Duration, err error)

	// RecordTileRead is called after each candidate tile load.
	RecordTileRead(bytes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPartition(int, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordTileWrite(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordExtract(int, int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordTileRead(int, time.Duration, error)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PartitionCount   atomic.Int64
	PartitionErrors  atomic.Int64
	RecordsSkipped   atomic.Int64
	TilesWritten     atomic.Int64
	TileWriteErrors  atomic.Int64
	BytesWritten     atomic.Int64
	ExtractCount     atomic.Int64
	ExtractErrors    atomic.Int64
	ExtractTotalNano atomic.Int64
	CandidateTiles   atomic.Int64
	RecordsMatched   atomic.Int64
	TilesRead        atomic.Int64
	TileReadErrors   atomic.Int64
	BytesRead        atomic.Int64
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(records, skipped, tiles int, duration time.Duration, err error) {
	b.PartitionCount.Add(1)
	b.RecordsSkipped.Add(int64(skipped))
	if err != nil {
		b.PartitionErrors.Add(1)
	}
}

// RecordTileWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTileWrite(bytes int, duration time.Duration, err error) {
	if err != nil {
		b.TileWriteErrors.Add(1)
		return
	}
	b.TilesWritten.Add(1)
	b.BytesWritten.Add(int64(bytes))
}

// RecordExtract implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExtract(candidates, matched int, duration time.Duration, err error) {
	b.ExtractCount.Add(1)
	b.ExtractTotalNano.Add(duration.Nanoseconds())
	b.CandidateTiles.Add(int64(candidates))
	b.RecordsMatched.Add(int64(matched))
	if err != nil {
		b.ExtractErrors.Add(1)
	}
}

// RecordTileRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTileRead(bytes int, duration time.Duration, err error) {
	if err != nil {
		b.TileReadErrors.Add(1)
		return
	}
	b.TilesRead.Add(1)
	b.BytesRead.Add(int64(bytes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PartitionCount:  b.PartitionCount.Load(),
		PartitionErrors: b.PartitionErrors.Load(),
		RecordsSkipped:  b.RecordsSkipped.Load(),
		TilesWritten:    b.TilesWritten.Load(),
		TileWriteErrors: b.TileWriteErrors.Load(),
		BytesWritten:    b.BytesWritten.Load(),
		ExtractCount:    b.ExtractCount.Load(),
		ExtractErrors:   b.ExtractErrors.Load(),
		ExtractAvgNanos: b.getAvgExtractNanos(),
		CandidateTiles:  b.CandidateTiles.Load(),
		RecordsMatched:  b.RecordsMatched.Load(),
		TilesRead:       b.TilesRead.Load(),
		TileReadErrors:  b.TileReadErrors.Load(),
		BytesRead:       b.BytesRead.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgExtractNanos() int64 {
	count := b.ExtractCount.Load()
	if count == 0 {
		return 0
	}
	return b.ExtractTotalNano.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PartitionCount  int64
	PartitionErrors int64
	RecordsSkipped  int64
	TilesWritten    int64
	TileWriteErrors int64
	BytesWritten    int64
	ExtractCount    int64
	ExtractErrors   int64
	ExtractAvgNanos int64
	CandidateTiles  int64
	RecordsMatched  int64
	TilesRead       int64
	TileReadErrors  int64
	BytesRead       int64
}
